package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopledger/internal/common"
	"shopledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountingServiceTestSuite struct {
	suite.Suite
	mockAccountRepo     *MockAccountRepository
	mockTransactionRepo *MockTransactionRepository
	service             AccountingService
	tenantID            uuid.UUID
}

func (suite *AccountingServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = &MockAccountRepository{}
	suite.mockTransactionRepo = &MockTransactionRepository{}
	suite.service = NewAccountingService(suite.mockAccountRepo, suite.mockTransactionRepo, passthroughTxManager{}, testLogger())
	suite.tenantID = uuid.New()
}

func (suite *AccountingServiceTestSuite) TearDownTest() {
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTransactionRepo.AssertExpectations(suite.T())
}

func TestAccountingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountingServiceTestSuite))
}

func (suite *AccountingServiceTestSuite) accountsFor(ids ...uuid.UUID) map[uuid.UUID]*models.Account {
	accounts := make(map[uuid.UUID]*models.Account, len(ids))
	for _, id := range ids {
		accounts[id] = &models.Account{ID: id, TenantID: suite.tenantID, Type: models.AccountTypeAsset}
	}
	return accounts
}

func (suite *AccountingServiceTestSuite) TestGetOrCreateAccount_ReturnsExisting() {
	existing := &models.Account{ID: uuid.New(), TenantID: suite.tenantID, Code: "1200"}
	suite.mockAccountRepo.On("GetByCode", mock.Anything, suite.tenantID, "1200").Return(existing, nil).Once()

	account, err := suite.service.GetOrCreateAccount(context.Background(), suite.tenantID, "1200", "Inventory", models.AccountTypeAsset, models.AccountSubtypeInventory)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), existing.ID, account.ID)
}

func (suite *AccountingServiceTestSuite) TestGetOrCreateAccount_CreatesWhenMissing() {
	suite.mockAccountRepo.On("GetByCode", mock.Anything, suite.tenantID, "2100").Return(nil, pgx.ErrNoRows).Once()
	suite.mockAccountRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Account) bool {
		return a.TenantID == suite.tenantID && a.Code == "2100" && a.Type == models.AccountTypeLiability
	})).Return(nil).Once()

	account, err := suite.service.GetOrCreateAccount(context.Background(), suite.tenantID, "2100", "Accounts Payable", models.AccountTypeLiability, models.AccountSubtypeAccountsPayable)

	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, account.ID)
	assert.True(suite.T(), account.Balance.IsZero())
}

func (suite *AccountingServiceTestSuite) TestCreateTransaction_Success() {
	debitAccount := uuid.New()
	creditAccount := uuid.New()
	lines := []models.LineInput{
		{AccountID: debitAccount, Debit: decimal.NewFromInt(100)},
		{AccountID: creditAccount, Credit: decimal.NewFromInt(100)},
	}
	suite.mockAccountRepo.On("GetByIDs", mock.Anything, suite.tenantID, mock.Anything).Return(suite.accountsFor(debitAccount, creditAccount), nil).Once()
	suite.mockTransactionRepo.On("CreateWithLines", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("AdjustBalance", mock.Anything, suite.tenantID, debitAccount, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(100))
	})).Return(nil).Once()
	suite.mockAccountRepo.On("AdjustBalance", mock.Anything, suite.tenantID, creditAccount, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(-100))
	})).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(context.Background(), suite.tenantID, models.TransactionMeta{Description: "test entry"}, lines)

	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, txn.ID)
	assert.Len(suite.T(), txn.Lines, 2)
	assert.False(suite.T(), txn.Date.IsZero())
	assert.Nil(suite.T(), txn.SupersededBy)
}

func (suite *AccountingServiceTestSuite) TestCreateTransaction_Unbalanced() {
	lines := []models.LineInput{
		{AccountID: uuid.New(), Debit: decimal.NewFromInt(100)},
		{AccountID: uuid.New(), Credit: decimal.NewFromFloat(99.50)},
	}

	_, err := suite.service.CreateTransaction(context.Background(), suite.tenantID, models.TransactionMeta{}, lines)

	var unbalanced *common.UnbalancedTransactionError
	assert.Error(suite.T(), err)
	assert.True(suite.T(), errors.As(err, &unbalanced))
	assert.True(suite.T(), unbalanced.Debits.Equal(decimal.NewFromInt(100)))
	assert.True(suite.T(), unbalanced.Credits.Equal(decimal.NewFromFloat(99.50)))
}

func (suite *AccountingServiceTestSuite) TestCreateTransaction_WithinTolerance() {
	debitAccount := uuid.New()
	creditAccount := uuid.New()
	lines := []models.LineInput{
		{AccountID: debitAccount, Debit: decimal.NewFromFloat(100.00)},
		{AccountID: creditAccount, Credit: decimal.NewFromFloat(99.995)},
	}
	suite.mockAccountRepo.On("GetByIDs", mock.Anything, suite.tenantID, mock.Anything).Return(suite.accountsFor(debitAccount, creditAccount), nil).Once()
	suite.mockTransactionRepo.On("CreateWithLines", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockAccountRepo.On("AdjustBalance", mock.Anything, suite.tenantID, mock.Anything, mock.Anything).Return(nil).Twice()

	_, err := suite.service.CreateTransaction(context.Background(), suite.tenantID, models.TransactionMeta{}, lines)

	assert.NoError(suite.T(), err)
}

func (suite *AccountingServiceTestSuite) TestCreateTransaction_SingleLineRejected() {
	lines := []models.LineInput{{AccountID: uuid.New(), Debit: decimal.NewFromInt(50)}}

	_, err := suite.service.CreateTransaction(context.Background(), suite.tenantID, models.TransactionMeta{}, lines)

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *AccountingServiceTestSuite) TestCreateTransaction_LineWithBothSidesRejected() {
	lines := []models.LineInput{
		{AccountID: uuid.New(), Debit: decimal.NewFromInt(50), Credit: decimal.NewFromInt(50)},
		{AccountID: uuid.New(), Credit: decimal.NewFromInt(50)},
	}

	_, err := suite.service.CreateTransaction(context.Background(), suite.tenantID, models.TransactionMeta{}, lines)

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *AccountingServiceTestSuite) TestCreateTransaction_MissingAccountRejected() {
	known := uuid.New()
	unknown := uuid.New()
	lines := []models.LineInput{
		{AccountID: known, Debit: decimal.NewFromInt(75)},
		{AccountID: unknown, Credit: decimal.NewFromInt(75)},
	}
	suite.mockAccountRepo.On("GetByIDs", mock.Anything, suite.tenantID, mock.Anything).Return(suite.accountsFor(known), nil).Once()

	_, err := suite.service.CreateTransaction(context.Background(), suite.tenantID, models.TransactionMeta{}, lines)

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}

func (suite *AccountingServiceTestSuite) TestReverseTransaction_InvertsSides() {
	debitAccount := uuid.New()
	creditAccount := uuid.New()
	returnID := uuid.New()
	original := &models.Transaction{
		ID:            uuid.New(),
		TenantID:      suite.tenantID,
		OrderReturnID: &returnID,
		Lines: []*models.TransactionLine{
			{AccountID: debitAccount, Debit: decimal.NewFromInt(200)},
			{AccountID: creditAccount, Credit: decimal.NewFromInt(200)},
		},
	}
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	var created *models.Transaction
	suite.mockAccountRepo.On("GetByIDs", mock.Anything, suite.tenantID, mock.Anything).Return(suite.accountsFor(debitAccount, creditAccount), nil).Once()
	suite.mockTransactionRepo.On("CreateWithLines", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Transaction)
	}).Return(nil).Once()
	suite.mockAccountRepo.On("AdjustBalance", mock.Anything, suite.tenantID, mock.Anything, mock.Anything).Return(nil).Twice()

	reversal, err := suite.service.ReverseTransaction(context.Background(), suite.tenantID, original, date, "reversal")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), created.ID, reversal.ID)
	assert.Equal(suite.T(), date, reversal.Date)
	// The reversal carries no business-event reference.
	assert.Nil(suite.T(), reversal.OrderReturnID)
	assert.True(suite.T(), reversal.Lines[0].Credit.Equal(decimal.NewFromInt(200)))
	assert.True(suite.T(), reversal.Lines[0].Debit.IsZero())
	assert.True(suite.T(), reversal.Lines[1].Debit.Equal(decimal.NewFromInt(200)))
}

func (suite *AccountingServiceTestSuite) TestFindLiveTransactionByReturn_NoneFound() {
	returnID := uuid.New()
	suite.mockTransactionRepo.On("GetLiveByReturnID", mock.Anything, suite.tenantID, returnID).Return(nil, pgx.ErrNoRows).Once()

	txn, err := suite.service.FindLiveTransactionByReturn(context.Background(), suite.tenantID, returnID)

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), txn)
}

func (suite *AccountingServiceTestSuite) TestGetBalance_SumsLines() {
	accountID := uuid.New()
	suite.mockTransactionRepo.On("SumLinesByAccount", mock.Anything, suite.tenantID, accountID).Return(decimal.NewFromInt(-350), nil).Once()

	balance, err := suite.service.GetBalance(context.Background(), suite.tenantID, accountID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), balance.Equal(decimal.NewFromInt(-350)))
}

func (suite *AccountingServiceTestSuite) TestGetAccount_NotFound() {
	accountID := uuid.New()
	suite.mockAccountRepo.On("GetByID", mock.Anything, suite.tenantID, accountID).Return(nil, pgx.ErrNoRows).Once()

	_, err := suite.service.GetAccount(context.Background(), suite.tenantID, accountID)

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}
