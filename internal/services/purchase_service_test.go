package services

import (
	"context"
	"testing"

	"shopledger/internal/common"
	"shopledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PurchaseServiceTestSuite struct {
	suite.Suite
	mockInvoiceRepo  *MockPurchaseInvoiceRepository
	mockSupplierRepo *MockSupplierRepository
	mockAccounting   *MockAccountingService
	mockInventory    *MockInventoryService
	service          PurchaseService
	tenantID         uuid.UUID
	supplierID       uuid.UUID
}

func (suite *PurchaseServiceTestSuite) SetupTest() {
	suite.mockInvoiceRepo = &MockPurchaseInvoiceRepository{}
	suite.mockSupplierRepo = &MockSupplierRepository{}
	suite.mockAccounting = &MockAccountingService{}
	suite.mockInventory = &MockInventoryService{}
	suite.service = NewPurchaseService(suite.mockInvoiceRepo, suite.mockSupplierRepo, suite.mockAccounting, suite.mockInventory, passthroughTxManager{}, nil, testLogger())
	suite.tenantID = uuid.New()
	suite.supplierID = uuid.New()
}

func (suite *PurchaseServiceTestSuite) TearDownTest() {
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
	suite.mockSupplierRepo.AssertExpectations(suite.T())
	suite.mockAccounting.AssertExpectations(suite.T())
	suite.mockInventory.AssertExpectations(suite.T())
}

func TestPurchaseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseServiceTestSuite))
}

func (suite *PurchaseServiceTestSuite) TestCreate_PostsMirrorEntry() {
	supplier := &models.Supplier{ID: suite.supplierID, TenantID: suite.tenantID, Name: "Acme"}
	inventoryAcct := &models.Account{ID: uuid.New(), TenantID: suite.tenantID, Type: models.AccountTypeAsset, Subtype: models.AccountSubtypeInventory}
	payableAcct := &models.Account{ID: uuid.New(), TenantID: suite.tenantID, Type: models.AccountTypeLiability, Subtype: models.AccountSubtypeAccountsPayable}

	suite.mockSupplierRepo.On("GetByID", mock.Anything, suite.tenantID, suite.supplierID).Return(supplier, nil).Once()
	suite.mockInvoiceRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockInventory.On("IncreaseForPurchase", mock.Anything, suite.tenantID, mock.Anything).Return(nil).Once()
	suite.mockAccounting.On("GetOrCreateAccount", mock.Anything, suite.tenantID, models.AccountCodeInventory, mock.Anything, models.AccountTypeAsset, models.AccountSubtypeInventory).Return(inventoryAcct, nil).Once()
	suite.mockAccounting.On("GetOrCreateAccount", mock.Anything, suite.tenantID, models.AccountCodeAccountsPayable, mock.Anything, models.AccountTypeLiability, models.AccountSubtypeAccountsPayable).Return(payableAcct, nil).Once()

	var meta models.TransactionMeta
	var lines []models.LineInput
	suite.mockAccounting.On("CreateTransaction", mock.Anything, suite.tenantID, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		meta = args.Get(2).(models.TransactionMeta)
		lines = args.Get(3).([]models.LineInput)
	}).Return(&models.Transaction{ID: uuid.New()}, nil).Once()

	invoice, err := suite.service.CreatePurchaseInvoice(context.Background(), suite.tenantID, PurchaseInvoiceInput{
		SupplierID:    suite.supplierID,
		InvoiceNumber: "INV-7",
		Items: []PurchaseItemInput{
			{ProductName: "Widget", Quantity: 10, PurchasePrice: decimal.NewFromInt(100)},
			{ProductName: "Gadget", Quantity: 5, PurchasePrice: decimal.NewFromInt(40)},
		},
	})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), invoice.TotalAmount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(suite.T(), invoice.ID, *meta.PurchaseInvoiceID)
	assert.Len(suite.T(), lines, 2)
	assert.Equal(suite.T(), inventoryAcct.ID, lines[0].AccountID)
	assert.True(suite.T(), lines[0].Debit.Equal(decimal.NewFromInt(1200)))
	assert.Equal(suite.T(), payableAcct.ID, lines[1].AccountID)
	assert.True(suite.T(), lines[1].Credit.Equal(decimal.NewFromInt(1200)))
}

func (suite *PurchaseServiceTestSuite) TestCreate_UnknownSupplierRejected() {
	suite.mockSupplierRepo.On("GetByID", mock.Anything, suite.tenantID, suite.supplierID).Return(nil, pgx.ErrNoRows).Once()

	_, err := suite.service.CreatePurchaseInvoice(context.Background(), suite.tenantID, PurchaseInvoiceInput{
		SupplierID: suite.supplierID,
		Items:      []PurchaseItemInput{{ProductName: "Widget", Quantity: 1, PurchasePrice: decimal.NewFromInt(10)}},
	})

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}

func (suite *PurchaseServiceTestSuite) TestCreate_NoItemsRejected() {
	_, err := suite.service.CreatePurchaseInvoice(context.Background(), suite.tenantID, PurchaseInvoiceInput{
		SupplierID: suite.supplierID,
	})

	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}
