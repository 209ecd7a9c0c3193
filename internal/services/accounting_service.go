package services

import (
	"context"
	"errors"
	"time"

	"shopledger/internal/common"
	"shopledger/internal/models"
	"shopledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// balanceTolerance is the permitted drift between debit and credit
// sums, one cent of the currency unit.
var balanceTolerance = decimal.NewFromFloat(0.01)

// AccountingService is the double-entry primitive: accounts created
// lazily on first reference, transactions persisted atomically with
// their lines, balances derived from the lines.
type AccountingService interface {
	GetOrCreateAccount(ctx context.Context, tenantID uuid.UUID, code, name string, accType models.AccountType, subtype models.AccountSubtype) (*models.Account, error)
	GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error)
	CreateTransaction(ctx context.Context, tenantID uuid.UUID, meta models.TransactionMeta, lines []models.LineInput) (*models.Transaction, error)
	ReverseTransaction(ctx context.Context, tenantID uuid.UUID, original *models.Transaction, date time.Time, description string) (*models.Transaction, error)
	SupersedeTransaction(ctx context.Context, tenantID, transactionID, successorID uuid.UUID) error
	FindLiveTransactionByReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Transaction, error)
	ListTransactions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Transaction, error)
	GetBalance(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error)
}

type accountingService struct {
	accountRepo     repositories.AccountRepository
	transactionRepo repositories.TransactionRepository
	txManager       repositories.TxManager
	logger          *logrus.Logger
}

func NewAccountingService(accountRepo repositories.AccountRepository, transactionRepo repositories.TransactionRepository, txManager repositories.TxManager, logger *logrus.Logger) AccountingService {
	return &accountingService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// GetOrCreateAccount is an idempotent lookup-or-insert keyed by
// (tenant_id, code).
func (s *accountingService) GetOrCreateAccount(ctx context.Context, tenantID uuid.UUID, code, name string, accType models.AccountType, subtype models.AccountSubtype) (*models.Account, error) {
	account, err := s.accountRepo.GetByCode(ctx, tenantID, code)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	account = &models.Account{
		ID:       uuid.New(),
		TenantID: tenantID,
		Code:     code,
		Name:     name,
		Type:     accType,
		Subtype:  subtype,
		Balance:  decimal.Zero,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"code":      code,
		"type":      accType,
	}).Info("created account")
	return account, nil
}

func (s *accountingService) GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, tenantID, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("account")
	}
	return account, err
}

func (s *accountingService) ListAccounts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error) {
	return s.accountRepo.List(ctx, tenantID, limit, offset)
}

// CreateTransaction validates the balance invariant and persists the
// transaction with all its lines as one atomic unit. A line referencing
// a missing or cross-tenant account aborts the whole transaction; the
// caller decides what to do with side effects it already made inside
// the same unit of work.
func (s *accountingService) CreateTransaction(ctx context.Context, tenantID uuid.UUID, meta models.TransactionMeta, lines []models.LineInput) (*models.Transaction, error) {
	if len(lines) < 2 {
		return nil, common.NewValidationError("lines", "a transaction needs at least two lines")
	}

	debits := decimal.Zero
	credits := decimal.Zero
	accountIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return nil, common.NewValidationError("lines", "debit and credit must not be negative")
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return nil, common.NewValidationError("lines", "exactly one of debit or credit must be set per line")
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
		accountIDs = append(accountIDs, line.AccountID)
	}
	if debits.Sub(credits).Abs().GreaterThan(balanceTolerance) {
		s.logger.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"debits":    debits,
			"credits":   credits,
		}).Error("rejected unbalanced transaction")
		return nil, &common.UnbalancedTransactionError{Debits: debits, Credits: credits}
	}

	accounts, err := s.accountRepo.GetByIDs(ctx, tenantID, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range accountIDs {
		if _, ok := accounts[id]; !ok {
			return nil, common.NewNotFoundError("account " + id.String())
		}
	}

	txn := &models.Transaction{
		ID:                uuid.New(),
		TenantID:          tenantID,
		Date:              meta.Date,
		Description:       meta.Description,
		PurchaseInvoiceID: meta.PurchaseInvoiceID,
		OrderReturnID:     meta.OrderReturnID,
		PaymentID:         meta.PaymentID,
	}
	if txn.Date.IsZero() {
		txn.Date = time.Now()
	}
	for _, line := range lines {
		txn.Lines = append(txn.Lines, &models.TransactionLine{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			AccountID:     line.AccountID,
			Debit:         line.Debit,
			Credit:        line.Credit,
		})
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.transactionRepo.CreateWithLines(ctx, txn); err != nil {
			return err
		}
		// Best-effort balance cache; GetBalance stays the ground truth.
		for _, line := range txn.Lines {
			delta := line.Debit.Sub(line.Credit)
			if err := s.accountRepo.AdjustBalance(ctx, tenantID, line.AccountID, delta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ReverseTransaction posts a new transaction with every line's debit
// and credit roles inverted, at the given date. The reversal carries no
// business-event reference so it never collides with the one-live-
// transaction-per-return constraint.
func (s *accountingService) ReverseTransaction(ctx context.Context, tenantID uuid.UUID, original *models.Transaction, date time.Time, description string) (*models.Transaction, error) {
	lines := make([]models.LineInput, 0, len(original.Lines))
	for _, line := range original.Lines {
		lines = append(lines, models.LineInput{
			AccountID: line.AccountID,
			Debit:     line.Credit,
			Credit:    line.Debit,
		})
	}
	meta := models.TransactionMeta{Date: date, Description: description}
	return s.CreateTransaction(ctx, tenantID, meta, lines)
}

func (s *accountingService) SupersedeTransaction(ctx context.Context, tenantID, transactionID, successorID uuid.UUID) error {
	return s.transactionRepo.MarkSuperseded(ctx, tenantID, transactionID, successorID)
}

// FindLiveTransactionByReturn returns nil without error when the return
// has no live transaction.
func (s *accountingService) FindLiveTransactionByReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetLiveByReturnID(ctx, tenantID, returnID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *accountingService) ListTransactions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	return s.transactionRepo.List(ctx, tenantID, limit, offset)
}

// GetBalance sums the account's lines (debit minus credit); this is the
// authoritative balance, not the cached column.
func (s *accountingService) GetBalance(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error) {
	return s.transactionRepo.SumLinesByAccount(ctx, tenantID, accountID)
}
