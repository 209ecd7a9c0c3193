package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopledger/internal/caching"
	"shopledger/internal/common"
	"shopledger/internal/models"
	"shopledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PaymentInput struct {
	PaymentType       string
	OrderID           *uuid.UUID
	PurchaseInvoiceID *uuid.UUID
	CustomerID        *uuid.UUID
	SupplierID        *uuid.UUID
	Amount            decimal.Decimal
	PaymentMethod     string
	PaymentDate       time.Time
	Notes             *string
}

// PaymentService records customer and supplier payments. The payment
// row is the authoritative paid figure for balance calculations; the
// ledger entry mirrors it so account balances stay consistent.
type PaymentService interface {
	RecordPayment(ctx context.Context, tenantID uuid.UUID, input PaymentInput) (*models.Payment, error)
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.Payment, error)
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	accounting  AccountingService
	txManager   repositories.TxManager
	cache       caching.CacheService
	logger      *logrus.Logger
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, accounting AccountingService, txManager repositories.TxManager, cache caching.CacheService, logger *logrus.Logger) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		accounting:  accounting,
		txManager:   txManager,
		cache:       cache,
		logger:      logger,
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, tenantID uuid.UUID, input PaymentInput) (*models.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, common.NewValidationError("amount", "payment amount must be positive")
	}
	switch input.PaymentMethod {
	case models.PaymentMethodCash, models.PaymentMethodBankTransfer:
	default:
		return nil, common.NewValidationError("payment_method", "payment method must be CASH or BANK_TRANSFER")
	}
	switch input.PaymentType {
	case models.PaymentTypeCustomer:
		if input.CustomerID == nil {
			return nil, common.NewValidationError("customer_id", "a customer payment needs a customer")
		}
	case models.PaymentTypeSupplier:
		if input.SupplierID == nil {
			return nil, common.NewValidationError("supplier_id", "a supplier payment needs a supplier")
		}
	default:
		return nil, common.NewValidationError("payment_type", "payment type must be CUSTOMER_PAYMENT or SUPPLIER_PAYMENT")
	}

	payment := &models.Payment{
		ID:                uuid.New(),
		TenantID:          tenantID,
		PaymentType:       input.PaymentType,
		OrderID:           input.OrderID,
		PurchaseInvoiceID: input.PurchaseInvoiceID,
		CustomerID:        input.CustomerID,
		SupplierID:        input.SupplierID,
		Amount:            input.Amount,
		PaymentMethod:     input.PaymentMethod,
		PaymentDate:       input.PaymentDate,
		Notes:             input.Notes,
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}
		lines, err := s.paymentLines(ctx, tenantID, payment)
		if err != nil {
			return err
		}
		meta := models.TransactionMeta{
			Date:        payment.PaymentDate,
			Description: paymentDescription(payment),
			PaymentID:   &payment.ID,
		}
		_, err = s.accounting.CreateTransaction(ctx, tenantID, meta, lines)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBalances(ctx, tenantID, payment)
	s.logger.WithFields(logrus.Fields{
		"tenant_id":    tenantID,
		"payment_id":   payment.ID,
		"payment_type": payment.PaymentType,
		"amount":       payment.Amount,
	}).Info("recorded payment")
	return payment, nil
}

func (s *paymentService) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.Payment, error) {
	payments, err := s.paymentRepo.ListByOrder(ctx, tenantID, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return payments, err
}

// paymentLines builds the mirror entry. A customer payment moves money
// into cash or bank against receivables; a supplier payment settles
// payables out of cash or bank.
func (s *paymentService) paymentLines(ctx context.Context, tenantID uuid.UUID, payment *models.Payment) ([]models.LineInput, error) {
	money, err := s.moneyAccount(ctx, tenantID, payment.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if payment.PaymentType == models.PaymentTypeCustomer {
		receivable, err := s.accounting.GetOrCreateAccount(ctx, tenantID, models.AccountCodeAccountsReceivable, "Accounts Receivable", models.AccountTypeAsset, models.AccountSubtypeAccountsReceivable)
		if err != nil {
			return nil, err
		}
		return []models.LineInput{
			{AccountID: money.ID, Debit: payment.Amount},
			{AccountID: receivable.ID, Credit: payment.Amount},
		}, nil
	}
	payable, err := s.accounting.GetOrCreateAccount(ctx, tenantID, models.AccountCodeAccountsPayable, "Accounts Payable", models.AccountTypeLiability, models.AccountSubtypeAccountsPayable)
	if err != nil {
		return nil, err
	}
	return []models.LineInput{
		{AccountID: payable.ID, Debit: payment.Amount},
		{AccountID: money.ID, Credit: payment.Amount},
	}, nil
}

func (s *paymentService) moneyAccount(ctx context.Context, tenantID uuid.UUID, method string) (*models.Account, error) {
	if method == models.PaymentMethodBankTransfer {
		return s.accounting.GetOrCreateAccount(ctx, tenantID, models.AccountCodeBank, "Bank", models.AccountTypeAsset, models.AccountSubtypeBank)
	}
	return s.accounting.GetOrCreateAccount(ctx, tenantID, models.AccountCodeCash, "Cash", models.AccountTypeAsset, models.AccountSubtypeCash)
}

func (s *paymentService) invalidateBalances(ctx context.Context, tenantID uuid.UUID, payment *models.Payment) {
	if s.cache == nil {
		return
	}
	if payment.CustomerID != nil {
		if err := s.cache.DeleteCustomerBalance(ctx, tenantID, *payment.CustomerID); err != nil {
			s.logger.WithError(err).Warn("failed to invalidate customer balance cache")
		}
	}
	if payment.SupplierID != nil {
		if err := s.cache.DeleteSupplierBalance(ctx, tenantID, *payment.SupplierID); err != nil {
			s.logger.WithError(err).Warn("failed to invalidate supplier balance cache")
		}
	}
}

func paymentDescription(payment *models.Payment) string {
	if payment.PaymentType == models.PaymentTypeCustomer {
		return fmt.Sprintf("Customer payment of %s", payment.Amount)
	}
	return fmt.Sprintf("Supplier payment of %s", payment.Amount)
}
