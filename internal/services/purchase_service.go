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

type PurchaseInvoiceInput struct {
	SupplierID    uuid.UUID
	InvoiceNumber string
	InvoiceDate   time.Time
	Notes         *string
	Items         []PurchaseItemInput
}

type PurchaseItemInput struct {
	ProductName      string
	ProductVariantID *uuid.UUID
	Quantity         int
	PurchasePrice    decimal.Decimal
}

// PurchaseService posts purchase invoices: the invoice and its items
// are persisted, stock is increased and the mirror ledger entry (debit
// Inventory, credit Accounts Payable) is created in one unit of work.
// Supplier returns later unwind exactly these effects.
type PurchaseService interface {
	CreatePurchaseInvoice(ctx context.Context, tenantID uuid.UUID, input PurchaseInvoiceInput) (*models.PurchaseInvoice, error)
	GetPurchaseInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.PurchaseInvoice, error)
	ListBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, limit, offset int) ([]*models.PurchaseInvoice, error)
}

type purchaseService struct {
	invoiceRepo  repositories.PurchaseInvoiceRepository
	supplierRepo repositories.SupplierRepository
	accounting   AccountingService
	inventory    InventoryService
	txManager    repositories.TxManager
	cache        caching.CacheService
	logger       *logrus.Logger
}

func NewPurchaseService(invoiceRepo repositories.PurchaseInvoiceRepository, supplierRepo repositories.SupplierRepository, accounting AccountingService, inventory InventoryService, txManager repositories.TxManager, cache caching.CacheService, logger *logrus.Logger) PurchaseService {
	return &purchaseService{
		invoiceRepo:  invoiceRepo,
		supplierRepo: supplierRepo,
		accounting:   accounting,
		inventory:    inventory,
		txManager:    txManager,
		cache:        cache,
		logger:       logger,
	}
}

func (s *purchaseService) CreatePurchaseInvoice(ctx context.Context, tenantID uuid.UUID, input PurchaseInvoiceInput) (*models.PurchaseInvoice, error) {
	if len(input.Items) == 0 {
		return nil, common.NewValidationError("items", "a purchase invoice needs at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, common.NewValidationError("items", fmt.Sprintf("quantity for %q must be positive", item.ProductName))
		}
		if item.PurchasePrice.IsNegative() {
			return nil, common.NewValidationError("items", fmt.Sprintf("purchase price for %q must not be negative", item.ProductName))
		}
	}
	if _, err := s.supplierRepo.GetByID(ctx, tenantID, input.SupplierID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("supplier")
		}
		return nil, err
	}

	invoice := &models.PurchaseInvoice{
		ID:            uuid.New(),
		TenantID:      tenantID,
		SupplierID:    input.SupplierID,
		InvoiceNumber: input.InvoiceNumber,
		InvoiceDate:   input.InvoiceDate,
		Notes:         input.Notes,
	}
	if invoice.InvoiceDate.IsZero() {
		invoice.InvoiceDate = time.Now()
	}
	for _, item := range input.Items {
		invoice.Items = append(invoice.Items, &models.PurchaseItem{
			ID:                uuid.New(),
			PurchaseInvoiceID: invoice.ID,
			ProductName:       item.ProductName,
			ProductVariantID:  item.ProductVariantID,
			Quantity:          item.Quantity,
			PurchasePrice:     item.PurchasePrice,
		})
	}
	invoice.TotalAmount = invoice.Total()

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return err
		}
		if err := s.inventory.IncreaseForPurchase(ctx, tenantID, invoice.Items); err != nil {
			return err
		}

		inventoryAcct, err := s.accounting.GetOrCreateAccount(ctx, tenantID, models.AccountCodeInventory, "Inventory", models.AccountTypeAsset, models.AccountSubtypeInventory)
		if err != nil {
			return err
		}
		payable, err := s.accounting.GetOrCreateAccount(ctx, tenantID, models.AccountCodeAccountsPayable, "Accounts Payable", models.AccountTypeLiability, models.AccountSubtypeAccountsPayable)
		if err != nil {
			return err
		}
		meta := models.TransactionMeta{
			Date:              invoice.InvoiceDate,
			Description:       fmt.Sprintf("Purchase invoice %s", invoice.InvoiceNumber),
			PurchaseInvoiceID: &invoice.ID,
		}
		_, err = s.accounting.CreateTransaction(ctx, tenantID, meta, []models.LineInput{
			{AccountID: inventoryAcct.ID, Debit: invoice.TotalAmount},
			{AccountID: payable.ID, Credit: invoice.TotalAmount},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteSupplierBalance(ctx, tenantID, input.SupplierID); err != nil {
			s.logger.WithError(err).Warn("failed to invalidate supplier balance cache")
		}
	}
	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"invoice_id": invoice.ID,
		"total":      invoice.TotalAmount,
	}).Info("posted purchase invoice")
	return invoice, nil
}

func (s *purchaseService) GetPurchaseInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*models.PurchaseInvoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, invoiceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("purchase invoice")
	}
	return invoice, err
}

func (s *purchaseService) ListBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, limit, offset int) ([]*models.PurchaseInvoice, error) {
	return s.invoiceRepo.ListBySupplier(ctx, tenantID, supplierID, limit, offset)
}
