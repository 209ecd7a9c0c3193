package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// SupplierReturnInput carries everything needed to record or rewrite a
// supplier return against a purchase invoice.
type SupplierReturnInput struct {
	PurchaseInvoiceID uuid.UUID
	HandlingMethod    string
	RefundAccountID   *uuid.UUID
	ReturnDate        time.Time
	Notes             *string
	Items             []ReturnItemInput
}

type ReturnItemInput struct {
	ProductName      string
	ProductVariantID *uuid.UUID
	Quantity         int
	PurchasePrice    decimal.Decimal
}

// ReturnService processes supplier returns. A return is not a pending
// request: saving it immediately moves stock, rewrites the invoice
// total and posts the ledger entry, all inside one database
// transaction. Editing never deletes the original ledger entry; it
// reverses it, marks it superseded and posts a fresh one, so the audit
// trail survives while net balances match a delete-and-recreate.
type ReturnService interface {
	CreateSupplierReturn(ctx context.Context, tenantID uuid.UUID, input SupplierReturnInput) (*models.Return, error)
	EditSupplierReturn(ctx context.Context, tenantID, returnID uuid.UUID, input SupplierReturnInput) (*models.Return, error)
	RejectSupplierReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Return, error)
	GetReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Return, error)
	ListReturns(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Return, error)
}

type returnService struct {
	returnRepo  repositories.ReturnRepository
	invoiceRepo repositories.PurchaseInvoiceRepository
	accountRepo repositories.AccountRepository
	accounting  AccountingService
	inventory   InventoryService
	txManager   repositories.TxManager
	cache       caching.CacheService
	logger      *logrus.Logger
}

func NewReturnService(returnRepo repositories.ReturnRepository, invoiceRepo repositories.PurchaseInvoiceRepository, accountRepo repositories.AccountRepository, accounting AccountingService, inventory InventoryService, txManager repositories.TxManager, cache caching.CacheService, logger *logrus.Logger) ReturnService {
	return &returnService{
		returnRepo:  returnRepo,
		invoiceRepo: invoiceRepo,
		accountRepo: accountRepo,
		accounting:  accounting,
		inventory:   inventory,
		txManager:   txManager,
		cache:       cache,
		logger:      logger,
	}
}

func (s *returnService) CreateSupplierReturn(ctx context.Context, tenantID uuid.UUID, input SupplierReturnInput) (*models.Return, error) {
	invoice, refundAccountID, err := s.validateInput(ctx, tenantID, input)
	if err != nil {
		return nil, err
	}
	if err := s.checkReturnableQuantities(ctx, tenantID, invoice, input.Items, nil); err != nil {
		return nil, err
	}

	ret := buildReturn(tenantID, input, refundAccountID)
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.returnRepo.Create(ctx, ret); err != nil {
			return err
		}
		return s.applyReturnEffects(ctx, tenantID, ret, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSupplierBalance(ctx, tenantID, invoice.SupplierID)
	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"return_id":  ret.ID,
		"invoice_id": invoice.ID,
		"method":     ret.ReturnHandlingMethod,
		"total":      ret.TotalAmount,
	}).Info("processed supplier return")
	return ret, nil
}

// EditSupplierReturn rewrites a processed return. The prior ledger
// entry is reversed at its own amount and the original return date,
// then superseded by a fresh entry for the new values; stock and the
// invoice total are restored to their pre-return state before the new
// items are applied.
func (s *returnService) EditSupplierReturn(ctx context.Context, tenantID, returnID uuid.UUID, input SupplierReturnInput) (*models.Return, error) {
	existing, err := s.GetReturn(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	if existing.ReturnType != models.ReturnTypeSupplier {
		return nil, common.NewValidationError("return_type", "only supplier returns can be edited here")
	}
	if existing.Status == models.ReturnStatusRejected {
		return nil, common.NewValidationError("status", "a rejected return cannot be edited")
	}
	if existing.PurchaseInvoiceID == nil || *existing.PurchaseInvoiceID != input.PurchaseInvoiceID {
		return nil, common.NewValidationError("purchase_invoice_id", "a return cannot be moved to a different invoice")
	}

	invoice, refundAccountID, err := s.validateInput(ctx, tenantID, input)
	if err != nil {
		return nil, err
	}
	if err := s.checkReturnableQuantities(ctx, tenantID, invoice, input.Items, &returnID); err != nil {
		return nil, err
	}

	oldItems := existing.Items
	oldTotal := existing.TotalAmount
	oldDate := existing.ReturnDate

	updated := buildReturn(tenantID, input, refundAccountID)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	for _, item := range updated.Items {
		item.ReturnID = existing.ID
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.unwindReturnEffects(ctx, tenantID, existing, oldItems, oldTotal, oldDate, invoice.ID); err != nil {
			return err
		}
		if err := s.returnRepo.Update(ctx, updated); err != nil {
			return err
		}
		if err := s.returnRepo.ReplaceItems(ctx, updated); err != nil {
			return err
		}
		return s.applyReturnEffects(ctx, tenantID, updated, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSupplierBalance(ctx, tenantID, invoice.SupplierID)
	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"return_id": returnID,
		"old_total": oldTotal,
		"new_total": updated.TotalAmount,
	}).Info("rewrote supplier return")
	return updated, nil
}

// RejectSupplierReturn unwinds a processed return and marks it
// rejected. The return row and its items stay; rejected returns are
// excluded from the already-returned calculation and from balances.
func (s *returnService) RejectSupplierReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Return, error) {
	existing, err := s.GetReturn(ctx, tenantID, returnID)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.ReturnStatusRejected {
		return existing, nil
	}
	if existing.PurchaseInvoiceID == nil {
		return nil, common.NewValidationError("purchase_invoice_id", "return has no linked invoice")
	}

	var supplierID uuid.UUID
	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, *existing.PurchaseInvoiceID)
	if err == nil {
		supplierID = invoice.SupplierID
	}

	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.unwindReturnEffects(ctx, tenantID, existing, existing.Items, existing.TotalAmount, existing.ReturnDate, *existing.PurchaseInvoiceID); err != nil {
			return err
		}
		existing.Status = models.ReturnStatusRejected
		return s.returnRepo.Update(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	if supplierID != uuid.Nil {
		s.invalidateSupplierBalance(ctx, tenantID, supplierID)
	}
	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"return_id": returnID,
	}).Info("rejected supplier return")
	return existing, nil
}

func (s *returnService) GetReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Return, error) {
	ret, err := s.returnRepo.GetByID(ctx, tenantID, returnID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("return")
	}
	return ret, err
}

func (s *returnService) ListReturns(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Return, error) {
	return s.returnRepo.List(ctx, tenantID, limit, offset)
}

// validateInput checks the handling method, the refund account and the
// items, and loads the invoice.
func (s *returnService) validateInput(ctx context.Context, tenantID uuid.UUID, input SupplierReturnInput) (*models.PurchaseInvoice, *uuid.UUID, error) {
	if len(input.Items) == 0 {
		return nil, nil, common.NewValidationError("items", "a return needs at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, nil, common.NewValidationError("items", fmt.Sprintf("quantity for %q must be positive", item.ProductName))
		}
		if item.PurchasePrice.IsNegative() {
			return nil, nil, common.NewValidationError("items", fmt.Sprintf("purchase price for %q must not be negative", item.ProductName))
		}
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, tenantID, input.PurchaseInvoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, common.NewNotFoundError("purchase invoice")
		}
		return nil, nil, err
	}

	switch input.HandlingMethod {
	case models.ReturnHandlingReduceAP:
		return invoice, nil, nil
	case models.ReturnHandlingRefund:
		if input.RefundAccountID == nil {
			return nil, nil, common.NewValidationError("refund_account_id", "a refund return needs a refund account")
		}
		account, err := s.accountRepo.GetByID(ctx, tenantID, *input.RefundAccountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, common.NewNotFoundError("refund account")
			}
			return nil, nil, err
		}
		if !account.IsRefundable() {
			return nil, nil, common.NewValidationError("refund_account_id", "refund account must be a cash or bank asset account")
		}
		return invoice, input.RefundAccountID, nil
	default:
		return nil, nil, common.NewValidationError("return_handling_method", "handling method must be REDUCE_AP or REFUND")
	}
}

// checkReturnableQuantities enforces purchased minus already-returned
// per item. Items are keyed by variant id when present, otherwise by
// lowercased product name, matching how purchase paperwork identifies
// goods. Prior rejected returns do not count, and the return under
// edit is excluded so it does not count against itself.
func (s *returnService) checkReturnableQuantities(ctx context.Context, tenantID uuid.UUID, invoice *models.PurchaseInvoice, items []ReturnItemInput, excludeReturnID *uuid.UUID) error {
	purchased := make(map[string]int)
	for _, item := range invoice.Items {
		purchased[itemKey(item.ProductVariantID, item.ProductName)] += item.Quantity
	}

	prior, err := s.returnRepo.ListByInvoice(ctx, tenantID, invoice.ID)
	if err != nil {
		return err
	}
	returned := make(map[string]int)
	for _, ret := range prior {
		if excludeReturnID != nil && ret.ID == *excludeReturnID {
			continue
		}
		for _, item := range ret.Items {
			returned[itemKey(item.ProductVariantID, item.ProductName)] += item.Quantity
		}
	}

	requested := make(map[string]int)
	for _, item := range items {
		requested[itemKey(item.ProductVariantID, item.ProductName)] += item.Quantity
	}
	for _, item := range items {
		key := itemKey(item.ProductVariantID, item.ProductName)
		bought, ok := purchased[key]
		if !ok {
			return common.NewValidationError("items", fmt.Sprintf("%q is not on the purchase invoice", item.ProductName))
		}
		returnable := bought - returned[key]
		if requested[key] > returnable {
			return common.NewValidationError("items", fmt.Sprintf("cannot return %d of %q; only %d returnable (%d purchased, %d already returned)", requested[key], item.ProductName, returnable, bought, returned[key]))
		}
	}
	return nil
}

// applyReturnEffects performs the side effects of a processed return:
// stock decrease, invoice total decrement and the ledger entry. Must
// run inside the caller's transaction.
func (s *returnService) applyReturnEffects(ctx context.Context, tenantID uuid.UUID, ret *models.Return, invoice *models.PurchaseInvoice) error {
	if err := s.inventory.DecreaseForReturn(ctx, tenantID, ret.Items); err != nil {
		return err
	}
	if err := s.invoiceRepo.AdjustTotal(ctx, tenantID, invoice.ID, ret.TotalAmount.Neg()); err != nil {
		return err
	}

	lines, err := s.buildReturnLines(ctx, tenantID, ret)
	if err != nil {
		return err
	}
	meta := models.TransactionMeta{
		Date:          ret.ReturnDate,
		Description:   fmt.Sprintf("Supplier return against invoice %s", invoice.InvoiceNumber),
		OrderReturnID: &ret.ID,
	}
	_, err = s.accounting.CreateTransaction(ctx, tenantID, meta, lines)
	return err
}

// unwindReturnEffects restores stock and the invoice total consumed by
// the return and, when a live ledger entry exists, reverses it at the
// old amount and old return date and marks it superseded. The prior
// handling method is derived from which account subtypes the live
// entry's lines touch, not from the stored return row, since the row
// is about to be rewritten.
func (s *returnService) unwindReturnEffects(ctx context.Context, tenantID uuid.UUID, ret *models.Return, oldItems []*models.ReturnItem, oldTotal decimal.Decimal, oldDate time.Time, invoiceID uuid.UUID) error {
	if err := s.inventory.RestoreForReturn(ctx, tenantID, oldItems); err != nil {
		return err
	}
	if err := s.invoiceRepo.AdjustTotal(ctx, tenantID, invoiceID, oldTotal); err != nil {
		return err
	}

	live, err := s.accounting.FindLiveTransactionByReturn(ctx, tenantID, ret.ID)
	if err != nil {
		return err
	}
	if live == nil {
		return nil
	}

	priorMethod, err := s.deriveHandlingMethod(ctx, tenantID, live)
	if err != nil {
		return err
	}
	reversal, err := s.accounting.ReverseTransaction(ctx, tenantID, live, oldDate, fmt.Sprintf("Reversal of %s supplier return entry %s", priorMethod, live.ID))
	if err != nil {
		return err
	}
	return s.accounting.SupersedeTransaction(ctx, tenantID, live.ID, reversal.ID)
}

// deriveHandlingMethod inspects the account subtypes a ledger entry's
// lines touch: an entry crediting a cash or bank account was a REFUND,
// otherwise REDUCE_AP.
func (s *returnService) deriveHandlingMethod(ctx context.Context, tenantID uuid.UUID, txn *models.Transaction) (string, error) {
	ids := make([]uuid.UUID, 0, len(txn.Lines))
	for _, line := range txn.Lines {
		ids = append(ids, line.AccountID)
	}
	accounts, err := s.accountRepo.GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return "", err
	}
	for _, line := range txn.Lines {
		account, ok := accounts[line.AccountID]
		if !ok {
			continue
		}
		if line.Credit.IsPositive() && account.IsRefundable() {
			return models.ReturnHandlingRefund, nil
		}
	}
	return models.ReturnHandlingReduceAP, nil
}

// buildReturnLines constructs the balanced ledger lines for a return.
// Both methods credit Inventory for the full value. REDUCE_AP debits
// AccountsPayable for the same amount. REFUND debits AccountsPayable
// for twice the amount and credits the refund account once, which
// keeps debits equal to credits while paying the supplier out of cash.
func (s *returnService) buildReturnLines(ctx context.Context, tenantID uuid.UUID, ret *models.Return) ([]models.LineInput, error) {
	inventory, err := s.accounting.GetOrCreateAccount(ctx, tenantID, models.AccountCodeInventory, "Inventory", models.AccountTypeAsset, models.AccountSubtypeInventory)
	if err != nil {
		return nil, err
	}
	payable, err := s.accounting.GetOrCreateAccount(ctx, tenantID, models.AccountCodeAccountsPayable, "Accounts Payable", models.AccountTypeLiability, models.AccountSubtypeAccountsPayable)
	if err != nil {
		return nil, err
	}

	total := ret.TotalAmount
	switch ret.ReturnHandlingMethod {
	case models.ReturnHandlingReduceAP:
		return []models.LineInput{
			{AccountID: payable.ID, Debit: total},
			{AccountID: inventory.ID, Credit: total},
		}, nil
	case models.ReturnHandlingRefund:
		return []models.LineInput{
			{AccountID: payable.ID, Debit: total.Mul(decimal.NewFromInt(2))},
			{AccountID: inventory.ID, Credit: total},
			{AccountID: *ret.RefundAccountID, Credit: total},
		}, nil
	default:
		return nil, common.NewValidationError("return_handling_method", "handling method must be REDUCE_AP or REFUND")
	}
}

func (s *returnService) invalidateSupplierBalance(ctx context.Context, tenantID, supplierID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteSupplierBalance(ctx, tenantID, supplierID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"tenant_id":   tenantID,
			"supplier_id": supplierID,
		}).WithError(err).Warn("failed to invalidate supplier balance cache")
	}
}

func buildReturn(tenantID uuid.UUID, input SupplierReturnInput, refundAccountID *uuid.UUID) *models.Return {
	ret := &models.Return{
		ID:                   uuid.New(),
		TenantID:             tenantID,
		ReturnType:           models.ReturnTypeSupplier,
		Status:               models.ReturnStatusProcessed,
		PurchaseInvoiceID:    &input.PurchaseInvoiceID,
		ReturnHandlingMethod: input.HandlingMethod,
		RefundAccountID:      refundAccountID,
		ReturnDate:           input.ReturnDate,
		Notes:                input.Notes,
	}
	if ret.ReturnDate.IsZero() {
		ret.ReturnDate = time.Now()
	}
	for _, item := range input.Items {
		ret.Items = append(ret.Items, &models.ReturnItem{
			ID:               uuid.New(),
			ReturnID:         ret.ID,
			ProductName:      item.ProductName,
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
			PurchasePrice:    item.PurchasePrice,
		})
	}
	ret.TotalAmount = ret.Total()
	return ret
}

func itemKey(variantID *uuid.UUID, productName string) string {
	if variantID != nil {
		return "variant:" + variantID.String()
	}
	return "name:" + strings.ToLower(productName)
}
