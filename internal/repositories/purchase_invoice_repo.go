package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseInvoiceRepository interface {
	Create(ctx context.Context, invoice *models.PurchaseInvoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PurchaseInvoice, error)
	AdjustTotal(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error
	SumTotalsBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (decimal.Decimal, error)
	ListBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, limit, offset int) ([]*models.PurchaseInvoice, error)
}

type purchaseInvoiceRepo struct {
	db Querier
}

func NewPurchaseInvoiceRepo(db Querier) PurchaseInvoiceRepository {
	return &purchaseInvoiceRepo{db: db}
}

const invoiceColumns = `id, tenant_id, supplier_id, invoice_number, total_amount, invoice_date, notes, created_at, updated_at`

func (r *purchaseInvoiceRepo) Create(ctx context.Context, invoice *models.PurchaseInvoice) error {
	q := querier(ctx, r.db)
	query := `
		INSERT INTO purchase_invoices (id, tenant_id, supplier_id, invoice_number, total_amount, invoice_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := q.Exec(ctx, query, invoice.ID, invoice.TenantID, invoice.SupplierID, invoice.InvoiceNumber, invoice.TotalAmount, invoice.InvoiceDate, invoice.Notes)
	if err != nil {
		return err
	}
	itemQuery := `
		INSERT INTO purchase_items (id, purchase_invoice_id, product_name, product_variant_id, quantity, purchase_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	for _, item := range invoice.Items {
		if _, err := q.Exec(ctx, itemQuery, item.ID, item.PurchaseInvoiceID, item.ProductName, item.ProductVariantID, item.Quantity, item.PurchasePrice); err != nil {
			return err
		}
	}
	return nil
}

func (r *purchaseInvoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PurchaseInvoice, error) {
	invoice := &models.PurchaseInvoice{}
	query := `
		SELECT ` + invoiceColumns + `
		FROM purchase_invoices
		WHERE tenant_id = $1 AND id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&invoice.ID, &invoice.TenantID, &invoice.SupplierID, &invoice.InvoiceNumber, &invoice.TotalAmount, &invoice.InvoiceDate, &invoice.Notes, &invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}

	itemQuery := `
		SELECT id, purchase_invoice_id, product_name, product_variant_id, quantity, purchase_price, created_at
		FROM purchase_items
		WHERE purchase_invoice_id = $1
		ORDER BY created_at
	`
	rows, err := querier(ctx, r.db).Query(ctx, itemQuery, invoice.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		item := &models.PurchaseItem{}
		if err := rows.Scan(&item.ID, &item.PurchaseInvoiceID, &item.ProductName, &item.ProductVariantID, &item.Quantity, &item.PurchasePrice, &item.CreatedAt); err != nil {
			return nil, err
		}
		invoice.Items = append(invoice.Items, item)
	}
	return invoice, rows.Err()
}

// AdjustTotal moves the invoice total by delta, floored at zero so a
// return can never push an invoice negative.
func (r *purchaseInvoiceRepo) AdjustTotal(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE purchase_invoices
		SET total_amount = GREATEST(total_amount + $1, 0), updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, delta, tenantID, id)
	return err
}

func (r *purchaseInvoiceRepo) SumTotalsBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM purchase_invoices
		WHERE tenant_id = $1 AND supplier_id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, supplierID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *purchaseInvoiceRepo) ListBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, limit, offset int) ([]*models.PurchaseInvoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM purchase_invoices
		WHERE tenant_id = $1 AND supplier_id = $2
		ORDER BY invoice_date DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, supplierID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.PurchaseInvoice
	for rows.Next() {
		invoice := &models.PurchaseInvoice{}
		if err := rows.Scan(&invoice.ID, &invoice.TenantID, &invoice.SupplierID, &invoice.InvoiceNumber, &invoice.TotalAmount, &invoice.InvoiceDate, &invoice.Notes, &invoice.CreatedAt, &invoice.UpdatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}
