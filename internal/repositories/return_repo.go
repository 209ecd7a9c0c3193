package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
)

type ReturnRepository interface {
	Create(ctx context.Context, ret *models.Return) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Return, error)
	Update(ctx context.Context, ret *models.Return) error
	ReplaceItems(ctx context.Context, ret *models.Return) error
	ListByInvoice(ctx context.Context, tenantID, purchaseInvoiceID uuid.UUID) ([]*models.Return, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Return, error)
}

type returnRepo struct {
	db Querier
}

func NewReturnRepo(db Querier) ReturnRepository {
	return &returnRepo{db: db}
}

const returnColumns = `id, tenant_id, return_type, status, purchase_invoice_id, return_handling_method, refund_account_id, total_amount, return_date, notes, created_at, updated_at`

func (r *returnRepo) Create(ctx context.Context, ret *models.Return) error {
	q := querier(ctx, r.db)
	query := `
		INSERT INTO returns (id, tenant_id, return_type, status, purchase_invoice_id, return_handling_method, refund_account_id, total_amount, return_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := q.Exec(ctx, query, ret.ID, ret.TenantID, ret.ReturnType, ret.Status, ret.PurchaseInvoiceID, ret.ReturnHandlingMethod, ret.RefundAccountID, ret.TotalAmount, ret.ReturnDate, ret.Notes)
	if err != nil {
		return err
	}
	return r.insertItems(ctx, ret)
}

func (r *returnRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Return, error) {
	ret := &models.Return{}
	query := `
		SELECT ` + returnColumns + `
		FROM returns
		WHERE tenant_id = $1 AND id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&ret.ID, &ret.TenantID, &ret.ReturnType, &ret.Status, &ret.PurchaseInvoiceID, &ret.ReturnHandlingMethod, &ret.RefundAccountID, &ret.TotalAmount, &ret.ReturnDate, &ret.Notes, &ret.CreatedAt, &ret.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if ret.Items, err = r.itemsFor(ctx, ret.ID); err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *returnRepo) Update(ctx context.Context, ret *models.Return) error {
	query := `
		UPDATE returns
		SET return_type = $1, status = $2, purchase_invoice_id = $3, return_handling_method = $4, refund_account_id = $5, total_amount = $6, return_date = $7, notes = $8, updated_at = NOW()
		WHERE tenant_id = $9 AND id = $10
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, ret.ReturnType, ret.Status, ret.PurchaseInvoiceID, ret.ReturnHandlingMethod, ret.RefundAccountID, ret.TotalAmount, ret.ReturnDate, ret.Notes, ret.TenantID, ret.ID)
	return err
}

// ReplaceItems swaps the return's items for the set on ret.
func (r *returnRepo) ReplaceItems(ctx context.Context, ret *models.Return) error {
	q := querier(ctx, r.db)
	if _, err := q.Exec(ctx, `DELETE FROM return_items WHERE return_id = $1`, ret.ID); err != nil {
		return err
	}
	return r.insertItems(ctx, ret)
}

// ListByInvoice returns every non-rejected return recorded against the
// invoice, items included; this feeds the already-returned availability
// calculation.
func (r *returnRepo) ListByInvoice(ctx context.Context, tenantID, purchaseInvoiceID uuid.UUID) ([]*models.Return, error) {
	query := `
		SELECT ` + returnColumns + `
		FROM returns
		WHERE tenant_id = $1 AND purchase_invoice_id = $2 AND status <> $3
		ORDER BY return_date
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, purchaseInvoiceID, models.ReturnStatusRejected)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var returns []*models.Return
	for rows.Next() {
		ret := &models.Return{}
		if err := rows.Scan(&ret.ID, &ret.TenantID, &ret.ReturnType, &ret.Status, &ret.PurchaseInvoiceID, &ret.ReturnHandlingMethod, &ret.RefundAccountID, &ret.TotalAmount, &ret.ReturnDate, &ret.Notes, &ret.CreatedAt, &ret.UpdatedAt); err != nil {
			return nil, err
		}
		returns = append(returns, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, ret := range returns {
		if ret.Items, err = r.itemsFor(ctx, ret.ID); err != nil {
			return nil, err
		}
	}
	return returns, nil
}

func (r *returnRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Return, error) {
	query := `
		SELECT ` + returnColumns + `
		FROM returns
		WHERE tenant_id = $1
		ORDER BY return_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var returns []*models.Return
	for rows.Next() {
		ret := &models.Return{}
		if err := rows.Scan(&ret.ID, &ret.TenantID, &ret.ReturnType, &ret.Status, &ret.PurchaseInvoiceID, &ret.ReturnHandlingMethod, &ret.RefundAccountID, &ret.TotalAmount, &ret.ReturnDate, &ret.Notes, &ret.CreatedAt, &ret.UpdatedAt); err != nil {
			return nil, err
		}
		returns = append(returns, ret)
	}
	return returns, rows.Err()
}

func (r *returnRepo) insertItems(ctx context.Context, ret *models.Return) error {
	q := querier(ctx, r.db)
	query := `
		INSERT INTO return_items (id, return_id, product_name, product_variant_id, quantity, purchase_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	for _, item := range ret.Items {
		if _, err := q.Exec(ctx, query, item.ID, item.ReturnID, item.ProductName, item.ProductVariantID, item.Quantity, item.PurchasePrice); err != nil {
			return err
		}
	}
	return nil
}

func (r *returnRepo) itemsFor(ctx context.Context, returnID uuid.UUID) ([]*models.ReturnItem, error) {
	query := `
		SELECT id, return_id, product_name, product_variant_id, quantity, purchase_price, created_at
		FROM return_items
		WHERE return_id = $1
		ORDER BY created_at
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, returnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ReturnItem
	for rows.Next() {
		item := &models.ReturnItem{}
		if err := rows.Scan(&item.ID, &item.ReturnID, &item.ProductName, &item.ProductVariantID, &item.Quantity, &item.PurchasePrice, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
