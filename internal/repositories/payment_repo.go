package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error)
	SumByOrderAndType(ctx context.Context, tenantID, orderID uuid.UUID, paymentType string) (decimal.Decimal, error)
	SumBySupplierAndType(ctx context.Context, tenantID, supplierID uuid.UUID, paymentType string) (decimal.Decimal, error)
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.Payment, error)
}

type paymentRepo struct {
	db Querier
}

func NewPaymentRepo(db Querier) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, tenant_id, payment_type, order_id, purchase_invoice_id, customer_id, supplier_id, amount, payment_method, payment_date, notes, created_at`

func (r *paymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (id, tenant_id, payment_type, order_id, purchase_invoice_id, customer_id, supplier_id, amount, payment_method, payment_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, payment.ID, payment.TenantID, payment.PaymentType, payment.OrderID, payment.PurchaseInvoiceID, payment.CustomerID, payment.SupplierID, payment.Amount, payment.PaymentMethod, payment.PaymentDate, payment.Notes)
	return err
}

func (r *paymentRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE tenant_id = $1 AND id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&payment.ID, &payment.TenantID, &payment.PaymentType, &payment.OrderID, &payment.PurchaseInvoiceID, &payment.CustomerID, &payment.SupplierID, &payment.Amount, &payment.PaymentMethod, &payment.PaymentDate, &payment.Notes, &payment.CreatedAt)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// SumByOrderAndType is the authoritative paid figure for an order; the
// order's own paid_amount column is a display cache that may be stale.
func (r *paymentRepo) SumByOrderAndType(ctx context.Context, tenantID, orderID uuid.UUID, paymentType string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE tenant_id = $1 AND order_id = $2 AND payment_type = $3
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, orderID, paymentType).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *paymentRepo) SumBySupplierAndType(ctx context.Context, tenantID, supplierID uuid.UUID, paymentType string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE tenant_id = $1 AND supplier_id = $2 AND payment_type = $3
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, supplierID, paymentType).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *paymentRepo) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE tenant_id = $1 AND order_id = $2
		ORDER BY payment_date
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		if err := rows.Scan(&payment.ID, &payment.TenantID, &payment.PaymentType, &payment.OrderID, &payment.PurchaseInvoiceID, &payment.CustomerID, &payment.SupplierID, &payment.Amount, &payment.PaymentMethod, &payment.PaymentDate, &payment.Notes, &payment.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
