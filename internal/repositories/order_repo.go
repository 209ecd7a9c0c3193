package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
)

// OrderRepository is the read surface over orders this engine needs.
// Order lifecycle writes live in the order management service; here
// orders are only input to allocation and balance math.
type OrderRepository interface {
	ListByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []string) ([]*models.Order, error)
	ListByCustomerAndStatuses(ctx context.Context, tenantID, customerID uuid.UUID, statuses []string) ([]*models.Order, error)
}

type orderRepo struct {
	db Querier
}

func NewOrderRepo(db Querier) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, tenant_id, customer_id, order_number, status, order_date, selected_products, product_quantities, product_prices, shipping_charge, cod_fee, cod_fee_paid_by, refund_amount, paid_amount, created_at, updated_at`

func (r *orderRepo) ListByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []string) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND status = ANY($2)
		ORDER BY order_date
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.TenantID, &order.CustomerID, &order.OrderNumber, &order.Status, &order.OrderDate, &order.SelectedProducts, &order.ProductQuantities, &order.ProductPrices, &order.ShippingCharge, &order.CODFee, &order.CODFeePaidBy, &order.RefundAmount, &order.PaidAmount, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepo) ListByCustomerAndStatuses(ctx context.Context, tenantID, customerID uuid.UUID, statuses []string) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE tenant_id = $1 AND customer_id = $2 AND status = ANY($3)
		ORDER BY order_date
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, customerID, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.TenantID, &order.CustomerID, &order.OrderNumber, &order.Status, &order.OrderDate, &order.SelectedProducts, &order.ProductQuantities, &order.ProductPrices, &order.ShippingCharge, &order.CODFee, &order.CODFeePaidBy, &order.RefundAmount, &order.PaidAmount, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
