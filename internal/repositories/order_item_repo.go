package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
)

// OrderItemRepository is the read surface over normalized order items;
// item writes belong to the order management service.
type OrderItemRepository interface {
	ListByOrderIDs(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) (map[uuid.UUID][]*models.OrderItem, error)
}

type orderItemRepo struct {
	db Querier
}

func NewOrderItemRepo(db Querier) OrderItemRepository {
	return &orderItemRepo{db: db}
}

const orderItemColumns = `id, tenant_id, order_id, product_id, product_variant_id, quantity, price, created_at`

// ListByOrderIDs loads items for a batch of orders in one round trip,
// grouped by order id. The allocation calculator walks every active
// order, so per-order queries would be O(orders) round trips.
func (r *orderItemRepo) ListByOrderIDs(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) (map[uuid.UUID][]*models.OrderItem, error) {
	grouped := make(map[uuid.UUID][]*models.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	query := `
		SELECT ` + orderItemColumns + `
		FROM order_items
		WHERE tenant_id = $1 AND order_id = ANY($2)
		ORDER BY created_at
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.TenantID, &item.OrderID, &item.ProductID, &item.ProductVariantID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			return nil, err
		}
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, rows.Err()
}
