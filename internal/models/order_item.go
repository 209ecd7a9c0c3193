package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is the normalized line of an order. Exactly one of
// ProductID/ProductVariantID identifies what was sold; an item with a
// variant id is tracked at variant granularity, one without at product
// granularity. The two are never mixed for the same item.
type OrderItem struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	TenantID         uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	OrderID          uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID        *uuid.UUID      `json:"product_id" db:"product_id"`
	ProductVariantID *uuid.UUID      `json:"product_variant_id" db:"product_variant_id"`
	Quantity         int             `json:"quantity" db:"quantity"`
	Price            decimal.Decimal `json:"price" db:"price"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// Demand converts the item into its stock demand.
func (i *OrderItem) Demand() StockDemand {
	d := StockDemand{Quantity: i.Quantity, Price: i.Price}
	if i.ProductVariantID != nil {
		d.Key = VariantKey(*i.ProductVariantID)
	} else if i.ProductID != nil {
		d.Key = ProductKey(*i.ProductID)
	}
	return d
}
