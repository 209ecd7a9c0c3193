package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is tracked either at product granularity or per variant
// (color/size). CurrentQuantity is the on-hand stock, mutated by
// purchase receipt, return processing and order confirmation.
type Product struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TenantID        uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Name            string          `json:"name" db:"name"`
	SKU             *string         `json:"sku" db:"sku"`
	PurchasePrice   decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	SellingPrice    decimal.Decimal `json:"selling_price" db:"selling_price"`
	CurrentQuantity int             `json:"current_quantity" db:"current_quantity"`
	HasVariants     bool            `json:"has_variants" db:"has_variants"`
	Description     *string         `json:"description" db:"description"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductVariant is one (color, size) combination of a product with its
// own stock counter.
type ProductVariant struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TenantID        uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	ProductID       uuid.UUID       `json:"product_id" db:"product_id"`
	Color           *string         `json:"color" db:"color"`
	Size            *string         `json:"size" db:"size"`
	PurchasePrice   decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	CurrentQuantity int             `json:"current_quantity" db:"current_quantity"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
