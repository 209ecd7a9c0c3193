package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockKey identifies the unit stock is tracked at: a whole product or
// one of its variants. A demand carrying a variant id is allocated at
// variant granularity, everything else at product granularity.
type StockKey struct {
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"product_variant_id"`
}

// ProductKey builds a key for product-level tracking.
func ProductKey(productID uuid.UUID) StockKey {
	return StockKey{ProductID: productID}
}

// VariantKey builds a key for variant-level tracking.
func VariantKey(variantID uuid.UUID) StockKey {
	return StockKey{VariantID: variantID}
}

// IsVariant reports whether the key tracks a variant.
func (k StockKey) IsVariant() bool { return k.VariantID != uuid.Nil }

// IsZero reports whether the key identifies nothing.
func (k StockKey) IsZero() bool {
	return k.ProductID == uuid.Nil && k.VariantID == uuid.Nil
}

// StockDemand is one requested {product-or-variant, quantity} pair.
type StockDemand struct {
	Key         StockKey        `json:"key"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// StockValidationError describes one item that does not fit remaining
// stock. Errors are collected, not short-circuited, so callers can show
// every problem at once.
type StockValidationError struct {
	ProductID         *uuid.UUID `json:"product_id,omitempty"`
	ProductVariantID  *uuid.UUID `json:"product_variant_id,omitempty"`
	ProductName       string     `json:"product_name"`
	RequestedQuantity int        `json:"requested_quantity"`
	AvailableStock    int        `json:"available_stock"`
	CurrentStock      int        `json:"current_stock"`
	AllocatedStock    int        `json:"allocated_stock"`
	Message           string     `json:"message"`
}

// StockValidationResult reports whether every demanded item fits
// remaining stock. Insufficient stock is an invalid result, not an
// error return.
type StockValidationResult struct {
	IsValid bool                   `json:"is_valid"`
	Errors  []StockValidationError `json:"errors"`
}
