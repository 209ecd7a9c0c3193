package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Return types. Supplier returns are processed synchronously on save;
// there is no pending-approval state that defers their effects.
const (
	ReturnTypeSupplier         = "SUPPLIER"
	ReturnTypeCustomerExchange = "CUSTOMER_EXCHANGE"
	ReturnTypeCustomerRefund   = "CUSTOMER_REFUND"
)

// Supplier return handling methods.
const (
	ReturnHandlingReduceAP = "REDUCE_AP"
	ReturnHandlingRefund   = "REFUND"
)

// Return statuses exist for display; they do not gate processing.
const (
	ReturnStatusProcessed = "PROCESSED"
	ReturnStatusRejected  = "REJECTED"
)

type Return struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	TenantID             uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	ReturnType           string          `json:"return_type" db:"return_type"`
	Status               string          `json:"status" db:"status"`
	PurchaseInvoiceID    *uuid.UUID      `json:"purchase_invoice_id" db:"purchase_invoice_id"`
	ReturnHandlingMethod string          `json:"return_handling_method" db:"return_handling_method"`
	RefundAccountID      *uuid.UUID      `json:"refund_account_id" db:"refund_account_id"`
	TotalAmount          decimal.Decimal `json:"total_amount" db:"total_amount"`
	ReturnDate           time.Time       `json:"return_date" db:"return_date"`
	Notes                *string         `json:"notes" db:"notes"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`

	Items []*ReturnItem `json:"items,omitempty" db:"-"`
}

// Total sums quantity × purchase price across the return's items.
func (r *Return) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.PurchasePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ReturnItem identifies returned goods either by variant id or, for
// products without variants, by product name as it appeared on the
// purchase invoice.
type ReturnItem struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ReturnID         uuid.UUID       `json:"return_id" db:"return_id"`
	ProductName      string          `json:"product_name" db:"product_name"`
	ProductVariantID *uuid.UUID      `json:"product_variant_id" db:"product_variant_id"`
	Quantity         int             `json:"quantity" db:"quantity"`
	PurchasePrice    decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}
