package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseInvoice records goods bought from a supplier. TotalAmount is
// decremented (floored at 0) when a supplier return is processed
// against it, so the supplier's payable balance reflects the return.
type PurchaseInvoice struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TenantID      uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	SupplierID    uuid.UUID       `json:"supplier_id" db:"supplier_id"`
	InvoiceNumber string          `json:"invoice_number" db:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	InvoiceDate   time.Time       `json:"invoice_date" db:"invoice_date"`
	Notes         *string         `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	Items []*PurchaseItem `json:"items,omitempty" db:"-"`
}

// Total sums quantity × purchase price across the invoice's items.
func (p *PurchaseInvoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.PurchasePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// PurchaseItem is one line of a purchase invoice. Like return items,
// goods are identified by variant id when the product has variants,
// otherwise by product name.
type PurchaseItem struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	PurchaseInvoiceID uuid.UUID       `json:"purchase_invoice_id" db:"purchase_invoice_id"`
	ProductName       string          `json:"product_name" db:"product_name"`
	ProductVariantID  *uuid.UUID      `json:"product_variant_id" db:"product_variant_id"`
	Quantity          int             `json:"quantity" db:"quantity"`
	PurchasePrice     decimal.Decimal `json:"purchase_price" db:"purchase_price"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}
