package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the double-entry primitive. A transaction optionally
// references the business event that produced it. At most one live
// (non-superseded) transaction exists per (tenant_id, order_return_id);
// editing a return supersedes the old transaction instead of deleting
// it, so the full history survives.
type Transaction struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	TenantID          uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Date              time.Time  `json:"date" db:"date"`
	Description       string     `json:"description" db:"description"`
	PurchaseInvoiceID *uuid.UUID `json:"purchase_invoice_id" db:"purchase_invoice_id"`
	OrderReturnID     *uuid.UUID `json:"order_return_id" db:"order_return_id"`
	PaymentID         *uuid.UUID `json:"payment_id" db:"payment_id"`
	SupersededBy      *uuid.UUID `json:"superseded_by" db:"superseded_by"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`

	Lines []*TransactionLine `json:"lines,omitempty" db:"-"`
}

// TransactionLine posts an amount to one account. Exactly one of
// Debit/Credit is non-zero per line.
type TransactionLine struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TransactionID uuid.UUID       `json:"transaction_id" db:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id" db:"account_id"`
	Debit         decimal.Decimal `json:"debit" db:"debit"`
	Credit        decimal.Decimal `json:"credit" db:"credit"`
}

// LineInput is the caller-facing shape for a line before persistence.
type LineInput struct {
	AccountID uuid.UUID       `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TransactionMeta carries the descriptive fields for a new transaction.
type TransactionMeta struct {
	Date              time.Time  `json:"date"`
	Description       string     `json:"description"`
	PurchaseInvoiceID *uuid.UUID `json:"purchase_invoice_id,omitempty"`
	OrderReturnID     *uuid.UUID `json:"order_return_id,omitempty"`
	PaymentID         *uuid.UUID `json:"payment_id,omitempty"`
}
