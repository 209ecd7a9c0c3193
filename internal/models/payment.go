package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment types. The payments table is the authoritative "paid" figure
// for balance calculations; order/invoice payment caches are display
// only.
const (
	PaymentTypeCustomer = "CUSTOMER_PAYMENT"
	PaymentTypeSupplier = "SUPPLIER_PAYMENT"
)

// Payment methods.
const (
	PaymentMethodCash         = "CASH"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
)

type Payment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	TenantID          uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	PaymentType       string          `json:"payment_type" db:"payment_type"`
	OrderID           *uuid.UUID      `json:"order_id" db:"order_id"`
	PurchaseInvoiceID *uuid.UUID      `json:"purchase_invoice_id" db:"purchase_invoice_id"`
	CustomerID        *uuid.UUID      `json:"customer_id" db:"customer_id"`
	SupplierID        *uuid.UUID      `json:"supplier_id" db:"supplier_id"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod     string          `json:"payment_method" db:"payment_method"`
	PaymentDate       time.Time       `json:"payment_date" db:"payment_date"`
	Notes             *string         `json:"notes" db:"notes"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}
