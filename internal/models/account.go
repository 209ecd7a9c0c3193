package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the broad double-entry classification of an account.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AccountSubtype narrows the account type to the instrument it tracks.
type AccountSubtype string

const (
	AccountSubtypeCash               AccountSubtype = "CASH"
	AccountSubtypeBank               AccountSubtype = "BANK"
	AccountSubtypeAccountsReceivable AccountSubtype = "ACCOUNTS_RECEIVABLE"
	AccountSubtypeInventory          AccountSubtype = "INVENTORY"
	AccountSubtypeAccountsPayable    AccountSubtype = "ACCOUNTS_PAYABLE"
	AccountSubtypeOpeningBalance     AccountSubtype = "OPENING_BALANCE"
)

// Well-known account codes created lazily on first reference.
const (
	AccountCodeCash               = "1000"
	AccountCodeBank               = "1050"
	AccountCodeAccountsReceivable = "1100"
	AccountCodeInventory          = "1200"
	AccountCodeAccountsPayable    = "2100"
)

// Account is one entry in a tenant's chart of accounts. Balance is a
// derived cache; the authoritative figure is the sum of the account's
// transaction lines.
type Account struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	TenantID  uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Code      string          `json:"code" db:"code"`
	Name      string          `json:"name" db:"name"`
	Type      AccountType     `json:"type" db:"type"`
	Subtype   AccountSubtype  `json:"subtype" db:"subtype"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// IsRefundable reports whether the account can receive a supplier
// refund (cash or bank asset accounts only).
func (a *Account) IsRefundable() bool {
	return a.Type == AccountTypeAsset &&
		(a.Subtype == AccountSubtypeCash || a.Subtype == AccountSubtypeBank)
}
