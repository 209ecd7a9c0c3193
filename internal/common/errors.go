package common

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError is a user-facing 400-class failure: a missing or
// invalid handling method, a bad refund account, a quantity over what
// is available.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError is a 404-class failure for a missing tenant-scoped row.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFoundError builds a NotFoundError for a resource.
func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

// UnbalancedTransactionError reports a transaction whose debits and
// credits diverge by more than the tolerance. This is always a bug in
// the caller, never an expected condition; both sums are carried for
// operator diagnosis.
type UnbalancedTransactionError struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *UnbalancedTransactionError) Error() string {
	return fmt.Sprintf("transaction is not balanced: debits=%s credits=%s", e.Debits, e.Credits)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
