package handlers

import (
	"errors"

	"shopledger/internal/common"

	"github.com/labstack/echo/v4"
)

// respondServiceError maps typed service errors onto the standard JSON
// error responses.
func respondServiceError(c echo.Context, err error) error {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return common.SendValidationError(c, ve.Field, ve.Message)
	}
	var nf *common.NotFoundError
	if errors.As(err, &nf) {
		return common.SendNotFoundError(c, nf.Resource)
	}
	// An unbalanced transaction is a bug in the posting code, not bad
	// caller input; it surfaces as a server error with both sums.
	var ub *common.UnbalancedTransactionError
	if errors.As(err, &ub) {
		return common.SendServerError(c, ub.Error())
	}
	return common.SendServerError(c, "Internal server error")
}
