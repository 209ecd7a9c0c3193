package handlers

import (
	"net/http"
	"strconv"
	"time"

	"shopledger/internal/common"
	"shopledger/internal/models"
	"shopledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// AccountingHandlers exposes the chart of accounts and the ledger.
type AccountingHandlers struct {
	accountingService services.AccountingService
}

func NewAccountingHandlers(accountingService services.AccountingService) *AccountingHandlers {
	return &AccountingHandlers{accountingService: accountingService}
}

func (h *AccountingHandlers) ListAccounts(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	accounts, err := h.accountingService.ListAccounts(ctx, tenantID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

func (h *AccountingHandlers) GetAccountBalance(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	accountID, err := common.ValidateUUID(c.Param("id"), "account id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	account, err := h.accountingService.GetAccount(ctx, tenantID, accountID)
	if err != nil {
		return respondServiceError(c, err)
	}
	balance, err := h.accountingService.GetBalance(ctx, tenantID, accountID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"account": account,
		"balance": balance,
	})
}

type createTransactionRequest struct {
	Date        *time.Time `json:"date"`
	Description string     `json:"description"`
	Lines       []struct {
		AccountID string          `json:"account_id"`
		Debit     decimal.Decimal `json:"debit"`
		Credit    decimal.Decimal `json:"credit"`
	} `json:"lines"`
}

func (h *AccountingHandlers) CreateTransaction(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req createTransactionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	lines := make([]models.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		accountID, err := uuid.Parse(line.AccountID)
		if err != nil {
			return common.SendValidationError(c, "lines", "invalid account id")
		}
		lines = append(lines, models.LineInput{AccountID: accountID, Debit: line.Debit, Credit: line.Credit})
	}

	meta := models.TransactionMeta{Description: req.Description}
	if req.Date != nil {
		meta.Date = *req.Date
	}
	txn, err := h.accountingService.CreateTransaction(ctx, tenantID, meta, lines)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, txn)
}

func (h *AccountingHandlers) ListTransactions(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	transactions, err := h.accountingService.ListTransactions(ctx, tenantID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}
