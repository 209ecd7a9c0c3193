package handlers

import (
	"net/http"

	"shopledger/internal/common"
	"shopledger/internal/services"

	"github.com/labstack/echo/v4"
)

type BalanceHandlers struct {
	balanceService services.BalanceService
}

func NewBalanceHandlers(balanceService services.BalanceService) *BalanceHandlers {
	return &BalanceHandlers{balanceService: balanceService}
}

func (h *BalanceHandlers) GetCustomerPendingPayment(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	customerID, err := common.ValidateUUID(c.Param("id"), "customer id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	pending, err := h.balanceService.CalculateCustomerPendingPayment(ctx, tenantID, customerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"customer_id":     customerID,
		"pending_payment": pending,
	})
}

func (h *BalanceHandlers) GetSupplierBalance(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	supplierID, err := common.ValidateUUID(c.Param("id"), "supplier id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	balance, err := h.balanceService.CalculateSupplierBalance(ctx, tenantID, supplierID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, balance)
}
