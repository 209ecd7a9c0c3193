package handlers

import (
	"net/http"
	"strconv"
	"time"

	"shopledger/internal/common"
	"shopledger/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ReturnsHandlers struct {
	returnService services.ReturnService
}

func NewReturnsHandlers(returnService services.ReturnService) *ReturnsHandlers {
	return &ReturnsHandlers{returnService: returnService}
}

type supplierReturnRequest struct {
	PurchaseInvoiceID string     `json:"purchase_invoice_id"`
	HandlingMethod    string     `json:"return_handling_method"`
	RefundAccountID   *string    `json:"refund_account_id"`
	ReturnDate        *time.Time `json:"return_date"`
	Notes             *string    `json:"notes"`
	Items             []struct {
		ProductName      string          `json:"product_name"`
		ProductVariantID *string         `json:"product_variant_id"`
		Quantity         int             `json:"quantity"`
		PurchasePrice    decimal.Decimal `json:"purchase_price"`
	} `json:"items"`
}

func (r *supplierReturnRequest) toInput() (services.SupplierReturnInput, error) {
	input := services.SupplierReturnInput{
		HandlingMethod: r.HandlingMethod,
		Notes:          r.Notes,
	}
	invoiceID, err := common.ValidateUUID(r.PurchaseInvoiceID, "purchase_invoice_id")
	if err != nil {
		return input, err
	}
	input.PurchaseInvoiceID = invoiceID
	if r.RefundAccountID != nil {
		accountID, err := common.ValidateUUID(*r.RefundAccountID, "refund_account_id")
		if err != nil {
			return input, err
		}
		input.RefundAccountID = &accountID
	}
	if r.ReturnDate != nil {
		input.ReturnDate = *r.ReturnDate
	}
	for _, item := range r.Items {
		in := services.ReturnItemInput{
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			PurchasePrice: item.PurchasePrice,
		}
		if item.ProductVariantID != nil {
			variantID, err := common.ValidateUUID(*item.ProductVariantID, "product_variant_id")
			if err != nil {
				return input, err
			}
			in.ProductVariantID = &variantID
		}
		input.Items = append(input.Items, in)
	}
	return input, nil
}

func (h *ReturnsHandlers) CreateSupplierReturn(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req supplierReturnRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	input, err := req.toInput()
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	ret, err := h.returnService.CreateSupplierReturn(ctx, tenantID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, ret)
}

func (h *ReturnsHandlers) EditSupplierReturn(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	returnID, err := common.ValidateUUID(c.Param("id"), "return id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req supplierReturnRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	input, err := req.toInput()
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	ret, err := h.returnService.EditSupplierReturn(ctx, tenantID, returnID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ret)
}

func (h *ReturnsHandlers) RejectSupplierReturn(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	returnID, err := common.ValidateUUID(c.Param("id"), "return id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	ret, err := h.returnService.RejectSupplierReturn(ctx, tenantID, returnID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ret)
}

func (h *ReturnsHandlers) GetReturn(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	returnID, err := common.ValidateUUID(c.Param("id"), "return id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	ret, err := h.returnService.GetReturn(ctx, tenantID, returnID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ret)
}

func (h *ReturnsHandlers) ListReturns(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	returns, err := h.returnService.ListReturns(ctx, tenantID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"returns": returns,
		"count":   len(returns),
	})
}
