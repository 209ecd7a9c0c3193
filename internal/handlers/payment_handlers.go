package handlers

import (
	"net/http"
	"time"

	"shopledger/internal/common"
	"shopledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentHandlers struct {
	paymentService services.PaymentService
}

func NewPaymentHandlers(paymentService services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{paymentService: paymentService}
}

type recordPaymentRequest struct {
	PaymentType       string          `json:"payment_type"`
	OrderID           *string         `json:"order_id"`
	PurchaseInvoiceID *string         `json:"purchase_invoice_id"`
	CustomerID        *string         `json:"customer_id"`
	SupplierID        *string         `json:"supplier_id"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentDate       *time.Time      `json:"payment_date"`
	Notes             *string         `json:"notes"`
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := common.ValidateUUID(*raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *PaymentHandlers) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	input := services.PaymentInput{
		PaymentType:   req.PaymentType,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	var err error
	if input.OrderID, err = parseOptionalUUID(req.OrderID, "order_id"); err != nil {
		return common.SendClientError(c, err.Error())
	}
	if input.PurchaseInvoiceID, err = parseOptionalUUID(req.PurchaseInvoiceID, "purchase_invoice_id"); err != nil {
		return common.SendClientError(c, err.Error())
	}
	if input.CustomerID, err = parseOptionalUUID(req.CustomerID, "customer_id"); err != nil {
		return common.SendClientError(c, err.Error())
	}
	if input.SupplierID, err = parseOptionalUUID(req.SupplierID, "supplier_id"); err != nil {
		return common.SendClientError(c, err.Error())
	}
	if req.PaymentDate != nil {
		input.PaymentDate = *req.PaymentDate
	}

	payment, err := h.paymentService.RecordPayment(ctx, tenantID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandlers) ListByOrder(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	payments, err := h.paymentService.ListByOrder(ctx, tenantID, orderID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"count":    len(payments),
	})
}
