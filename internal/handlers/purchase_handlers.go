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

type PurchaseHandlers struct {
	purchaseService services.PurchaseService
}

func NewPurchaseHandlers(purchaseService services.PurchaseService) *PurchaseHandlers {
	return &PurchaseHandlers{purchaseService: purchaseService}
}

type purchaseInvoiceRequest struct {
	SupplierID    string     `json:"supplier_id"`
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   *time.Time `json:"invoice_date"`
	Notes         *string    `json:"notes"`
	Items         []struct {
		ProductName      string          `json:"product_name"`
		ProductVariantID *string         `json:"product_variant_id"`
		Quantity         int             `json:"quantity"`
		PurchasePrice    decimal.Decimal `json:"purchase_price"`
	} `json:"items"`
}

func (h *PurchaseHandlers) CreatePurchaseInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req purchaseInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	supplierID, err := common.ValidateUUID(req.SupplierID, "supplier_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	input := services.PurchaseInvoiceInput{
		SupplierID:    supplierID,
		InvoiceNumber: req.InvoiceNumber,
		Notes:         req.Notes,
	}
	if req.InvoiceDate != nil {
		input.InvoiceDate = *req.InvoiceDate
	}
	for _, item := range req.Items {
		in := services.PurchaseItemInput{
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			PurchasePrice: item.PurchasePrice,
		}
		if item.ProductVariantID != nil {
			variantID, err := common.ValidateUUID(*item.ProductVariantID, "product_variant_id")
			if err != nil {
				return common.SendClientError(c, err.Error())
			}
			in.ProductVariantID = &variantID
		}
		input.Items = append(input.Items, in)
	}

	invoice, err := h.purchaseService.CreatePurchaseInvoice(ctx, tenantID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

func (h *PurchaseHandlers) GetPurchaseInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	invoiceID, err := common.ValidateUUID(c.Param("id"), "invoice id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.purchaseService.GetPurchaseInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *PurchaseHandlers) ListBySupplier(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	supplierID, err := common.ValidateUUID(c.Param("id"), "supplier id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	invoices, err := h.purchaseService.ListBySupplier(ctx, tenantID, supplierID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"count":    len(invoices),
	})
}
