package handlers

import (
	"net/http"

	"shopledger/internal/common"
	"shopledger/internal/models"
	"shopledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StockHandlers exposes the availability check used before confirming
// or editing an order.
type StockHandlers struct {
	stockService services.StockService
}

func NewStockHandlers(stockService services.StockService) *StockHandlers {
	return &StockHandlers{stockService: stockService}
}

type stockDemandRequest struct {
	ProductID        *string `json:"product_id"`
	ProductVariantID *string `json:"product_variant_id"`
	ProductName      string  `json:"product_name"`
	Quantity         int     `json:"quantity"`
}

type validateStockRequest struct {
	Items          []stockDemandRequest `json:"items"`
	ExcludeOrderID *string              `json:"exclude_order_id"`
}

func (h *StockHandlers) ValidateStock(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req validateStockRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	demands := make([]models.StockDemand, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return common.SendValidationError(c, "items", "quantity must be positive")
		}
		demand := models.StockDemand{ProductName: item.ProductName, Quantity: item.Quantity}
		switch {
		case item.ProductVariantID != nil:
			variantID, err := uuid.Parse(*item.ProductVariantID)
			if err != nil {
				return common.SendValidationError(c, "items", "invalid product_variant_id")
			}
			demand.Key = models.VariantKey(variantID)
		case item.ProductID != nil:
			productID, err := uuid.Parse(*item.ProductID)
			if err != nil {
				return common.SendValidationError(c, "items", "invalid product_id")
			}
			demand.Key = models.ProductKey(productID)
		default:
			return common.SendValidationError(c, "items", "each item needs a product_id or product_variant_id")
		}
		demands = append(demands, demand)
	}

	var excludeOrderID *uuid.UUID
	if req.ExcludeOrderID != nil {
		orderID, err := common.ValidateUUID(*req.ExcludeOrderID, "exclude_order_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		excludeOrderID = &orderID
	}

	result, err := h.stockService.ValidateStockAvailability(ctx, tenantID, demands, excludeOrderID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
