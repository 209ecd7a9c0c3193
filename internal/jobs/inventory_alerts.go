package jobs

import (
	"context"

	"shopledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultLowStockThreshold = 10

// LowStockAlert flags a product or variant whose on-hand quantity has
// dropped to the threshold or below. Allocation is ignored here; the
// sweep warns about physical stock, not promised stock.
type LowStockAlert struct {
	TenantID         uuid.UUID  `json:"tenant_id"`
	ProductID        uuid.UUID  `json:"product_id"`
	ProductVariantID *uuid.UUID `json:"product_variant_id,omitempty"`
	ProductName      string     `json:"product_name"`
	CurrentStock     int        `json:"current_stock"`
	Threshold        int        `json:"threshold"`
}

type LowStockAlertService struct {
	productRepo repositories.ProductRepository
	variantRepo repositories.ProductVariantRepository
	logger      *logrus.Logger
}

func NewLowStockAlertService(productRepo repositories.ProductRepository, variantRepo repositories.ProductVariantRepository, logger *logrus.Logger) *LowStockAlertService {
	return &LowStockAlertService{
		productRepo: productRepo,
		variantRepo: variantRepo,
		logger:      logger,
	}
}

// CheckLowStock sweeps a tenant's products and variants. Products with
// variants are judged variant by variant; their own counter is a
// rollup and would double-report.
func (s *LowStockAlertService) CheckLowStock(ctx context.Context, tenantID uuid.UUID, threshold int) ([]LowStockAlert, error) {
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}

	products, err := s.productRepo.List(ctx, tenantID, 1000, 0)
	if err != nil {
		return nil, err
	}

	var alerts []LowStockAlert
	for _, product := range products {
		if !product.HasVariants {
			if product.CurrentQuantity <= threshold {
				alerts = append(alerts, LowStockAlert{
					TenantID:     tenantID,
					ProductID:    product.ID,
					ProductName:  product.Name,
					CurrentStock: product.CurrentQuantity,
					Threshold:    threshold,
				})
			}
			continue
		}

		variants, err := s.variantRepo.ListByProduct(ctx, tenantID, product.ID)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"tenant_id":  tenantID,
				"product_id": product.ID,
			}).WithError(err).Warn("failed to list variants in low-stock sweep")
			continue
		}
		for _, variant := range variants {
			if variant.CurrentQuantity <= threshold {
				variantID := variant.ID
				alerts = append(alerts, LowStockAlert{
					TenantID:         tenantID,
					ProductID:        product.ID,
					ProductVariantID: &variantID,
					ProductName:      product.Name,
					CurrentStock:     variant.CurrentQuantity,
					Threshold:        threshold,
				})
			}
		}
	}

	if len(alerts) > 0 {
		s.logger.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"alerts":    len(alerts),
		}).Warn("low stock detected")
	}
	return alerts, nil
}
