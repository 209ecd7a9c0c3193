package services

import (
	"context"
	"errors"
	"fmt"

	"shopledger/internal/caching"
	"shopledger/internal/models"
	"shopledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// InventoryService applies stock quantity deltas for business events.
// Items carry a variant id when the stock lives on a variant; otherwise
// the product is resolved by name, which is how supplier paperwork
// identifies it.
type InventoryService interface {
	DecreaseForReturn(ctx context.Context, tenantID uuid.UUID, items []*models.ReturnItem) error
	RestoreForReturn(ctx context.Context, tenantID uuid.UUID, items []*models.ReturnItem) error
	IncreaseForPurchase(ctx context.Context, tenantID uuid.UUID, items []*models.PurchaseItem) error
}

type inventoryService struct {
	productRepo repositories.ProductRepository
	variantRepo repositories.ProductVariantRepository
	cache       caching.CacheService
	logger      *logrus.Logger
}

func NewInventoryService(productRepo repositories.ProductRepository, variantRepo repositories.ProductVariantRepository, cache caching.CacheService, logger *logrus.Logger) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		variantRepo: variantRepo,
		cache:       cache,
		logger:      logger,
	}
}

// DecreaseForReturn removes returned goods from stock. Quantities are
// floored at zero in the repository; sending back more than is on hand
// is a data problem to surface in reports, not a reason to fail the
// return.
func (s *inventoryService) DecreaseForReturn(ctx context.Context, tenantID uuid.UUID, items []*models.ReturnItem) error {
	for _, item := range items {
		if err := s.adjust(ctx, tenantID, item.ProductVariantID, item.ProductName, -item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// RestoreForReturn adds the quantities of a superseded return's items
// back to stock before the replacement items are applied.
func (s *inventoryService) RestoreForReturn(ctx context.Context, tenantID uuid.UUID, items []*models.ReturnItem) error {
	for _, item := range items {
		if err := s.adjust(ctx, tenantID, item.ProductVariantID, item.ProductName, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *inventoryService) IncreaseForPurchase(ctx context.Context, tenantID uuid.UUID, items []*models.PurchaseItem) error {
	for _, item := range items {
		if err := s.adjust(ctx, tenantID, item.ProductVariantID, item.ProductName, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *inventoryService) adjust(ctx context.Context, tenantID uuid.UUID, variantID *uuid.UUID, productName string, delta int) error {
	if variantID != nil {
		variant, err := s.variantRepo.GetByID(ctx, tenantID, *variantID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("product variant %s not found", *variantID)
			}
			return err
		}
		if err := s.variantRepo.AdjustQuantity(ctx, tenantID, variant.ID, delta); err != nil {
			return err
		}
		s.invalidateProduct(ctx, tenantID, variant.ProductID)
		return nil
	}

	product, err := s.productRepo.GetByName(ctx, tenantID, productName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %q not found", productName)
		}
		return err
	}
	if err := s.productRepo.AdjustQuantity(ctx, tenantID, product.ID, delta); err != nil {
		return err
	}
	s.invalidateProduct(ctx, tenantID, product.ID)
	return nil
}

func (s *inventoryService) invalidateProduct(ctx context.Context, tenantID, productID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteProduct(ctx, tenantID, productID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"tenant_id":  tenantID,
			"product_id": productID,
		}).WithError(err).Warn("failed to invalidate product cache")
	}
}
