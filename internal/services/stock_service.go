package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"shopledger/internal/caching"
	"shopledger/internal/models"
	"shopledger/internal/repositories"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

const (
	stockLockTTL    = 10 * time.Second
	productCacheTTL = 10 * time.Minute
)

// StockService computes stock availability on demand from the set of
// currently allocating orders. Allocation is recomputed per call rather
// than kept as a running counter: orders are edited, cancelled and
// moved between statuses in both directions, and a counter would
// drift. The cost is O(active orders x items) per validation, and the
// check is read-then-decide, not a reservation — two concurrent
// confirmations can both pass. ValidateAndConfirm adds a per-item
// advisory lock for callers that need the stronger guarantee.
type StockService interface {
	ValidateStockAvailability(ctx context.Context, tenantID uuid.UUID, demands []models.StockDemand, excludeOrderID *uuid.UUID) (*models.StockValidationResult, error)
	ValidateAndConfirm(ctx context.Context, tenantID uuid.UUID, demands []models.StockDemand, excludeOrderID *uuid.UUID, confirm func(ctx context.Context) error) (*models.StockValidationResult, error)
}

type stockService struct {
	orderRepo     repositories.OrderRepository
	orderItemRepo repositories.OrderItemRepository
	productRepo   repositories.ProductRepository
	variantRepo   repositories.ProductVariantRepository
	cache         caching.CacheService
	locker        *redislock.Client
	logger        *logrus.Logger
}

func NewStockService(orderRepo repositories.OrderRepository, orderItemRepo repositories.OrderItemRepository, productRepo repositories.ProductRepository, variantRepo repositories.ProductVariantRepository, cache caching.CacheService, locker *redislock.Client, logger *logrus.Logger) StockService {
	return &stockService{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
		variantRepo:   variantRepo,
		cache:         cache,
		locker:        locker,
		logger:        logger,
	}
}

func (s *stockService) ValidateStockAvailability(ctx context.Context, tenantID uuid.UUID, demands []models.StockDemand, excludeOrderID *uuid.UUID) (*models.StockValidationResult, error) {
	result := &models.StockValidationResult{IsValid: true}
	if len(demands) == 0 {
		return result, nil
	}

	allocated, err := s.allocatedQuantities(ctx, tenantID, excludeOrderID)
	if err != nil {
		return nil, err
	}

	for _, demand := range demands {
		s.checkDemand(ctx, tenantID, demand, allocated, result)
	}
	return result, nil
}

// ValidateAndConfirm holds a short-lived advisory lock on every
// demanded product/variant while validating and running confirm, so
// two concurrent confirmations of the same stock serialize instead of
// both passing the read-then-decide check. Without a locker it
// degrades to best-effort validation.
func (s *stockService) ValidateAndConfirm(ctx context.Context, tenantID uuid.UUID, demands []models.StockDemand, excludeOrderID *uuid.UUID, confirm func(ctx context.Context) error) (*models.StockValidationResult, error) {
	if s.locker != nil {
		keys := lockKeys(tenantID, demands)
		for _, key := range keys {
			lock, err := s.locker.Obtain(ctx, key, stockLockTTL, &redislock.Options{
				RetryStrategy: redislock.LinearBackoff(100 * time.Millisecond),
			})
			if errors.Is(err, redislock.ErrNotObtained) {
				return nil, fmt.Errorf("stock for %s is being confirmed by another request", key)
			}
			if err != nil {
				s.logger.WithFields(logrus.Fields{
					"tenant_id": tenantID,
					"key":       key,
				}).WithError(err).Warn("could not obtain stock lock; proceeding without it")
				continue
			}
			defer lock.Release(context.WithoutCancel(ctx))
		}
	}

	result, err := s.ValidateStockAvailability(ctx, tenantID, demands, excludeOrderID)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return result, nil
	}
	if err := confirm(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// allocatedQuantities walks every allocating order of the tenant and
// accumulates committed quantities per stock key. The order under edit
// is skipped so it does not count its own prior allocation against
// itself.
func (s *stockService) allocatedQuantities(ctx context.Context, tenantID uuid.UUID, excludeOrderID *uuid.UUID) (map[models.StockKey]int, error) {
	orders, err := s.orderRepo.ListByStatuses(ctx, tenantID, models.AllocatingStatuses)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		if excludeOrderID != nil && order.ID == *excludeOrderID {
			continue
		}
		orderIDs = append(orderIDs, order.ID)
	}
	itemsByOrder, err := s.orderItemRepo.ListByOrderIDs(ctx, tenantID, orderIDs)
	if err != nil {
		return nil, err
	}

	allocated := make(map[models.StockKey]int)
	for _, order := range orders {
		if excludeOrderID != nil && order.ID == *excludeOrderID {
			continue
		}
		demands, err := orderDemands(order, itemsByOrder[order.ID])
		if err != nil {
			// A single unparseable legacy order must not block every
			// stock validation for the tenant.
			s.logger.WithFields(logrus.Fields{
				"tenant_id": tenantID,
				"order_id":  order.ID,
			}).WithError(err).Warn("skipping order with unparseable legacy selection")
			continue
		}
		for _, demand := range demands {
			if demand.Key.IsZero() {
				continue
			}
			allocated[demand.Key] += demand.Quantity
		}
	}
	return allocated, nil
}

func (s *stockService) checkDemand(ctx context.Context, tenantID uuid.UUID, demand models.StockDemand, allocated map[models.StockKey]int, result *models.StockValidationResult) {
	currentStock, name, key, err := s.resolveStock(ctx, tenantID, demand)
	if err != nil {
		result.IsValid = false
		result.Errors = append(result.Errors, models.StockValidationError{
			ProductName:       demand.ProductName,
			RequestedQuantity: demand.Quantity,
			Message:           err.Error(),
		})
		return
	}

	allocatedQty := allocated[key]
	available := currentStock - allocatedQty
	if demand.Quantity > available {
		verr := models.StockValidationError{
			ProductName:       name,
			RequestedQuantity: demand.Quantity,
			AvailableStock:    available,
			CurrentStock:      currentStock,
			AllocatedStock:    allocatedQty,
			Message:           fmt.Sprintf("requested %d of %s but only %d available (%d on hand, %d allocated)", demand.Quantity, name, available, currentStock, allocatedQty),
		}
		if key.IsVariant() {
			variantID := key.VariantID
			verr.ProductVariantID = &variantID
		} else {
			productID := key.ProductID
			verr.ProductID = &productID
		}
		result.IsValid = false
		result.Errors = append(result.Errors, verr)
	}
}

// resolveStock finds the product or variant behind a demand. Product
// lookups fall back to a case-insensitive name match when the id
// misses; legacy orders stored names where ids now live.
func (s *stockService) resolveStock(ctx context.Context, tenantID uuid.UUID, demand models.StockDemand) (int, string, models.StockKey, error) {
	if demand.Key.IsVariant() {
		variant, err := s.variantRepo.GetByID(ctx, tenantID, demand.Key.VariantID)
		if err != nil {
			return 0, "", demand.Key, fmt.Errorf("product variant %s not found", demand.Key.VariantID)
		}
		name := demand.ProductName
		if name == "" {
			name = variant.ID.String()
		}
		return variant.CurrentQuantity, name, demand.Key, nil
	}

	if demand.Key.ProductID != uuid.Nil {
		if product := s.cachedProduct(ctx, tenantID, demand.Key.ProductID); product != nil {
			return product.CurrentQuantity, product.Name, models.ProductKey(product.ID), nil
		}
		product, err := s.productRepo.GetByID(ctx, tenantID, demand.Key.ProductID)
		if err == nil {
			s.storeProduct(ctx, tenantID, product)
			return product.CurrentQuantity, product.Name, models.ProductKey(product.ID), nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, "", demand.Key, err
		}
	}
	if demand.ProductName != "" {
		product, err := s.productRepo.GetByName(ctx, tenantID, demand.ProductName)
		if err == nil {
			return product.CurrentQuantity, product.Name, models.ProductKey(product.ID), nil
		}
	}
	return 0, "", demand.Key, fmt.Errorf("product %q not found", demand.ProductName)
}

// cachedProduct reads a product from the cache. Stale quantities are
// bounded by the short TTL and by invalidation on every stock write.
func (s *stockService) cachedProduct(ctx context.Context, tenantID, productID uuid.UUID) *models.Product {
	if s.cache == nil {
		return nil
	}
	product, err := s.cache.GetProduct(ctx, tenantID, productID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"tenant_id":  tenantID,
			"product_id": productID,
		}).WithError(err).Warn("product cache read failed")
		return nil
	}
	return product
}

func (s *stockService) storeProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProduct(ctx, tenantID, product, productCacheTTL); err != nil {
		s.logger.WithFields(logrus.Fields{
			"tenant_id":  tenantID,
			"product_id": product.ID,
		}).WithError(err).Warn("product cache write failed")
	}
}

// orderDemands prefers the normalized items and falls back to the
// legacy JSON selection only when no items exist.
func orderDemands(order *models.Order, items []*models.OrderItem) ([]models.StockDemand, error) {
	if len(items) > 0 {
		demands := make([]models.StockDemand, 0, len(items))
		for _, item := range items {
			demands = append(demands, item.Demand())
		}
		return demands, nil
	}
	return order.LegacyDemands()
}

func lockKeys(tenantID uuid.UUID, demands []models.StockDemand) []string {
	keys := make([]string, 0, len(demands))
	seen := make(map[string]struct{}, len(demands))
	for _, demand := range demands {
		id := demand.Key.ProductID
		if demand.Key.IsVariant() {
			id = demand.Key.VariantID
		}
		key := fmt.Sprintf("stocklock:%s:%s", tenantID, id)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	// Deterministic order so two confirmations never deadlock.
	sort.Strings(keys)
	return keys
}
