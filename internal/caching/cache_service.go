package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopledger/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CacheService fronts redis for hot reads. Cache failures are logged
// and swallowed by callers; the database stays the source of truth.
type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error

	// Computed balance caching
	GetCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID) (*decimal.Decimal, error)
	SetCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error
	DeleteCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID) error
	GetSupplierBalance(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.SupplierBalance, error)
	SetSupplierBalance(ctx context.Context, tenantID uuid.UUID, balance *models.SupplierBalance, ttl time.Duration) error
	DeleteSupplierBalance(ctx context.Context, tenantID, supplierID uuid.UUID) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error
}

type redisCacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisCacheService(client *redis.Client, logger *logrus.Logger) CacheService {
	return &redisCacheService{client: client, logger: logger}
}

func productKey(tenantID, productID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s:product:%s", tenantID, productID)
}

func customerBalanceKey(tenantID, customerID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s:balance:customer:%s", tenantID, customerID)
}

func supplierBalanceKey(tenantID, supplierID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s:balance:supplier:%s", tenantID, supplierID)
}

func (s *redisCacheService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	val, err := s.client.Get(ctx, productKey(tenantID, productID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	product := &models.Product{}
	if err := json.Unmarshal([]byte(val), product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *redisCacheService) SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, productKey(tenantID, product.ID), data, ttl).Err()
}

func (s *redisCacheService) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	return s.client.Del(ctx, productKey(tenantID, productID)).Err()
}

func (s *redisCacheService) GetCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID) (*decimal.Decimal, error) {
	val, err := s.client.Get(ctx, customerBalanceKey(tenantID, customerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	balance, err := decimal.NewFromString(val)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (s *redisCacheService) SetCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error {
	return s.client.Set(ctx, customerBalanceKey(tenantID, customerID), balance.String(), ttl).Err()
}

func (s *redisCacheService) DeleteCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID) error {
	return s.client.Del(ctx, customerBalanceKey(tenantID, customerID)).Err()
}

func (s *redisCacheService) GetSupplierBalance(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.SupplierBalance, error) {
	val, err := s.client.Get(ctx, supplierBalanceKey(tenantID, supplierID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	balance := &models.SupplierBalance{}
	if err := json.Unmarshal([]byte(val), balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *redisCacheService) SetSupplierBalance(ctx context.Context, tenantID uuid.UUID, balance *models.SupplierBalance, ttl time.Duration) error {
	data, err := json.Marshal(balance)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, supplierBalanceKey(tenantID, balance.SupplierID), data, ttl).Err()
}

func (s *redisCacheService) DeleteSupplierBalance(ctx context.Context, tenantID, supplierID uuid.UUID) error {
	return s.client.Del(ctx, supplierBalanceKey(tenantID, supplierID)).Err()
}

// InvalidateTenantCache removes every cached key for the tenant,
// scanning in batches to avoid blocking redis.
func (s *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("tenant:%s:*", tenantID)
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
