package background

import (
	"context"
	"io"
	"testing"

	"shopledger/internal/caching"
	"shopledger/internal/common"
	"shopledger/internal/jobs"
	"shopledger/internal/models"
	"shopledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type tenantIDsStub struct {
	ids   []uuid.UUID
	calls int
}

func (s *tenantIDsStub) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return nil, nil
}

func (s *tenantIDsStub) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.calls++
	return s.ids, nil
}

// cacheRecorder records tenant invalidations; every other cache method
// is unreachable in these tests.
type cacheRecorder struct {
	caching.CacheService
	invalidated []uuid.UUID
}

func (c *cacheRecorder) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	c.invalidated = append(c.invalidated, tenantID)
	return nil
}

type productListStub struct {
	repositories.ProductRepository
	lastCtx context.Context
}

func (s *productListStub) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	s.lastCtx = ctx
	return nil, nil
}

func TestTenantCacheFlushInvalidatesEveryTenant(t *testing.T) {
	tenantA := uuid.New()
	tenantB := uuid.New()
	cache := &cacheRecorder{}
	alertSvc := jobs.NewLowStockAlertService(nil, nil, testLogger())

	js, err := NewJobScheduler(alertSvc, &tenantIDsStub{ids: []uuid.UUID{tenantA, tenantB}}, cache, testLogger())
	require.NoError(t, err)
	defer js.Stop()

	js.runTenantCacheFlush()

	require.Equal(t, []uuid.UUID{tenantA, tenantB}, cache.invalidated)
}

func TestTenantCacheFlushWithoutCacheIsNoop(t *testing.T) {
	tenants := &tenantIDsStub{ids: []uuid.UUID{uuid.New()}}
	alertSvc := jobs.NewLowStockAlertService(nil, nil, testLogger())

	js, err := NewJobScheduler(alertSvc, tenants, nil, testLogger())
	require.NoError(t, err)
	defer js.Stop()

	js.runTenantCacheFlush()

	require.Zero(t, tenants.calls)
}

func TestLowStockSweepCarriesTenantContext(t *testing.T) {
	tenantID := uuid.New()
	products := &productListStub{}
	alertSvc := jobs.NewLowStockAlertService(products, nil, testLogger())

	js, err := NewJobScheduler(alertSvc, &tenantIDsStub{ids: []uuid.UUID{tenantID}}, nil, testLogger())
	require.NoError(t, err)
	defer js.Stop()

	js.runLowStockSweep()

	got, ok := common.GetTenantIDFromContext(products.lastCtx)
	require.True(t, ok)
	require.Equal(t, tenantID, got)
}
