package background

import (
	"context"
	"time"

	"shopledger/internal/caching"
	"shopledger/internal/common"
	"shopledger/internal/jobs"
	"shopledger/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// JobScheduler runs the periodic background sweeps.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	alertSvc   *jobs.LowStockAlertService
	tenantRepo repositories.TenantRepository
	cache      caching.CacheService
	logger     *logrus.Logger
}

func NewJobScheduler(alertSvc *jobs.LowStockAlertService, tenantRepo repositories.TenantRepository, cache caching.CacheService, logger *logrus.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		alertSvc:   alertSvc,
		tenantRepo: tenantRepo,
		cache:      cache,
		logger:     logger,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.runLowStockSweep),
		gocron.WithName("low-stock-sweep"),
	); err != nil {
		return err
	}
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.runTenantCacheFlush),
		gocron.WithName("tenant-cache-flush"),
	)
	return err
}

func (js *JobScheduler) runLowStockSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tenantIDs, err := js.tenantRepo.ListIDs(ctx)
	if err != nil {
		js.logger.WithError(err).Error("low-stock sweep could not list tenants")
		return
	}
	for _, tenantID := range tenantIDs {
		tenantCtx := common.WithTenantID(ctx, tenantID)
		if _, err := js.alertSvc.CheckLowStock(tenantCtx, tenantID, 0); err != nil {
			js.logger.WithFields(logrus.Fields{
				"tenant_id": tenantID,
			}).WithError(err).Error("low-stock sweep failed for tenant")
		}
	}
}

// runTenantCacheFlush drops every cached entry for every tenant. Write
// paths invalidate the entries they know about; the daily flush clears
// whatever they missed.
func (js *JobScheduler) runTenantCacheFlush() {
	if js.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tenantIDs, err := js.tenantRepo.ListIDs(ctx)
	if err != nil {
		js.logger.WithError(err).Error("cache flush could not list tenants")
		return
	}
	for _, tenantID := range tenantIDs {
		if err := js.cache.InvalidateTenantCache(ctx, tenantID); err != nil {
			js.logger.WithFields(logrus.Fields{
				"tenant_id": tenantID,
			}).WithError(err).Error("cache flush failed for tenant")
		}
	}
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	return js.scheduler.Shutdown()
}
