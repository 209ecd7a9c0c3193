package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"shopledger/internal/caching"
	"shopledger/internal/handlers"
	"shopledger/internal/jobs"
	"shopledger/internal/jobs/background"
	"shopledger/internal/middleware"
	"shopledger/internal/repositories"
	"shopledger/internal/services"
	"shopledger/pkg/database"

	"github.com/bsm/redislock"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET environment variable is required")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			logger.Fatalf("Invalid REDIS_DB %q: %v", raw, err)
		}
		redisDB = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := database.NewPool(ctx, databaseURL)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer pool.Close()
	logger.Info("Database connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	defer redisClient.Close()

	// Redis is an accelerator here, not a dependency. A dead redis
	// means no cache and no stock locks, not a dead server.
	var locker *redislock.Client
	var cacheSvc caching.CacheService
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, caching and stock locking disabled")
	} else {
		locker = redislock.New(redisClient)
		cacheSvc = caching.NewRedisCacheService(redisClient, logger)
		logger.Info("Redis connected")
	}
	pingCancel()

	// Repositories
	txManager := repositories.NewTxManager(pool)
	accountRepo := repositories.NewAccountRepo(pool)
	transactionRepo := repositories.NewTransactionRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	variantRepo := repositories.NewProductVariantRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)
	orderItemRepo := repositories.NewOrderItemRepo(pool)
	returnRepo := repositories.NewReturnRepo(pool)
	invoiceRepo := repositories.NewPurchaseInvoiceRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	tenantRepo := repositories.NewTenantRepo(pool)
	supplierRepo := repositories.NewSupplierRepo(pool)

	// Services
	accountingSvc := services.NewAccountingService(accountRepo, transactionRepo, txManager, logger)
	inventorySvc := services.NewInventoryService(productRepo, variantRepo, cacheSvc, logger)
	stockSvc := services.NewStockService(orderRepo, orderItemRepo, productRepo, variantRepo, cacheSvc, locker, logger)
	returnSvc := services.NewReturnService(returnRepo, invoiceRepo, accountRepo, accountingSvc, inventorySvc, txManager, cacheSvc, logger)
	purchaseSvc := services.NewPurchaseService(invoiceRepo, supplierRepo, accountingSvc, inventorySvc, txManager, cacheSvc, logger)
	paymentSvc := services.NewPaymentService(paymentRepo, accountingSvc, txManager, cacheSvc, logger)
	balanceSvc := services.NewBalanceService(orderRepo, orderItemRepo, paymentRepo, invoiceRepo, cacheSvc, logger)

	// Handlers
	accountingHandlers := handlers.NewAccountingHandlers(accountingSvc)
	stockHandlers := handlers.NewStockHandlers(stockSvc)
	returnsHandlers := handlers.NewReturnsHandlers(returnSvc)
	purchaseHandlers := handlers.NewPurchaseHandlers(purchaseSvc)
	paymentHandlers := handlers.NewPaymentHandlers(paymentSvc)
	balanceHandlers := handlers.NewBalanceHandlers(balanceSvc)

	// Background jobs
	alertSvc := jobs.NewLowStockAlertService(productRepo, variantRepo, logger)
	scheduler, err := background.NewJobScheduler(alertSvc, tenantRepo, cacheSvc, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create job scheduler")
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	v1 := e.Group("/v1")
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))

	// Ledger routes
	protected.GET("/accounts", accountingHandlers.ListAccounts)
	protected.GET("/accounts/:id/balance", accountingHandlers.GetAccountBalance)
	protected.GET("/transactions", accountingHandlers.ListTransactions)
	protected.POST("/transactions", accountingHandlers.CreateTransaction)

	// Stock routes
	protected.POST("/stock/validate", stockHandlers.ValidateStock)

	// Supplier return routes
	protected.GET("/returns", returnsHandlers.ListReturns)
	protected.POST("/returns", returnsHandlers.CreateSupplierReturn)
	protected.GET("/returns/:id", returnsHandlers.GetReturn)
	protected.PUT("/returns/:id", returnsHandlers.EditSupplierReturn)
	protected.POST("/returns/:id/reject", returnsHandlers.RejectSupplierReturn)

	// Purchase invoice routes
	protected.POST("/purchase-invoices", purchaseHandlers.CreatePurchaseInvoice)
	protected.GET("/purchase-invoices/:id", purchaseHandlers.GetPurchaseInvoice)
	protected.GET("/suppliers/:id/purchase-invoices", purchaseHandlers.ListBySupplier)

	// Payment routes
	protected.POST("/payments", paymentHandlers.RecordPayment)
	protected.GET("/orders/:id/payments", paymentHandlers.ListByOrder)

	// Balance routes
	protected.GET("/customers/:id/pending-payment", balanceHandlers.GetCustomerPendingPayment)
	protected.GET("/suppliers/:id/balance", balanceHandlers.GetSupplierBalance)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := e.Start(fmt.Sprintf(":%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()
	logger.WithField("port", port).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}
