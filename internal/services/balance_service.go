package services

import (
	"context"
	"time"

	"shopledger/internal/caching"
	"shopledger/internal/models"
	"shopledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const balanceCacheTTL = 5 * time.Minute

// BalanceService derives party balances from source rows on every
// call. Payments are read from the payments table, never from the
// order's paid_amount display cache, and invoice totals are already
// net of supplier returns.
type BalanceService interface {
	CalculateCustomerPendingPayment(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error)
	CalculateSupplierBalance(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.SupplierBalance, error)
}

type balanceService struct {
	orderRepo     repositories.OrderRepository
	orderItemRepo repositories.OrderItemRepository
	paymentRepo   repositories.PaymentRepository
	invoiceRepo   repositories.PurchaseInvoiceRepository
	cache         caching.CacheService
	logger        *logrus.Logger
}

func NewBalanceService(orderRepo repositories.OrderRepository, orderItemRepo repositories.OrderItemRepository, paymentRepo repositories.PaymentRepository, invoiceRepo repositories.PurchaseInvoiceRepository, cache caching.CacheService, logger *logrus.Logger) BalanceService {
	return &balanceService{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		paymentRepo:   paymentRepo,
		invoiceRepo:   invoiceRepo,
		cache:         cache,
		logger:        logger,
	}
}

// CalculateCustomerPendingPayment sums, over the customer's allocating
// orders, the amount still owed on each: item total plus shipping plus
// the COD fee when the customer carries it, minus payments and refund.
// Overpaid orders clamp to zero per order so one order's excess never
// hides another order's debt.
func (s *balanceService) CalculateCustomerPendingPayment(ctx context.Context, tenantID, customerID uuid.UUID) (decimal.Decimal, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCustomerBalance(ctx, tenantID, customerID); err == nil && cached != nil {
			return *cached, nil
		}
	}

	orders, err := s.orderRepo.ListByCustomerAndStatuses(ctx, tenantID, customerID, models.AllocatingStatuses)
	if err != nil {
		return decimal.Zero, err
	}

	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	itemsByOrder, err := s.orderItemRepo.ListByOrderIDs(ctx, tenantID, orderIDs)
	if err != nil {
		return decimal.Zero, err
	}

	pending := decimal.Zero
	for _, order := range orders {
		total, err := s.orderTotal(order, itemsByOrder[order.ID])
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"tenant_id": tenantID,
				"order_id":  order.ID,
			}).WithError(err).Warn("skipping order with unparseable legacy selection in balance")
			continue
		}
		paid, err := s.paymentRepo.SumByOrderAndType(ctx, tenantID, order.ID, models.PaymentTypeCustomer)
		if err != nil {
			return decimal.Zero, err
		}
		due := total.Sub(paid).Sub(order.RefundAmount)
		if due.IsPositive() {
			pending = pending.Add(due)
		}
	}

	if s.cache != nil {
		if err := s.cache.SetCustomerBalance(ctx, tenantID, customerID, pending, balanceCacheTTL); err != nil {
			s.logger.WithError(err).Warn("failed to cache customer balance")
		}
	}
	return pending, nil
}

// CalculateSupplierBalance nets invoice totals against supplier
// payments. A negative figure means the shop has paid more than it
// owes and is reported as an advance instead.
func (s *balanceService) CalculateSupplierBalance(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.SupplierBalance, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSupplierBalance(ctx, tenantID, supplierID); err == nil && cached != nil {
			return cached, nil
		}
	}

	invoiced, err := s.invoiceRepo.SumTotalsBySupplier(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}
	paid, err := s.paymentRepo.SumBySupplierAndType(ctx, tenantID, supplierID, models.PaymentTypeSupplier)
	if err != nil {
		return nil, err
	}

	balance := &models.SupplierBalance{SupplierID: supplierID}
	net := invoiced.Sub(paid)
	if net.IsNegative() {
		balance.Advance = net.Neg()
	} else {
		balance.Payable = net
	}

	if s.cache != nil {
		if err := s.cache.SetSupplierBalance(ctx, tenantID, balance, balanceCacheTTL); err != nil {
			s.logger.WithError(err).Warn("failed to cache supplier balance")
		}
	}
	return balance, nil
}

// orderTotal is the full charge of an order: items plus shipping plus
// the COD fee when the customer pays it.
func (s *balanceService) orderTotal(order *models.Order, items []*models.OrderItem) (decimal.Decimal, error) {
	demands, err := orderDemands(order, items)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, demand := range demands {
		total = total.Add(demand.Price.Mul(decimal.NewFromInt(int64(demand.Quantity))))
	}
	total = total.Add(order.ShippingCharge)
	if order.CODFeePaidBy != nil && *order.CODFeePaidBy == models.CODFeePaidByCustomer {
		total = total.Add(order.CODFee)
	}
	return total, nil
}
