package services

import (
	"context"
	"io"
	"time"

	"shopledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// Shared mocks for the service test suites.

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// passthroughTxManager runs the unit of work directly; the services
// under test never see a real database transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Account, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, tenantID, id, delta)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateWithLines(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetLiveByReturnID(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, tenantID, returnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) MarkSuperseded(ctx context.Context, tenantID, id, successorID uuid.UUID) error {
	args := m.Called(ctx, tenantID, id, successorID)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumLinesByAccount(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) ListByStatuses(ctx context.Context, tenantID uuid.UUID, statuses []string) ([]*models.Order, error) {
	args := m.Called(ctx, tenantID, statuses)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomerAndStatuses(ctx context.Context, tenantID, customerID uuid.UUID, statuses []string) ([]*models.Order, error) {
	args := m.Called(ctx, tenantID, customerID, statuses)
	return args.Get(0).([]*models.Order), args.Error(1)
}

type MockOrderItemRepository struct {
	mock.Mock
}

func (m *MockOrderItemRepository) ListByOrderIDs(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) (map[uuid.UUID][]*models.OrderItem, error) {
	args := m.Called(ctx, tenantID, orderIDs)
	return args.Get(0).(map[uuid.UUID][]*models.OrderItem), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Product, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) error {
	args := m.Called(ctx, tenantID, id, delta)
	return args.Error(0)
}

type MockProductVariantRepository struct {
	mock.Mock
}

func (m *MockProductVariantRepository) Create(ctx context.Context, variant *models.ProductVariant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockProductVariantRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ProductVariant, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductVariant), args.Error(1)
}

func (m *MockProductVariantRepository) ListByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*models.ProductVariant, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Get(0).([]*models.ProductVariant), args.Error(1)
}

func (m *MockProductVariantRepository) AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) error {
	args := m.Called(ctx, tenantID, id, delta)
	return args.Error(0)
}

type MockReturnRepository struct {
	mock.Mock
}

func (m *MockReturnRepository) Create(ctx context.Context, ret *models.Return) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

func (m *MockReturnRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Return, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Return), args.Error(1)
}

func (m *MockReturnRepository) Update(ctx context.Context, ret *models.Return) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

func (m *MockReturnRepository) ReplaceItems(ctx context.Context, ret *models.Return) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

func (m *MockReturnRepository) ListByInvoice(ctx context.Context, tenantID, purchaseInvoiceID uuid.UUID) ([]*models.Return, error) {
	args := m.Called(ctx, tenantID, purchaseInvoiceID)
	return args.Get(0).([]*models.Return), args.Error(1)
}

func (m *MockReturnRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Return, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Return), args.Error(1)
}

type MockPurchaseInvoiceRepository struct {
	mock.Mock
}

func (m *MockPurchaseInvoiceRepository) Create(ctx context.Context, invoice *models.PurchaseInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockPurchaseInvoiceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PurchaseInvoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseInvoice), args.Error(1)
}

func (m *MockPurchaseInvoiceRepository) AdjustTotal(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, tenantID, id, delta)
	return args.Error(0)
}

func (m *MockPurchaseInvoiceRepository) SumTotalsBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, supplierID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPurchaseInvoiceRepository) ListBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, limit, offset int) ([]*models.PurchaseInvoice, error) {
	args := m.Called(ctx, tenantID, supplierID, limit, offset)
	return args.Get(0).([]*models.PurchaseInvoice), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumByOrderAndType(ctx context.Context, tenantID, orderID uuid.UUID, paymentType string) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, orderID, paymentType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumBySupplierAndType(ctx context.Context, tenantID, supplierID uuid.UUID, paymentType string) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, supplierID, paymentType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.Payment, error) {
	args := m.Called(ctx, tenantID, orderID)
	return args.Get(0).([]*models.Payment), args.Error(1)
}

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Supplier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}

type MockAccountingService struct {
	mock.Mock
}

func (m *MockAccountingService) GetOrCreateAccount(ctx context.Context, tenantID uuid.UUID, code, name string, accType models.AccountType, subtype models.AccountSubtype) (*models.Account, error) {
	args := m.Called(ctx, tenantID, code, name, accType, subtype)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountingService) GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountingService) ListAccounts(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountingService) CreateTransaction(ctx context.Context, tenantID uuid.UUID, meta models.TransactionMeta, lines []models.LineInput) (*models.Transaction, error) {
	args := m.Called(ctx, tenantID, meta, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockAccountingService) ReverseTransaction(ctx context.Context, tenantID uuid.UUID, original *models.Transaction, date time.Time, description string) (*models.Transaction, error) {
	args := m.Called(ctx, tenantID, original, date, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockAccountingService) SupersedeTransaction(ctx context.Context, tenantID, transactionID, successorID uuid.UUID) error {
	args := m.Called(ctx, tenantID, transactionID, successorID)
	return args.Error(0)
}

func (m *MockAccountingService) FindLiveTransactionByReturn(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Transaction, error) {
	args := m.Called(ctx, tenantID, returnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockAccountingService) ListTransactions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockAccountingService) GetBalance(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) DecreaseForReturn(ctx context.Context, tenantID uuid.UUID, items []*models.ReturnItem) error {
	args := m.Called(ctx, tenantID, items)
	return args.Error(0)
}

func (m *MockInventoryService) RestoreForReturn(ctx context.Context, tenantID uuid.UUID, items []*models.ReturnItem) error {
	args := m.Called(ctx, tenantID, items)
	return args.Error(0)
}

func (m *MockInventoryService) IncreaseForPurchase(ctx context.Context, tenantID uuid.UUID, items []*models.PurchaseItem) error {
	args := m.Called(ctx, tenantID, items)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, product, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID)
	return args.Error(0)
}

func (m *MockCacheService) GetCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID) (*decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*decimal.Decimal), args.Error(1)
}

func (m *MockCacheService) SetCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, customerID, balance, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID) error {
	args := m.Called(ctx, tenantID, customerID)
	return args.Error(0)
}

func (m *MockCacheService) GetSupplierBalance(ctx context.Context, tenantID, supplierID uuid.UUID) (*models.SupplierBalance, error) {
	args := m.Called(ctx, tenantID, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SupplierBalance), args.Error(1)
}

func (m *MockCacheService) SetSupplierBalance(ctx context.Context, tenantID uuid.UUID, balance *models.SupplierBalance, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, balance, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteSupplierBalance(ctx context.Context, tenantID, supplierID uuid.UUID) error {
	args := m.Called(ctx, tenantID, supplierID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}
