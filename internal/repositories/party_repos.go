package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type tenantRepo struct {
	db Querier
}

func NewTenantRepo(db Querier) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `SELECT id, name, created_at, updated_at FROM tenants WHERE id = $1`
	err := querier(ctx, r.db).QueryRow(ctx, query, id).Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := querier(ctx, r.db).Query(ctx, `SELECT id FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
}

type customerRepo struct {
	db Querier
}

func NewCustomerRepo(db Querier) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, tenant_id, name, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, customer.ID, customer.TenantID, customer.Name, customer.Phone, customer.Address)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `
		SELECT id, tenant_id, name, phone, address, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&customer.ID, &customer.TenantID, &customer.Name, &customer.Phone, &customer.Address, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Supplier, error)
}

type supplierRepo struct {
	db Querier
}

func NewSupplierRepo(db Querier) SupplierRepository {
	return &supplierRepo{db: db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *models.Supplier) error {
	query := `
		INSERT INTO suppliers (id, tenant_id, name, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, supplier.ID, supplier.TenantID, supplier.Name, supplier.Phone, supplier.Address)
	return err
}

func (r *supplierRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Supplier, error) {
	supplier := &models.Supplier{}
	query := `
		SELECT id, tenant_id, name, phone, address, created_at, updated_at
		FROM suppliers
		WHERE tenant_id = $1 AND id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&supplier.ID, &supplier.TenantID, &supplier.Name, &supplier.Phone, &supplier.Address, &supplier.CreatedAt, &supplier.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return supplier, nil
}
