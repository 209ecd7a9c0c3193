package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error)
	AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) error
}

type productRepo struct {
	db Querier
}

func NewProductRepo(db Querier) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, tenant_id, name, sku, purchase_price, selling_price, current_quantity, has_variants, description, created_at, updated_at`

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, tenant_id, name, sku, purchase_price, selling_price, current_quantity, has_variants, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, product.ID, product.TenantID, product.Name, product.SKU, product.PurchasePrice, product.SellingPrice, product.CurrentQuantity, product.HasVariants, product.Description)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&product.ID, &product.TenantID, &product.Name, &product.SKU, &product.PurchasePrice, &product.SellingPrice, &product.CurrentQuantity, &product.HasVariants, &product.Description, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetByName matches case-insensitively. Legacy order rows and purchase
// items identify products by name, so name lookup stays a supported
// fallback when an id lookup misses.
func (r *productRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1 AND LOWER(name) = LOWER($2)
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, name).Scan(&product.ID, &product.TenantID, &product.Name, &product.SKU, &product.PurchasePrice, &product.SellingPrice, &product.CurrentQuantity, &product.HasVariants, &product.Description, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, sku = $2, purchase_price = $3, selling_price = $4, current_quantity = $5, has_variants = $6, description = $7, updated_at = NOW()
		WHERE tenant_id = $8 AND id = $9
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, product.Name, product.SKU, product.PurchasePrice, product.SellingPrice, product.CurrentQuantity, product.HasVariants, product.Description, product.TenantID, product.ID)
	return err
}

func (r *productRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE tenant_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.TenantID, &product.Name, &product.SKU, &product.PurchasePrice, &product.SellingPrice, &product.CurrentQuantity, &product.HasVariants, &product.Description, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// AdjustQuantity applies a signed stock change, floored at zero.
func (r *productRepo) AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) error {
	query := `
		UPDATE products
		SET current_quantity = GREATEST(current_quantity + $1, 0), updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, delta, tenantID, id)
	return err
}
