package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
)

type ProductVariantRepository interface {
	Create(ctx context.Context, variant *models.ProductVariant) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ProductVariant, error)
	ListByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*models.ProductVariant, error)
	AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) error
}

type productVariantRepo struct {
	db Querier
}

func NewProductVariantRepo(db Querier) ProductVariantRepository {
	return &productVariantRepo{db: db}
}

const variantColumns = `id, tenant_id, product_id, color, size, purchase_price, current_quantity, created_at, updated_at`

func (r *productVariantRepo) Create(ctx context.Context, variant *models.ProductVariant) error {
	query := `
		INSERT INTO product_variants (id, tenant_id, product_id, color, size, purchase_price, current_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, variant.ID, variant.TenantID, variant.ProductID, variant.Color, variant.Size, variant.PurchasePrice, variant.CurrentQuantity)
	return err
}

func (r *productVariantRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ProductVariant, error) {
	variant := &models.ProductVariant{}
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE tenant_id = $1 AND id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&variant.ID, &variant.TenantID, &variant.ProductID, &variant.Color, &variant.Size, &variant.PurchasePrice, &variant.CurrentQuantity, &variant.CreatedAt, &variant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return variant, nil
}

func (r *productVariantRepo) ListByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*models.ProductVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY created_at
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []*models.ProductVariant
	for rows.Next() {
		variant := &models.ProductVariant{}
		if err := rows.Scan(&variant.ID, &variant.TenantID, &variant.ProductID, &variant.Color, &variant.Size, &variant.PurchasePrice, &variant.CurrentQuantity, &variant.CreatedAt, &variant.UpdatedAt); err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}
	return variants, rows.Err()
}

// AdjustQuantity applies a signed stock change, floored at zero.
func (r *productVariantRepo) AdjustQuantity(ctx context.Context, tenantID, id uuid.UUID, delta int) error {
	query := `
		UPDATE product_variants
		SET current_quantity = GREATEST(current_quantity + $1, 0), updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, delta, tenantID, id)
	return err
}
