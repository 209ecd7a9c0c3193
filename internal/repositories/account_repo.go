package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error)
	GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Account, error)
	GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Account, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error)
	AdjustBalance(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error
}

type accountRepo struct {
	db Querier
}

func NewAccountRepo(db Querier) AccountRepository {
	return &accountRepo{db: db}
}

const accountColumns = `id, tenant_id, code, name, type, subtype, balance, created_at, updated_at`

func (r *accountRepo) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, tenant_id, code, name, type, subtype, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, account.ID, account.TenantID, account.Code, account.Name, account.Type, account.Subtype, account.Balance)
	return err
}

func (r *accountRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&account.ID, &account.TenantID, &account.Code, &account.Name, &account.Type, &account.Subtype, &account.Balance, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepo) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND code = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, code).Scan(&account.ID, &account.TenantID, &account.Code, &account.Name, &account.Type, &account.Subtype, &account.Balance, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepo) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND id = ANY($2)
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make(map[uuid.UUID]*models.Account, len(ids))
	for rows.Next() {
		account := &models.Account{}
		if err := rows.Scan(&account.ID, &account.TenantID, &account.Code, &account.Name, &account.Type, &account.Subtype, &account.Balance, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		accounts[account.ID] = account
	}
	return accounts, rows.Err()
}

func (r *accountRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		if err := rows.Scan(&account.ID, &account.TenantID, &account.Code, &account.Name, &account.Type, &account.Subtype, &account.Balance, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// AdjustBalance moves the cached balance; the authoritative balance is
// always the sum of the account's transaction lines.
func (r *accountRepo) AdjustBalance(ctx context.Context, tenantID, id uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := querier(ctx, r.db).Exec(ctx, query, delta, tenantID, id)
	return err
}
