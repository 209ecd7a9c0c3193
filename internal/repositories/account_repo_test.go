package repositories

import (
	"context"
	"testing"
	"time"

	"shopledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func accountRow(account *models.Account) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "tenant_id", "code", "name", "type", "subtype", "balance", "created_at", "updated_at"}).
		AddRow(account.ID, account.TenantID, account.Code, account.Name, account.Type, account.Subtype, account.Balance, account.CreatedAt, account.UpdatedAt)
}

func TestAccountRepoGetByCode(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	want := &models.Account{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		Code:      models.AccountCodeAccountsPayable,
		Name:      "Accounts Payable",
		Type:      models.AccountTypeLiability,
		Subtype:   models.AccountSubtypeAccountsPayable,
		Balance:   decimal.NewFromInt(1500),
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectQuery(`SELECT (.+) FROM accounts`).
		WithArgs(want.TenantID, want.Code).
		WillReturnRows(accountRow(want))

	repo := NewAccountRepo(mock)
	got, err := repo.GetByCode(context.Background(), want.TenantID, want.Code)
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Code, got.Code)
	require.True(t, got.Balance.Equal(want.Balance))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepoGetByCodeNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM accounts`).
		WithArgs(tenantID, "9999").
		WillReturnError(pgx.ErrNoRows)

	repo := NewAccountRepo(mock)
	_, err = repo.GetByCode(context.Background(), tenantID, "9999")
	require.ErrorIs(t, err, pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepoCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	account := &models.Account{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Code:     models.AccountCodeInventory,
		Name:     "Inventory",
		Type:     models.AccountTypeAsset,
		Subtype:  models.AccountSubtypeInventory,
		Balance:  decimal.Zero,
	}

	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(account.ID, account.TenantID, account.Code, account.Name, account.Type, account.Subtype, account.Balance).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewAccountRepo(mock)
	require.NoError(t, repo.Create(context.Background(), account))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepoAdjustBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	tenantID := uuid.New()
	accountID := uuid.New()
	delta := decimal.NewFromInt(-250)

	mock.ExpectExec(`UPDATE accounts`).
		WithArgs(delta, tenantID, accountID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewAccountRepo(mock)
	require.NoError(t, repo.AdjustBalance(context.Background(), tenantID, accountID, delta))
	require.NoError(t, mock.ExpectationsWereMet())
}
