package repositories

import (
	"context"

	"shopledger/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	CreateWithLines(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error)
	GetLiveByReturnID(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Transaction, error)
	MarkSuperseded(ctx context.Context, tenantID, id, successorID uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Transaction, error)
	SumLinesByAccount(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error)
}

type transactionRepo struct {
	db Querier
}

func NewTransactionRepo(db Querier) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `id, tenant_id, date, description, purchase_invoice_id, order_return_id, payment_id, superseded_by, created_at`

// CreateWithLines persists the transaction and all its lines. Callers
// run it inside TxManager.WithinTransaction so no partial write
// survives a failure.
func (r *transactionRepo) CreateWithLines(ctx context.Context, txn *models.Transaction) error {
	q := querier(ctx, r.db)
	query := `
		INSERT INTO transactions (id, tenant_id, date, description, purchase_invoice_id, order_return_id, payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := q.Exec(ctx, query, txn.ID, txn.TenantID, txn.Date, txn.Description, txn.PurchaseInvoiceID, txn.OrderReturnID, txn.PaymentID)
	if err != nil {
		return err
	}

	lineQuery := `
		INSERT INTO transaction_lines (id, transaction_id, account_id, debit, credit)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, line := range txn.Lines {
		if _, err := q.Exec(ctx, lineQuery, line.ID, line.TransactionID, line.AccountID, line.Debit, line.Credit); err != nil {
			return err
		}
	}
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error) {
	txn := &models.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1 AND id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&txn.ID, &txn.TenantID, &txn.Date, &txn.Description, &txn.PurchaseInvoiceID, &txn.OrderReturnID, &txn.PaymentID, &txn.SupersededBy, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	if txn.Lines, err = r.linesFor(ctx, txn.ID); err != nil {
		return nil, err
	}
	return txn, nil
}

// GetLiveByReturnID finds the one non-superseded transaction recorded
// for a return. Returns pgx.ErrNoRows when the return has never been
// posted.
func (r *transactionRepo) GetLiveByReturnID(ctx context.Context, tenantID, returnID uuid.UUID) (*models.Transaction, error) {
	txn := &models.Transaction{}
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1 AND order_return_id = $2 AND superseded_by IS NULL
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, returnID).Scan(&txn.ID, &txn.TenantID, &txn.Date, &txn.Description, &txn.PurchaseInvoiceID, &txn.OrderReturnID, &txn.PaymentID, &txn.SupersededBy, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	if txn.Lines, err = r.linesFor(ctx, txn.ID); err != nil {
		return nil, err
	}
	return txn, nil
}

// MarkSuperseded points a replaced transaction at its successor instead
// of deleting it, keeping the audit trail intact.
func (r *transactionRepo) MarkSuperseded(ctx context.Context, tenantID, id, successorID uuid.UUID) error {
	query := `
		UPDATE transactions
		SET superseded_by = $1
		WHERE tenant_id = $2 AND id = $3 AND superseded_by IS NULL
	`
	tag, err := querier(ctx, r.db).Exec(ctx, query, successorID, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *transactionRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn := &models.Transaction{}
		if err := rows.Scan(&txn.ID, &txn.TenantID, &txn.Date, &txn.Description, &txn.PurchaseInvoiceID, &txn.OrderReturnID, &txn.PaymentID, &txn.SupersededBy, &txn.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// SumLinesByAccount is the ground-truth balance: net of debits minus
// credits across every line posted to the account.
func (r *transactionRepo) SumLinesByAccount(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `
		SELECT COALESCE(SUM(l.debit - l.credit), 0)
		FROM transaction_lines l
		JOIN transactions t ON t.id = l.transaction_id
		WHERE t.tenant_id = $1 AND l.account_id = $2
	`
	err := querier(ctx, r.db).QueryRow(ctx, query, tenantID, accountID).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *transactionRepo) linesFor(ctx context.Context, transactionID uuid.UUID) ([]*models.TransactionLine, error) {
	query := `
		SELECT id, transaction_id, account_id, debit, credit
		FROM transaction_lines
		WHERE transaction_id = $1
		ORDER BY id
	`
	rows, err := querier(ctx, r.db).Query(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*models.TransactionLine
	for rows.Next() {
		line := &models.TransactionLine{}
		if err := rows.Scan(&line.ID, &line.TransactionID, &line.AccountID, &line.Debit, &line.Credit); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
