package postgres

import (
	"context"
	"database/sql"
	"time"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, transaction_id, from_account_number, to_account_number, amount_cents, COALESCE(remarks, ''), status, from_balance_after_cents, to_balance_after_cents, created_at`

const insertTransaction = `INSERT INTO transactions (transaction_id, from_account_number, to_account_number, amount_cents, remarks, status, from_balance_after_cents, to_balance_after_cents, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

// Create writes on the pool connection, outside any caller transaction, so
// the entry persists even when the surrounding transfer rolled back.
func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	t.CreatedAt = time.Now()
	return r.db.QueryRowContext(ctx, insertTransaction, t.TransactionID, t.FromAccountNumber, t.ToAccountNumber,
		t.AmountCents, t.Remarks, t.Status, t.FromBalanceAfterCents, t.ToBalanceAfterCents, t.CreatedAt).Scan(&t.ID)
}

func (r *transactionRepository) CreateTx(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	t.CreatedAt = time.Now()
	return tx.QueryRowContext(ctx, insertTransaction, t.TransactionID, t.FromAccountNumber, t.ToAccountNumber,
		t.AmountCents, t.Remarks, t.Status, t.FromBalanceAfterCents, t.ToBalanceAfterCents, t.CreatedAt).Scan(&t.ID)
}

func (r *transactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(&t.ID, &t.TransactionID, &t.FromAccountNumber,
		&t.ToAccountNumber, &t.AmountCents, &t.Remarks, &t.Status, &t.FromBalanceAfterCents, &t.ToBalanceAfterCents, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Transaction, int32, error) {
	var total int32
	countQuery := `SELECT COUNT(*) FROM transactions WHERE from_account_number = $1 OR to_account_number = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, accountNumber).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
	          WHERE from_account_number = $1 OR to_account_number = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, accountNumber, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.TransactionID, &t.FromAccountNumber, &t.ToAccountNumber,
			&t.AmountCents, &t.Remarks, &t.Status, &t.FromBalanceAfterCents, &t.ToBalanceAfterCents, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		txns = append(txns, t)
	}
	return txns, total, rows.Err()
}
