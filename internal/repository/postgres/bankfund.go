package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository"
)

type bankFundRepository struct {
	db *sql.DB
}

func NewBankFundRepository(db *sql.DB) repository.BankFundRepository {
	return &bankFundRepository{db: db}
}

func (r *bankFundRepository) Get(ctx context.Context) (*domain.BankFund, error) {
	f := &domain.BankFund{}
	query := `SELECT id, total_balance_cents, last_updated FROM bank_funds ORDER BY id LIMIT 1`
	err := r.db.QueryRowContext(ctx, query).Scan(&f.ID, &f.TotalBalanceCents, &f.LastUpdated)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// LockForUpdate pins the singleton reserve row, seeding it with initialCents
// the first time the reserve is touched. All reserve movements serialize on
// this lock.
func (r *bankFundRepository) LockForUpdate(ctx context.Context, tx *sql.Tx, initialCents int64) (*domain.BankFund, error) {
	f := &domain.BankFund{}
	query := `SELECT id, total_balance_cents, last_updated FROM bank_funds ORDER BY id LIMIT 1 FOR UPDATE`
	err := tx.QueryRowContext(ctx, query).Scan(&f.ID, &f.TotalBalanceCents, &f.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		seed := `INSERT INTO bank_funds (total_balance_cents, last_updated) VALUES ($1, $2) RETURNING id`
		f.TotalBalanceCents = initialCents
		f.LastUpdated = time.Now()
		if err := tx.QueryRowContext(ctx, seed, f.TotalBalanceCents, f.LastUpdated).Scan(&f.ID); err != nil {
			return nil, err
		}
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *bankFundRepository) UpdateBalanceTx(ctx context.Context, tx *sql.Tx, f *domain.BankFund) error {
	query := `UPDATE bank_funds SET total_balance_cents = $1, last_updated = $2 WHERE id = $3`
	f.LastUpdated = time.Now()
	_, err := tx.ExecContext(ctx, query, f.TotalBalanceCents, f.LastUpdated, f.ID)
	return err
}

func (r *bankFundRepository) CreateTransactionTx(ctx context.Context, tx *sql.Tx, bt *domain.BankTransaction) error {
	query := `INSERT INTO bank_transactions (type, amount_cents, description, balance_after_cents, created_at)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	bt.CreatedAt = time.Now()
	return tx.QueryRowContext(ctx, query, bt.Type, bt.AmountCents, bt.Description, bt.BalanceAfterCents, bt.CreatedAt).Scan(&bt.ID)
}

func (r *bankFundRepository) ListTransactions(ctx context.Context, limit, offset int32) ([]domain.BankTransaction, int32, error) {
	var total int32
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bank_transactions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, type, amount_cents, COALESCE(description, ''), balance_after_cents, created_at
	          FROM bank_transactions ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txns []domain.BankTransaction
	for rows.Next() {
		var bt domain.BankTransaction
		if err := rows.Scan(&bt.ID, &bt.Type, &bt.AmountCents, &bt.Description, &bt.BalanceAfterCents, &bt.CreatedAt); err != nil {
			return nil, 0, err
		}
		txns = append(txns, bt)
	}
	return txns, total, rows.Err()
}
