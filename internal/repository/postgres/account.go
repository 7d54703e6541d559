package postgres

import (
	"context"
	"database/sql"
	"time"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository"
)

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, user_id, username, account_number, account_type, balance_cents, transaction_limit_cents, version, created_at, updated_at`

func scanAccount(row *sql.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.UserID, &a.Username, &a.AccountNumber, &a.AccountType,
		&a.BalanceCents, &a.TransactionLimitCents, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *accountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (user_id, username, account_number, account_type, balance_cents, transaction_limit_cents, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $7) RETURNING id`
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	return r.db.QueryRowContext(ctx, query, a.UserID, a.Username, a.AccountNumber, a.AccountType,
		a.BalanceCents, a.TransactionLimitCents, now).Scan(&a.ID)
}

func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, number))
}

func (r *accountRepository) ListByUsername(ctx context.Context, username string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Username, &a.AccountNumber, &a.AccountType,
			&a.BalanceCents, &a.TransactionLimitCents, &a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *accountRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_number = $1)`
	err := r.db.QueryRowContext(ctx, query, number).Scan(&exists)
	return exists, err
}

// LockForUpdate acquires the row lock for an account inside the caller's
// transaction. The lock is held until commit or rollback.
func (r *accountRepository) LockForUpdate(ctx context.Context, tx *sql.Tx, number string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1 FOR UPDATE`
	return scanAccount(tx.QueryRowContext(ctx, query, number))
}

// UpdateBalanceTx persists a new balance with an optimistic version guard on
// top of the row lock. A zero-row update means the snapshot went stale.
func (r *accountRepository) UpdateBalanceTx(ctx context.Context, tx *sql.Tx, a *domain.Account) error {
	query := `UPDATE accounts SET balance_cents = $1, version = version + 1, updated_at = $2
	          WHERE account_number = $3 AND version = $4`
	res, err := tx.ExecContext(ctx, query, a.BalanceCents, time.Now(), a.AccountNumber, a.Version)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	a.Version++
	return nil
}
