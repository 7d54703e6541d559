package postgres

import (
	"context"
	"database/sql"
	"time"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository"
)

type billRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) repository.BillRepository {
	return &billRepository{db: db}
}

const billColumns = `id, username, account_number, bill_type, amount_cents, minimum_due_cents, due_date, status, loan_id, card_id, created_at, paid_at`

func scanBill(scan func(dest ...any) error) (*domain.Bill, error) {
	b := &domain.Bill{}
	err := scan(&b.ID, &b.Username, &b.AccountNumber, &b.BillType, &b.AmountCents,
		&b.MinimumDueCents, &b.DueDate, &b.Status, &b.LoanID, &b.CardID, &b.CreatedAt, &b.PaidAt)
	if err != nil {
		return nil, err
	}
	b.Paid = b.Status == domain.BillStatusPaid
	return b, nil
}

const insertBill = `INSERT INTO bills (username, account_number, bill_type, amount_cents, minimum_due_cents, due_date, status, loan_id, card_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

func (r *billRepository) Create(ctx context.Context, b *domain.Bill) error {
	b.CreatedAt = time.Now()
	return r.db.QueryRowContext(ctx, insertBill, b.Username, b.AccountNumber, b.BillType, b.AmountCents,
		b.MinimumDueCents, b.DueDate, b.Status, b.LoanID, b.CardID, b.CreatedAt).Scan(&b.ID)
}

func (r *billRepository) CreateTx(ctx context.Context, tx *sql.Tx, b *domain.Bill) error {
	b.CreatedAt = time.Now()
	return tx.QueryRowContext(ctx, insertBill, b.Username, b.AccountNumber, b.BillType, b.AmountCents,
		b.MinimumDueCents, b.DueDate, b.Status, b.LoanID, b.CardID, b.CreatedAt).Scan(&b.ID)
}

func (r *billRepository) GetByID(ctx context.Context, id int64) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`
	return scanBill(r.db.QueryRowContext(ctx, query, id).Scan)
}

func (r *billRepository) ListByUsername(ctx context.Context, username string, status string) ([]domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE username = $1`
	args := []any{username}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY due_date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []domain.Bill
	for rows.Next() {
		b, err := scanBill(rows.Scan)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	return bills, rows.Err()
}

// LockForUpdate pins the bill row so a concurrent payment of the same bill
// blocks until this transaction resolves.
func (r *billRepository) LockForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1 FOR UPDATE`
	return scanBill(tx.QueryRowContext(ctx, query, id).Scan)
}

func (r *billRepository) MarkPaidTx(ctx context.Context, tx *sql.Tx, id int64, paidAt time.Time) error {
	query := `UPDATE bills SET status = $1, paid_at = $2 WHERE id = $3 AND status = $4`
	res, err := tx.ExecContext(ctx, query, domain.BillStatusPaid, paidAt, id, domain.BillStatusUnpaid)
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
	return nil
}

func (r *billRepository) CountUnpaidByLoanTx(ctx context.Context, tx *sql.Tx, loanID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM bills WHERE loan_id = $1 AND status = $2`
	err := tx.QueryRowContext(ctx, query, loanID, domain.BillStatusUnpaid).Scan(&count)
	return count, err
}

func (r *billRepository) GetOpenBillForCard(ctx context.Context, cardID int64) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE card_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1`
	return scanBill(r.db.QueryRowContext(ctx, query, cardID, domain.BillStatusUnpaid).Scan)
}

func (r *billRepository) LastCardBillTime(ctx context.Context, cardID int64) (*time.Time, error) {
	var last sql.NullTime
	query := `SELECT MAX(created_at) FROM bills WHERE card_id = $1`
	if err := r.db.QueryRowContext(ctx, query, cardID).Scan(&last); err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// UpdateAmounts refreshes an open card bill in place instead of stacking a
// second statement for the same cycle.
func (r *billRepository) UpdateAmounts(ctx context.Context, id int64, amountCents, minimumDueCents int64, dueDate time.Time) error {
	query := `UPDATE bills SET amount_cents = $1, minimum_due_cents = $2, due_date = $3 WHERE id = $4 AND status = $5`
	_, err := r.db.ExecContext(ctx, query, amountCents, minimumDueCents, dueDate, id, domain.BillStatusUnpaid)
	return err
}
