package postgres

import (
	"context"
	"database/sql"
	"time"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository"
)

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, username, account_number, loan_type, loan_amount_cents, tenure_months, interest_rate_pct, status, balance_credited, last_billed_at, created_at, updated_at`

func scanLoan(scan func(dest ...any) error) (*domain.LoanApplication, error) {
	l := &domain.LoanApplication{}
	err := scan(&l.ID, &l.Username, &l.AccountNumber, &l.LoanType, &l.LoanAmountCents,
		&l.TenureMonths, &l.InterestRatePct, &l.Status, &l.BalanceCredited, &l.LastBilledAt,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *loanRepository) Create(ctx context.Context, l *domain.LoanApplication) error {
	query := `INSERT INTO loan_applications (username, account_number, loan_type, loan_amount_cents, tenure_months, interest_rate_pct, status, balance_credited, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $8) RETURNING id`
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now
	return r.db.QueryRowContext(ctx, query, l.Username, l.AccountNumber, l.LoanType, l.LoanAmountCents,
		l.TenureMonths, l.InterestRatePct, l.Status, now).Scan(&l.ID)
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications WHERE id = $1`
	return scanLoan(r.db.QueryRowContext(ctx, query, id).Scan)
}

func (r *loanRepository) ListByUsername(ctx context.Context, username string) ([]domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications WHERE username = $1 ORDER BY created_at DESC`
	return r.queryLoans(ctx, query, username)
}

func (r *loanRepository) ListByStatus(ctx context.Context, status domain.LoanStatus) ([]domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications WHERE status = $1 ORDER BY created_at`
	return r.queryLoans(ctx, query, status)
}

func (r *loanRepository) queryLoans(ctx context.Context, query string, args ...any) ([]domain.LoanApplication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.LoanApplication
	for rows.Next() {
		l, err := scanLoan(rows.Scan)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, rows.Err()
}

// UpdateStatusTx decides a PENDING application. The status guard makes the
// decision idempotent against a racing admin.
func (r *loanRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status domain.LoanStatus, balanceCredited bool) error {
	query := `UPDATE loan_applications SET status = $1, balance_credited = $2, updated_at = $3
	          WHERE id = $4 AND status = $5`
	res, err := tx.ExecContext(ctx, query, status, balanceCredited, time.Now(), id, domain.LoanStatusPending)
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

func (r *loanRepository) MarkCompletedTx(ctx context.Context, tx *sql.Tx, id int64) error {
	query := `UPDATE loan_applications SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	_, err := tx.ExecContext(ctx, query, domain.LoanStatusCompleted, time.Now(), id, domain.LoanStatusApproved)
	return err
}

// ListDueForInterestBilling returns approved loans whose last interest bill
// is older than the cutoff, treating a never-billed loan's approval time as
// its baseline.
func (r *loanRepository) ListDueForInterestBilling(ctx context.Context, cutoff time.Time) ([]domain.LoanApplication, error) {
	query := `SELECT ` + loanColumns + ` FROM loan_applications
	          WHERE status = $1 AND COALESCE(last_billed_at, updated_at) <= $2
	          ORDER BY id`
	return r.queryLoans(ctx, query, domain.LoanStatusApproved, cutoff)
}

func (r *loanRepository) SetLastBilledAt(ctx context.Context, id int64, billedAt time.Time) error {
	query := `UPDATE loan_applications SET last_billed_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, billedAt, id)
	return err
}
