package postgres

import (
	"context"
	"database/sql"
	"time"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository"
)

type cardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `id, username, card_number, card_type, status, linked_account_number, pin_hash, credit_limit_cents, per_txn_limit_cents, daily_limit_cents, used_amount_cents, daily_usage_cents, last_usage_date, created_at, updated_at`

func scanCard(scan func(dest ...any) error) (*domain.Card, error) {
	c := &domain.Card{}
	err := scan(&c.ID, &c.Username, &c.CardNumber, &c.CardType, &c.Status, &c.LinkedAccountNumber,
		&c.PINHash, &c.CreditLimitCents, &c.PerTxnLimitCents, &c.DailyLimitCents,
		&c.UsedAmountCents, &c.DailyUsageCents, &c.LastUsageDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *cardRepository) Create(ctx context.Context, c *domain.Card) error {
	query := `INSERT INTO cards (username, card_number, card_type, status, linked_account_number, pin_hash, credit_limit_cents, per_txn_limit_cents, daily_limit_cents, used_amount_cents, daily_usage_cents, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, $10, $10) RETURNING id`
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return r.db.QueryRowContext(ctx, query, c.Username, c.CardNumber, c.CardType, c.Status,
		c.LinkedAccountNumber, c.PINHash, c.CreditLimitCents, c.PerTxnLimitCents, c.DailyLimitCents, now).Scan(&c.ID)
}

func (r *cardRepository) GetByNumber(ctx context.Context, number string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_number = $1`
	return scanCard(r.db.QueryRowContext(ctx, query, number).Scan)
}

func (r *cardRepository) ListByUsername(ctx context.Context, username string) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE username = $1 ORDER BY created_at`
	return r.queryCards(ctx, query, username)
}

func (r *cardRepository) UpdateStatus(ctx context.Context, id int64, status domain.CardStatus) error {
	query := `UPDATE cards SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

// LockForUpdate serializes spend-control mutations on one card.
func (r *cardRepository) LockForUpdate(ctx context.Context, tx *sql.Tx, number string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_number = $1 FOR UPDATE`
	return scanCard(tx.QueryRowContext(ctx, query, number).Scan)
}

func (r *cardRepository) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	return scanCard(tx.QueryRowContext(ctx, query, id).Scan)
}

func (r *cardRepository) UpdateUsageTx(ctx context.Context, tx *sql.Tx, c *domain.Card) error {
	query := `UPDATE cards SET used_amount_cents = $1, daily_usage_cents = $2, last_usage_date = $3, updated_at = $4
	          WHERE id = $5`
	_, err := tx.ExecContext(ctx, query, c.UsedAmountCents, c.DailyUsageCents, c.LastUsageDate, time.Now(), c.ID)
	return err
}

func (r *cardRepository) ListActiveCreditWithUsage(ctx context.Context) ([]domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
	          WHERE status = $1 AND card_type IN ($2, $3) AND used_amount_cents > 0
	          ORDER BY id`
	return r.queryCards(ctx, query, domain.CardStatusActive, domain.CardTypeSignatureCredit, domain.CardTypeNormalCredit)
}

func (r *cardRepository) queryCards(ctx context.Context, query string, args ...any) ([]domain.Card, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows.Scan)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}
