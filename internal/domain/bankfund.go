package domain

import "time"

// BankFund is the single reserve row backing loan disbursals and absorbing
// repayments. There is exactly one row; concurrent movements serialize on its
// row lock.
type BankFund struct {
	ID                int64     `json:"id"`
	TotalBalanceCents int64     `json:"total_balance_cents"`
	LastUpdated       time.Time `json:"last_updated"`
}

type BankTransactionType string

const (
	BankTransactionCredit BankTransactionType = "CREDIT"
	BankTransactionDebit  BankTransactionType = "DEBIT"
)

// BankTransaction is an append-only audit row for every reserve movement.
type BankTransaction struct {
	ID                int64               `json:"id"`
	Type              BankTransactionType `json:"type"`
	AmountCents       int64               `json:"amount_cents"`
	Description       string              `json:"description"`
	BalanceAfterCents int64               `json:"balance_after_cents"`
	CreatedAt         time.Time           `json:"created_at"`
}
