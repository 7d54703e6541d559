package domain

import (
	"regexp"
	"time"
)

type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
)

// AccountNumberPattern is the canonical account number format: BK followed by
// the SV/CR type tag and seven digits.
var AccountNumberPattern = regexp.MustCompile(`^BK(SV|CR)\d{7}$`)

// Account holds the persisted balance state for one customer. The balance is
// int64 cents and must never be observed negative. Version backs the
// optimistic write guard on balance updates.
type Account struct {
	ID                    int64       `json:"id"`
	UserID                int64       `json:"user_id"`
	Username              string      `json:"username"`
	AccountNumber         string      `json:"account_number"`
	AccountType           AccountType `json:"account_type"`
	BalanceCents          int64       `json:"balance_cents"`
	TransactionLimitCents int64       `json:"transaction_limit_cents"`
	Version               int64       `json:"-"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}
