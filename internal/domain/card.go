package domain

import "time"

type CardType string

const (
	CardTypePlatinumDebit   CardType = "PLATINUM_DEBIT"
	CardTypeSignatureCredit CardType = "SIGNATURE_CREDIT"
	CardTypeNormalCredit    CardType = "NORMAL_CREDIT"
)

type CardStatus string

const (
	CardStatusPending  CardStatus = "PENDING"
	CardStatusActive   CardStatus = "ACTIVE"
	CardStatusBlocked  CardStatus = "BLOCKED"
	CardStatusRejected CardStatus = "REJECTED"
)

// Card carries spend-control state. Limit fields are nullable: an unset limit
// means that check is skipped entirely. Usage counters (UsedAmountCents,
// DailyUsageCents, LastUsageDate) are maintained for credit cards only; debit
// cards settle directly against the linked account balance.
type Card struct {
	ID                  int64      `json:"id"`
	Username            string     `json:"username"`
	CardNumber          string     `json:"card_number"`
	CardType            CardType   `json:"card_type"`
	Status              CardStatus `json:"status"`
	LinkedAccountNumber string     `json:"linked_account_number"`
	PINHash             string     `json:"-"`
	CreditLimitCents    *int64     `json:"credit_limit_cents,omitempty"`
	PerTxnLimitCents    *int64     `json:"per_txn_limit_cents,omitempty"`
	DailyLimitCents     *int64     `json:"daily_limit_cents,omitempty"`
	UsedAmountCents     int64      `json:"used_amount_cents"`
	DailyUsageCents     int64      `json:"daily_usage_cents"`
	LastUsageDate       *time.Time `json:"last_usage_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsCredit reports whether the card settles against revolving credit rather
// than the linked account.
func (c *Card) IsCredit() bool {
	return c.CardType == CardTypeSignatureCredit || c.CardType == CardTypeNormalCredit
}

// OutstandingCents is the unbilled credit usage, zero for debit cards.
func (c *Card) OutstandingCents() int64 {
	if !c.IsCredit() {
		return 0
	}
	return c.UsedAmountCents
}
