package domain

import "time"

type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "PENDING"
	LoanStatusApproved  LoanStatus = "APPROVED"
	LoanStatusRejected  LoanStatus = "REJECTED"
	LoanStatusCompleted LoanStatus = "COMPLETED"
)

// LoanApplication moves PENDING -> APPROVED | REJECTED by an admin decision,
// and APPROVED -> COMPLETED as a derived transition once every linked bill is
// paid. BalanceCredited is set exactly once, during approval.
type LoanApplication struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	AccountNumber    string     `json:"account_number"`
	LoanType         string     `json:"loan_type"`
	LoanAmountCents  int64      `json:"loan_amount_cents"`
	TenureMonths     int        `json:"tenure_months"`
	InterestRatePct  float64    `json:"interest_rate_pct"`
	Status           LoanStatus `json:"status"`
	BalanceCredited  bool       `json:"balance_credited"`
	LastBilledAt     *time.Time `json:"last_billed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Decided reports whether the application has left PENDING. Decided loans are
// immutable except for the derived COMPLETED transition.
func (l *LoanApplication) Decided() bool {
	return l.Status != LoanStatusPending
}
