package domain

import "time"

type BillStatus string

const (
	BillStatusUnpaid BillStatus = "UNPAID"
	BillStatusPaid   BillStatus = "PAID"
)

type BillType string

const (
	BillTypeEMI          BillType = "EMI"
	BillTypeCreditCard   BillType = "CREDIT_CARD"
	BillTypeLoanInterest BillType = "LOAN_INTEREST"
	BillTypeUtility      BillType = "UTILITY"
)

// Bill is an obligation owed by a user. It references either a loan or a card
// (never both) and flips to PAID exactly once, at payment. Paid mirrors Status
// for legacy consumers and is updated in lockstep with it.
type Bill struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	AccountNumber   string     `json:"account_number"`
	BillType        BillType   `json:"bill_type"`
	AmountCents     int64      `json:"amount_cents"`
	MinimumDueCents *int64     `json:"minimum_due_cents,omitempty"`
	DueDate         time.Time  `json:"due_date"`
	Status          BillStatus `json:"status"`
	Paid            bool       `json:"paid"`
	LoanID          *int64     `json:"loan_id,omitempty"`
	CardID          *int64     `json:"card_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

// CreditsBankReserve reports whether paying this bill moves money back into
// the bank-owned reserve.
func (b *Bill) CreditsBankReserve() bool {
	return b.BillType == BillTypeEMI || b.BillType == BillTypeCreditCard || b.BillType == BillTypeLoanInterest
}
