package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Synthetic endpoints used in ledger entries where one side of the movement
// is not a customer account.
const (
	SinkBillPayment    = "BILL_PAYMENT"
	SourceLoanDisbursal = "LOAN_DISBURSAL"
)

// Transaction is one immutable ledger entry: a single money movement attempt,
// successful or failed. Balance-after fields are nil when the corresponding
// side is a synthetic endpoint.
type Transaction struct {
	ID                    int64             `json:"id"`
	TransactionID         string            `json:"transaction_id"`
	FromAccountNumber     string            `json:"from_account_number"`
	ToAccountNumber       string            `json:"to_account_number"`
	AmountCents           int64             `json:"amount_cents"`
	Remarks               string            `json:"remarks"`
	Status                TransactionStatus `json:"status"`
	FromBalanceAfterCents *int64            `json:"from_balance_after_cents"`
	ToBalanceAfterCents   *int64            `json:"to_balance_after_cents"`
	CreatedAt             time.Time         `json:"created_at"`
}
