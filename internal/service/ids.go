package service

import "github.com/google/uuid"

// newTransactionID mints the public identifier for a ledger entry.
func newTransactionID() string {
	return uuid.NewString()
}
