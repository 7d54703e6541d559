package jobs

import (
	"context"

	"bankledger-backend/internal/logger"
)

// GenerateCardBills cuts or refreshes monthly statements for credit cards
// carrying an outstanding balance.
func (jr *JobRunner) GenerateCardBills() {
	jr.runWithRecovery("GenerateCardBills", func() {
		ctx := context.Background()

		count, err := jr.services.Bill.GenerateCardBills(ctx)
		if err != nil {
			logger.Error("Failed to generate card bills", "error", err)
			return
		}
		logger.Info("Card bills generated", "count", count)
	})
}

// GenerateLoanInterestBills charges simple interest on approved loans that
// have gone a full period since their last interest bill.
func (jr *JobRunner) GenerateLoanInterestBills() {
	jr.runWithRecovery("GenerateLoanInterestBills", func() {
		ctx := context.Background()

		count, err := jr.services.Bill.GenerateLoanInterestBills(ctx)
		if err != nil {
			logger.Error("Failed to generate loan interest bills", "error", err)
			return
		}
		logger.Info("Loan interest bills generated", "count", count)
	})
}
