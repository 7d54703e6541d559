package service

import (
	"time"

	"bankledger-backend/internal/domain"
)

// Card spend adjudication. These functions only decide and adjust the
// in-memory card; persisting the result is the caller's job, and it must
// happen under the card's row lock.

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RolloverDailyUsage zeroes the daily counter when the last recorded usage
// was on an earlier day.
func RolloverDailyUsage(card *domain.Card, now time.Time) {
	if card.LastUsageDate == nil || !sameDay(*card.LastUsageDate, now) {
		card.DailyUsageCents = 0
	}
}

// ValidateCardSpend checks a proposed spend against the card's controls:
// status, per-transaction limit, daily limit after rollover, and either the
// credit line (credit cards) or the linked account balance (debit cards).
// Unset limit fields skip their check. The daily rollover is applied to the
// card as a side effect so an accepted spend persists the reset counter.
func ValidateCardSpend(card *domain.Card, amountCents, linkedBalanceCents int64, now time.Time) error {
	if card.Status != domain.CardStatusActive {
		return domain.NewValidationError("card %s is not active", card.CardNumber)
	}
	if amountCents <= 0 {
		return domain.NewValidationError("amount must be positive")
	}
	if card.PerTxnLimitCents != nil && amountCents > *card.PerTxnLimitCents {
		return &domain.LimitExceededError{Limit: "per-transaction", LimitCents: *card.PerTxnLimitCents, RequestedCents: amountCents}
	}
	RolloverDailyUsage(card, now)
	if card.DailyLimitCents != nil && card.DailyUsageCents+amountCents > *card.DailyLimitCents {
		return &domain.LimitExceededError{Limit: "daily", LimitCents: *card.DailyLimitCents, RequestedCents: card.DailyUsageCents + amountCents}
	}
	if card.IsCredit() {
		if card.CreditLimitCents != nil && card.UsedAmountCents+amountCents > *card.CreditLimitCents {
			return &domain.LimitExceededError{Limit: "credit", LimitCents: *card.CreditLimitCents, RequestedCents: card.UsedAmountCents + amountCents}
		}
		return nil
	}
	if linkedBalanceCents < amountCents {
		return &domain.InsufficientFundsError{AvailableCents: linkedBalanceCents, RequestedCents: amountCents}
	}
	return nil
}

// ApplyCardSpend records an accepted spend on the in-memory card. Credit
// cards accrue both counters; debit cards settle against the linked account,
// so only the timestamp advances.
func ApplyCardSpend(card *domain.Card, amountCents int64, now time.Time) {
	if card.IsCredit() {
		card.UsedAmountCents += amountCents
		card.DailyUsageCents += amountCents
	}
	t := now
	card.LastUsageDate = &t
}
