package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankledger-backend/internal/domain"
)

func activeCreditCard() *domain.Card {
	return &domain.Card{
		ID:               1,
		CardNumber:       "4000123412341234",
		CardType:         domain.CardTypeNormalCredit,
		Status:           domain.CardStatusActive,
		CreditLimitCents: centsPtr(100000),
		PerTxnLimitCents: centsPtr(50000),
		DailyLimitCents:  centsPtr(80000),
	}
}

func TestValidateCardSpend(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("inactive card rejected", func(t *testing.T) {
		card := activeCreditCard()
		card.Status = domain.CardStatusBlocked
		err := ValidateCardSpend(card, 1000, 0, now)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("per transaction limit", func(t *testing.T) {
		card := activeCreditCard()
		err := ValidateCardSpend(card, 50001, 0, now)
		var limitErr *domain.LimitExceededError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, "per-transaction", limitErr.Limit)
	})

	t.Run("daily limit accumulates", func(t *testing.T) {
		card := activeCreditCard()
		card.DailyUsageCents = 60000
		usedAt := now.Add(-2 * time.Hour)
		card.LastUsageDate = &usedAt
		err := ValidateCardSpend(card, 30000, 0, now)
		var limitErr *domain.LimitExceededError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, "daily", limitErr.Limit)
	})

	t.Run("daily usage resets on a new day", func(t *testing.T) {
		card := activeCreditCard()
		card.DailyUsageCents = 79000
		yesterday := now.AddDate(0, 0, -1)
		card.LastUsageDate = &yesterday
		err := ValidateCardSpend(card, 30000, 0, now)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), card.DailyUsageCents)
	})

	t.Run("credit line exhausted", func(t *testing.T) {
		card := activeCreditCard()
		card.UsedAmountCents = 90000
		err := ValidateCardSpend(card, 20000, 0, now)
		var limitErr *domain.LimitExceededError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, "credit", limitErr.Limit)
	})

	t.Run("debit card checks linked balance not credit", func(t *testing.T) {
		card := activeCreditCard()
		card.CardType = domain.CardTypePlatinumDebit
		card.CreditLimitCents = nil

		err := ValidateCardSpend(card, 20000, 10000, now)
		var fundsErr *domain.InsufficientFundsError
		require.ErrorAs(t, err, &fundsErr)

		assert.NoError(t, ValidateCardSpend(card, 20000, 30000, now))
	})

	t.Run("unset limits are skipped", func(t *testing.T) {
		card := activeCreditCard()
		card.PerTxnLimitCents = nil
		card.DailyLimitCents = nil
		card.CreditLimitCents = nil
		assert.NoError(t, ValidateCardSpend(card, 99999999, 0, now))
	})
}

func TestApplyCardSpend(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("credit card accrues usage", func(t *testing.T) {
		card := activeCreditCard()
		ApplyCardSpend(card, 2500, now)
		assert.Equal(t, int64(2500), card.UsedAmountCents)
		assert.Equal(t, int64(2500), card.DailyUsageCents)
		require.NotNil(t, card.LastUsageDate)
		assert.True(t, card.LastUsageDate.Equal(now))
	})

	t.Run("debit card only stamps the usage date", func(t *testing.T) {
		card := activeCreditCard()
		card.CardType = domain.CardTypePlatinumDebit
		ApplyCardSpend(card, 2500, now)
		assert.Equal(t, int64(0), card.UsedAmountCents)
		assert.Equal(t, int64(0), card.DailyUsageCents)
		require.NotNil(t, card.LastUsageDate)
	})
}
