package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonthlyEMICents(t *testing.T) {
	t.Run("twelve month personal loan", func(t *testing.T) {
		// 120000.00 at 8.5% over 12 months lands a little above 10466.00/mo.
		emi := MonthlyEMICents(12000000, 8.5, 12)
		assert.Greater(t, emi, int64(1046000))
		assert.Less(t, emi, int64(1047500))
		// Total repaid must cover the principal.
		assert.GreaterOrEqual(t, emi*12, int64(12000000))
	})

	t.Run("longer tenure lowers the installment", func(t *testing.T) {
		short := MonthlyEMICents(12000000, 8.5, 12)
		long := MonthlyEMICents(12000000, 8.5, 60)
		assert.Less(t, long, short)
	})

	t.Run("zero rate divides principal evenly", func(t *testing.T) {
		assert.Equal(t, int64(1000000), MonthlyEMICents(12000000, 0, 12))
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		assert.Equal(t, int64(0), MonthlyEMICents(0, 8.5, 12))
		assert.Equal(t, int64(0), MonthlyEMICents(12000000, 8.5, 0))
	})
}

func TestThirtyDayInterestCents(t *testing.T) {
	// 100000.00 at 7.2% for 30/365 of a year = 591.78.
	assert.Equal(t, int64(59178), ThirtyDayInterestCents(10000000, 7.2))
	assert.Equal(t, int64(0), ThirtyDayInterestCents(0, 7.2))
	assert.Equal(t, int64(0), ThirtyDayInterestCents(10000000, 0))
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, int64(1), RoundCents(0.5))
	assert.Equal(t, int64(0), RoundCents(0.49999))
	assert.Equal(t, int64(2), RoundCents(1.5))
}

func TestPercentOfCents(t *testing.T) {
	// 5% minimum due on a 1234.56 statement rounds half-up to 61.73.
	assert.Equal(t, int64(6173), PercentOfCents(123456, 5))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1234.05", FormatAmount(123405))
	assert.Equal(t, "0.00", FormatAmount(0))
}
