package proration

import (
	"testing"
	"time"

	ierr "github.com/propbase/billing/internal/errors"
	"github.com/propbase/billing/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestActualDaysCalculator(t *testing.T) {
	calc := NewCalculator(types.ProrationMethodActualDaysInMonth)

	tests := []struct {
		name     string
		params   Params
		expected string
	}{
		{
			name: "full period is not prorated",
			params: Params{
				FullAmount:     decimal.NewFromInt(10000),
				EffectiveStart: date(2025, time.January, 1),
				EffectiveEnd:   date(2025, time.January, 31),
				PeriodStart:    date(2025, time.January, 1),
				PeriodEnd:      date(2025, time.January, 31),
			},
			expected: "10000",
		},
		{
			name: "mid month move in across 31 day month",
			params: Params{
				FullAmount:     decimal.NewFromInt(10000),
				EffectiveStart: date(2025, time.January, 15),
				EffectiveEnd:   date(2025, time.January, 31),
				PeriodStart:    date(2025, time.January, 1),
				PeriodEnd:      date(2025, time.January, 31),
			},
			expected: "5483.87", // 10000 * 17 / 31
		},
		{
			name: "single day",
			params: Params{
				FullAmount:     decimal.NewFromInt(3100),
				EffectiveStart: date(2025, time.January, 10),
				EffectiveEnd:   date(2025, time.January, 10),
				PeriodStart:    date(2025, time.January, 1),
				PeriodEnd:      date(2025, time.January, 31),
			},
			expected: "100",
		},
		{
			name: "february leap year",
			params: Params{
				FullAmount:     decimal.NewFromInt(2900),
				EffectiveStart: date(2024, time.February, 1),
				EffectiveEnd:   date(2024, time.February, 15),
				PeriodStart:    date(2024, time.February, 1),
				PeriodEnd:      date(2024, time.February, 29),
			},
			expected: "1500", // 2900 * 15 / 29
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(tt.params)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, got.String())
		})
	}
}

func TestThirtyDayMonthCalculator(t *testing.T) {
	calc := NewCalculator(types.ProrationMethodThirtyDayMonth)

	tests := []struct {
		name     string
		params   Params
		expected string
	}{
		{
			name: "mid month move in ignores actual period length",
			params: Params{
				FullAmount:     decimal.NewFromInt(10000),
				EffectiveStart: date(2025, time.January, 15),
				EffectiveEnd:   date(2025, time.January, 31),
				PeriodStart:    date(2025, time.January, 1),
				PeriodEnd:      date(2025, time.January, 31),
			},
			expected: "5666.67", // 10000 * 17 / 30
		},
		{
			name: "full 31 day period bills one extra day",
			params: Params{
				FullAmount:     decimal.NewFromInt(3000),
				EffectiveStart: date(2025, time.January, 1),
				EffectiveEnd:   date(2025, time.January, 31),
				PeriodStart:    date(2025, time.January, 1),
				PeriodEnd:      date(2025, time.January, 31),
			},
			expected: "3100", // 3000 * 31 / 30
		},
		{
			name: "half of thirty day month",
			params: Params{
				FullAmount:     decimal.NewFromInt(9000),
				EffectiveStart: date(2025, time.April, 16),
				EffectiveEnd:   date(2025, time.April, 30),
				PeriodStart:    date(2025, time.April, 1),
				PeriodEnd:      date(2025, time.April, 30),
			},
			expected: "4500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Calculate(tt.params)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, got.String())
		})
	}
}

func TestCalculatorRejectsInvalidRanges(t *testing.T) {
	calc := NewCalculator(types.ProrationMethodActualDaysInMonth)

	tests := []struct {
		name   string
		params Params
	}{
		{
			name: "effective end before effective start",
			params: Params{
				FullAmount:     decimal.NewFromInt(100),
				EffectiveStart: date(2025, time.January, 20),
				EffectiveEnd:   date(2025, time.January, 10),
				PeriodStart:    date(2025, time.January, 1),
				PeriodEnd:      date(2025, time.January, 31),
			},
		},
		{
			name: "period end before period start",
			params: Params{
				FullAmount:     decimal.NewFromInt(100),
				EffectiveStart: date(2025, time.January, 1),
				EffectiveEnd:   date(2025, time.January, 1),
				PeriodStart:    date(2025, time.January, 31),
				PeriodEnd:      date(2025, time.January, 1),
			},
		},
		{
			name: "effective range outside period",
			params: Params{
				FullAmount:     decimal.NewFromInt(100),
				EffectiveStart: date(2024, time.December, 25),
				EffectiveEnd:   date(2025, time.January, 5),
				PeriodStart:    date(2025, time.January, 1),
				PeriodEnd:      date(2025, time.January, 31),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(tt.params)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}

func TestRoundingHalfAwayFromZero(t *testing.T) {
	calc := NewCalculator(types.ProrationMethodActualDaysInMonth)

	// 100.50 * 1 / 8 = 12.5625 -> 12.56; 100.60 * 1 / 8 = 12.575 -> 12.58
	got, err := calc.Calculate(Params{
		FullAmount:     decimal.RequireFromString("100.60"),
		EffectiveStart: date(2025, time.March, 1),
		EffectiveEnd:   date(2025, time.March, 1),
		PeriodStart:    date(2025, time.March, 1),
		PeriodEnd:      date(2025, time.March, 8),
	})
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("12.58")), "got %s", got.String())
}
