package lease

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTermsInPeriodSelectsIntersecting(t *testing.T) {
	l := &Lease{
		ID: "lease_1",
		Terms: []*LeaseTerm{
			{
				ID:            "term_past",
				EffectiveFrom: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				EffectiveTo:   lo.ToPtr(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
				MonthlyRent:   decimal.NewFromInt(9000),
			},
			{
				ID:            "term_current",
				EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				EffectiveTo:   lo.ToPtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
				MonthlyRent:   decimal.NewFromInt(10000),
			},
			{
				ID:            "term_next",
				EffectiveFrom: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
				MonthlyRent:   decimal.NewFromInt(12000),
			},
		},
	}

	terms := l.TermsInPeriod(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	)

	assert.Len(t, terms, 2)
	assert.Equal(t, "term_current", terms[0].ID)
	assert.Equal(t, "term_next", terms[1].ID)
}

func TestTermsInPeriodOrdersByEffectiveFrom(t *testing.T) {
	l := &Lease{
		ID: "lease_1",
		Terms: []*LeaseTerm{
			{ID: "late", EffectiveFrom: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)},
			{ID: "early", EffectiveFrom: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), EffectiveTo: lo.ToPtr(time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC))},
		},
	}

	terms := l.TermsInPeriod(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	)

	assert.Equal(t, "early", terms[0].ID)
	assert.Equal(t, "late", terms[1].ID)
}

func TestIntersectsBoundaries(t *testing.T) {
	periodStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	// A term ending exactly on the period start still intersects: the day
	// counts are inclusive on both ends.
	ending := &LeaseTerm{
		EffectiveFrom: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		EffectiveTo:   lo.ToPtr(periodStart),
	}
	assert.True(t, ending.Intersects(periodStart, periodEnd))

	starting := &LeaseTerm{EffectiveFrom: periodEnd}
	assert.True(t, starting.Intersects(periodStart, periodEnd))

	after := &LeaseTerm{EffectiveFrom: periodEnd.AddDate(0, 0, 1)}
	assert.False(t, after.Intersects(periodStart, periodEnd))

	before := &LeaseTerm{
		EffectiveFrom: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EffectiveTo:   lo.ToPtr(periodStart.AddDate(0, 0, -1)),
	}
	assert.False(t, before.Intersects(periodStart, periodEnd))
}

func TestIntersectsIgnoresTimeOfDay(t *testing.T) {
	periodStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	// A term becoming effective mid-morning on the period's last day still
	// covers that day.
	lastDay := &LeaseTerm{EffectiveFrom: time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)}
	assert.True(t, lastDay.Intersects(periodStart, periodEnd))

	// Likewise a term ending late in the evening of the period's first day.
	firstDay := &LeaseTerm{
		EffectiveFrom: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		EffectiveTo:   lo.ToPtr(time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)),
	}
	assert.True(t, firstDay.Intersects(periodStart, periodEnd))
}
