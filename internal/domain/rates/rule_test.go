package rates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRule(t *testing.T, id string, start, end time.Time, pct int64) *PricingRule {
	t.Helper()
	rule, err := NewPricingRule(RuleParams{
		ID:            RuleID(id),
		UnitID:        "unit-1",
		Label:         id,
		Start:         start,
		End:           end,
		MultiplierPct: pct,
		Now:           day(2026, time.January, 1),
	})
	require.NoError(t, err)
	return rule
}

func TestNewPricingRuleValidation(t *testing.T) {
	_, err := NewPricingRule(RuleParams{
		ID: "r1", UnitID: "unit-1", Label: " ",
		Start: day(2026, time.June, 1), End: day(2026, time.June, 10), MultiplierPct: 150,
	})
	assert.ErrorIs(t, err, ErrLabelRequired)

	_, err = NewPricingRule(RuleParams{
		ID: "r1", UnitID: "unit-1", Label: "peak",
		Start: day(2026, time.June, 10), End: day(2026, time.June, 10), MultiplierPct: 150,
	})
	assert.ErrorIs(t, err, ErrBadRuleRange)

	for _, pct := range []int64{0, -10, 1001} {
		_, err = NewPricingRule(RuleParams{
			ID: "r1", UnitID: "unit-1", Label: "peak",
			Start: day(2026, time.June, 1), End: day(2026, time.June, 10), MultiplierPct: pct,
		})
		assert.ErrorIs(t, err, ErrMultiplierRange, "pct=%d", pct)
	}
}

func TestCoversIsInclusiveOnBothEnds(t *testing.T) {
	rule := mustRule(t, "summer", day(2026, time.July, 1), day(2026, time.August, 31), 150)

	assert.True(t, rule.Covers(day(2026, time.July, 1)))
	assert.True(t, rule.Covers(day(2026, time.August, 31)))
	assert.True(t, rule.Covers(day(2026, time.August, 15)))
	assert.False(t, rule.Covers(day(2026, time.June, 30)))
	assert.False(t, rule.Covers(day(2026, time.September, 1)))
}

func TestCheckNoOverlapRejectsIntersectingSpans(t *testing.T) {
	existing := []*PricingRule{
		mustRule(t, "spring", day(2026, time.April, 1), day(2026, time.April, 30), 120),
		mustRule(t, "summer", day(2026, time.July, 1), day(2026, time.August, 31), 150),
	}

	candidate := mustRule(t, "july-special", day(2026, time.August, 20), day(2026, time.September, 10), 130)
	assert.ErrorIs(t, CheckNoOverlap(candidate, existing), ErrRuleOverlap)

	// Sharing a single boundary day still overlaps: spans are inclusive.
	boundary := mustRule(t, "boundary", day(2026, time.August, 31), day(2026, time.September, 10), 130)
	assert.ErrorIs(t, CheckNoOverlap(boundary, existing), ErrRuleOverlap)

	gap := mustRule(t, "autumn", day(2026, time.September, 1), day(2026, time.September, 30), 90)
	assert.NoError(t, CheckNoOverlap(gap, existing))
}

func TestCheckNoOverlapSkipsInactiveAndSelf(t *testing.T) {
	retired := mustRule(t, "old-summer", day(2026, time.July, 1), day(2026, time.August, 31), 150)
	retired.Deactivate(day(2026, time.February, 1))
	existing := []*PricingRule{retired}

	candidate := mustRule(t, "new-summer", day(2026, time.July, 1), day(2026, time.August, 31), 140)
	assert.NoError(t, CheckNoOverlap(candidate, existing))

	// Editing a rule must not collide with its own stored span.
	edited := mustRule(t, "new-summer", day(2026, time.July, 5), day(2026, time.August, 20), 160)
	assert.NoError(t, CheckNoOverlap(edited, []*PricingRule{candidate}))
}

func TestDeactivateIsIdempotent(t *testing.T) {
	rule := mustRule(t, "summer", day(2026, time.July, 1), day(2026, time.August, 31), 150)
	first := day(2026, time.March, 1)
	rule.Deactivate(first)
	require.False(t, rule.Active)
	updatedAt := rule.UpdatedAt

	rule.Deactivate(day(2026, time.April, 1))
	assert.Equal(t, updatedAt, rule.UpdatedAt)
}
