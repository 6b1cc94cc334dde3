package rates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayd/internal/domain/shared/daterange"
	"stayd/internal/domain/unit"
)

func testUnit(t *testing.T) *unit.RentalUnit {
	t.Helper()
	u, err := unit.NewRentalUnit(unit.CreateParams{
		ID:            "unit-1",
		Owner:         "owner-1",
		Name:          "Oran Seafront Studio",
		Currency:      "DZD",
		BaseRateCents: 850000,
		MaxGuests:     2,
		Now:           day(2026, time.January, 1),
	})
	require.NoError(t, err)
	return u
}

func TestResolveScheduleAppliesSingleRuleNight(t *testing.T) {
	u := testUnit(t)
	// Rule covers only the last night of a three-night stay.
	rules := []*PricingRule{mustRule(t, "peak", day(2026, time.June, 12), day(2026, time.June, 20), 150)}
	stay, err := daterange.New(day(2026, time.June, 10), day(2026, time.June, 13))
	require.NoError(t, err)

	schedule, err := ResolveSchedule(u, rules, stay)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.Equal(t, int64(850000), schedule[0].Rate.Amount)
	assert.Empty(t, schedule[0].RuleID)
	assert.Equal(t, int64(850000), schedule[1].Rate.Amount)
	assert.Equal(t, int64(1275000), schedule[2].Rate.Amount)
	assert.Equal(t, RuleID("peak"), schedule[2].RuleID)
}

func TestResolveScheduleIgnoresForeignAndInactiveRules(t *testing.T) {
	u := testUnit(t)
	foreign := mustRule(t, "other-unit", day(2026, time.June, 1), day(2026, time.June, 30), 200)
	foreign.UnitID = "unit-2"
	retired := mustRule(t, "retired", day(2026, time.June, 1), day(2026, time.June, 30), 200)
	retired.Deactivate(day(2026, time.February, 1))

	stay, err := daterange.New(day(2026, time.June, 10), day(2026, time.June, 12))
	require.NoError(t, err)

	schedule, err := ResolveSchedule(u, []*PricingRule{foreign, retired}, stay)
	require.NoError(t, err)
	for _, night := range schedule {
		assert.Equal(t, int64(850000), night.Rate.Amount)
		assert.Empty(t, night.RuleID)
	}
}

func TestResolveScheduleRefusesConflictingRules(t *testing.T) {
	u := testUnit(t)
	// Two active rules cover June 12th; stored data violating the
	// write-time invariant must surface, never resolve silently.
	rules := []*PricingRule{
		mustRule(t, "a", day(2026, time.June, 1), day(2026, time.June, 15), 150),
		mustRule(t, "b", day(2026, time.June, 12), day(2026, time.June, 30), 120),
	}
	stay, err := daterange.New(day(2026, time.June, 12), day(2026, time.June, 13))
	require.NoError(t, err)

	_, err = ResolveSchedule(u, rules, stay)
	assert.ErrorIs(t, err, ErrRuleConflict)
}
