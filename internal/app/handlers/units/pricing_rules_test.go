package units

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayd/internal/app/policies"
	"stayd/internal/app/uow"
	domainrates "stayd/internal/domain/rates"
	domainunit "stayd/internal/domain/unit"
	"stayd/internal/infra/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ruleFixture(t *testing.T) (context.Context, *memory.RuleRepository) {
	t.Helper()
	units := memory.NewUnitRepository()
	rules := memory.NewRuleRepository()
	bookings := memory.NewReservationRepository()

	u, err := domainunit.NewRentalUnit(domainunit.CreateParams{
		ID: "unit-1", Owner: "owner-1", Name: "Casbah View Apartment",
		Currency: "DZD", BaseRateCents: 850000, MaxGuests: 4,
		Now: date(2026, time.January, 1),
	})
	require.NoError(t, err)
	require.NoError(t, units.Save(context.Background(), u))

	factory := memory.Factory{UnitRepo: units, RateRepo: rules, BookingRepo: bookings}
	unit, err := factory.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return uow.ContextWithUnitOfWork(context.Background(), unit), rules
}

func TestUpsertRuleCreatesAndRejectsOverlap(t *testing.T) {
	ctx, rules := ruleFixture(t)
	h := &UpsertPricingRuleHandler{Clock: policies.FixedClock{Instant: date(2026, time.February, 1)}}

	res, err := h.Handle(ctx, UpsertPricingRuleCommand{
		CommandID:     "rule-summer",
		UnitID:        "unit-1",
		Label:         "summer peak",
		Start:         date(2026, time.July, 1),
		End:           date(2026, time.August, 31),
		MultiplierPct: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, "rule-summer", res.RuleID)
	assert.True(t, res.Active)

	// A second rule touching the stored span is refused at write time.
	_, err = h.Handle(ctx, UpsertPricingRuleCommand{
		CommandID:     "rule-august",
		UnitID:        "unit-1",
		Label:         "august",
		Start:         date(2026, time.August, 31),
		End:           date(2026, time.September, 15),
		MultiplierPct: 120,
	})
	assert.ErrorIs(t, err, domainrates.ErrRuleOverlap)

	stored, err := rules.ActiveByUnit(ctx, "unit-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestUpsertRuleEditsInPlace(t *testing.T) {
	ctx, rules := ruleFixture(t)
	h := &UpsertPricingRuleHandler{Clock: policies.FixedClock{Instant: date(2026, time.February, 1)}}

	_, err := h.Handle(ctx, UpsertPricingRuleCommand{
		CommandID: "rule-summer", UnitID: "unit-1", Label: "summer peak",
		Start: date(2026, time.July, 1), End: date(2026, time.August, 31), MultiplierPct: 150,
	})
	require.NoError(t, err)

	// Editing shrinks the span; the rule's own stored copy is not an overlap.
	_, err = h.Handle(ctx, UpsertPricingRuleCommand{
		CommandID: "cmd-2", RuleID: "rule-summer", UnitID: "unit-1", Label: "summer peak",
		Start: date(2026, time.July, 10), End: date(2026, time.August, 20), MultiplierPct: 175,
	})
	require.NoError(t, err)

	rule, err := rules.ByID(ctx, "rule-summer")
	require.NoError(t, err)
	assert.Equal(t, int64(175), rule.MultiplierPct)
	assert.Equal(t, date(2026, time.July, 10), rule.Start)
}

func TestUpsertRuleGuardsForeignRules(t *testing.T) {
	ctx, rules := ruleFixture(t)
	foreign, err := domainrates.NewPricingRule(domainrates.RuleParams{
		ID: "rule-foreign", UnitID: "unit-2", Label: "other",
		Start: date(2026, time.July, 1), End: date(2026, time.July, 10),
		MultiplierPct: 120, Now: date(2026, time.January, 1),
	})
	require.NoError(t, err)
	require.NoError(t, rules.Save(ctx, foreign))

	h := &UpsertPricingRuleHandler{Clock: policies.FixedClock{Instant: date(2026, time.February, 1)}}
	_, err = h.Handle(ctx, UpsertPricingRuleCommand{
		CommandID: "cmd-1", RuleID: "rule-foreign", UnitID: "unit-1", Label: "steal",
		Start: date(2026, time.July, 1), End: date(2026, time.July, 10), MultiplierPct: 120,
	})
	assert.ErrorIs(t, err, ErrRuleUnitMismatch)
}

func TestDeactivateRuleFreesTheSpan(t *testing.T) {
	ctx, _ := ruleFixture(t)
	upsert := &UpsertPricingRuleHandler{Clock: policies.FixedClock{Instant: date(2026, time.February, 1)}}
	deactivate := &DeactivatePricingRuleHandler{Clock: policies.FixedClock{Instant: date(2026, time.March, 1)}}

	_, err := upsert.Handle(ctx, UpsertPricingRuleCommand{
		CommandID: "rule-summer", UnitID: "unit-1", Label: "summer peak",
		Start: date(2026, time.July, 1), End: date(2026, time.August, 31), MultiplierPct: 150,
	})
	require.NoError(t, err)

	res, err := deactivate.Handle(ctx, DeactivatePricingRuleCommand{RuleID: "rule-summer"})
	require.NoError(t, err)
	assert.False(t, res.Active)

	// The span is reusable once its old rule is inert.
	_, err = upsert.Handle(ctx, UpsertPricingRuleCommand{
		CommandID: "rule-summer-2", UnitID: "unit-1", Label: "new summer",
		Start: date(2026, time.July, 1), End: date(2026, time.August, 31), MultiplierPct: 140,
	})
	assert.NoError(t, err)
}
