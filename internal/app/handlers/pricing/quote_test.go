package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayd/internal/app/policies"
	domainrates "stayd/internal/domain/rates"
	domainunit "stayd/internal/domain/unit"
	"stayd/internal/infra/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func quoteFixture(t *testing.T) (memory.Factory, *memory.RuleRepository) {
	t.Helper()
	units := memory.NewUnitRepository()
	rules := memory.NewRuleRepository()
	bookings := memory.NewReservationRepository()

	u, err := domainunit.NewRentalUnit(domainunit.CreateParams{
		ID:               "unit-1",
		Owner:            "owner-1",
		Name:             "Casbah View Apartment",
		Currency:         "DZD",
		BaseRateCents:    850000,
		CleaningFeeCents: 150000,
		ServiceFeePct:    10,
		TaxPct:           19,
		TouristTaxCents:  500,
		MaxGuests:        4,
		Now:              date(2026, time.January, 1),
	})
	require.NoError(t, err)
	require.NoError(t, units.Save(context.Background(), u))

	return memory.Factory{UnitRepo: units, RateRepo: rules, BookingRepo: bookings}, rules
}

func TestQuoteBaseRateStay(t *testing.T) {
	factory, _ := quoteFixture(t)
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	h := &QuotePriceHandler{
		UoWFactory: factory,
		Clock:      policies.FixedClock{Instant: now},
		HoldWindow: 30 * time.Minute,
	}

	quote, err := h.Handle(context.Background(), QuotePriceQuery{
		UnitID:   "unit-1",
		CheckIn:  date(2026, time.March, 10),
		CheckOut: date(2026, time.March, 13),
		Guests:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, quote.Breakdown.Nights)
	assert.Equal(t, int64(2550000), quote.Breakdown.Subtotal.Amount)
	assert.Equal(t, int64(3516950), quote.Breakdown.Total.Amount)
	assert.Equal(t, "DZD", quote.Breakdown.Total.Currency)
	assert.Equal(t, now.Add(30*time.Minute), quote.ValidUntil)
}

func TestQuoteAppliesSeasonalRule(t *testing.T) {
	factory, rules := quoteFixture(t)
	rule, err := domainrates.NewPricingRule(domainrates.RuleParams{
		ID:            "rule-summer",
		UnitID:        "unit-1",
		Label:         "summer peak",
		Start:         date(2026, time.July, 1),
		End:           date(2026, time.August, 31),
		MultiplierPct: 150,
		Now:           date(2026, time.January, 1),
	})
	require.NoError(t, err)
	require.NoError(t, rules.Save(context.Background(), rule))

	h := &QuotePriceHandler{
		UoWFactory: factory,
		Clock:      policies.FixedClock{Instant: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)},
	}

	// June 30th at base rate, July 1st and 2nd at 1.5x.
	quote, err := h.Handle(context.Background(), QuotePriceQuery{
		UnitID:   "unit-1",
		CheckIn:  date(2026, time.June, 30),
		CheckOut: date(2026, time.July, 3),
		Guests:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(850000+1275000+1275000), quote.Breakdown.Subtotal.Amount)
}

func TestQuoteDoesNotReserveAnything(t *testing.T) {
	factory, _ := quoteFixture(t)
	h := &QuotePriceHandler{UoWFactory: factory}

	q := QuotePriceQuery{
		UnitID:   "unit-1",
		CheckIn:  date(2026, time.March, 10),
		CheckOut: date(2026, time.March, 13),
		Guests:   2,
	}
	first, err := h.Handle(context.Background(), q)
	require.NoError(t, err)
	second, err := h.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first.Breakdown, second.Breakdown)
}

func TestQuoteUnknownUnit(t *testing.T) {
	factory, _ := quoteFixture(t)
	h := &QuotePriceHandler{UoWFactory: factory}

	_, err := h.Handle(context.Background(), QuotePriceQuery{
		UnitID:   "missing",
		CheckIn:  date(2026, time.March, 10),
		CheckOut: date(2026, time.March, 13),
		Guests:   2,
	})
	assert.ErrorIs(t, err, domainunit.ErrNotFound)
}
