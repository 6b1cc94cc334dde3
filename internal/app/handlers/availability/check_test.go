package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "stayd/internal/domain/booking"
	domainpricing "stayd/internal/domain/pricing"
	domainrange "stayd/internal/domain/shared/daterange"
	"stayd/internal/domain/shared/money"
	domainunit "stayd/internal/domain/unit"
	"stayd/internal/infra/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkFixture(t *testing.T) (memory.Factory, *memory.ReservationRepository) {
	t.Helper()
	units := memory.NewUnitRepository()
	rules := memory.NewRuleRepository()
	bookings := memory.NewReservationRepository()

	u, err := domainunit.NewRentalUnit(domainunit.CreateParams{
		ID: "unit-1", Owner: "owner-1", Name: "Oran Seafront Studio",
		Currency: "DZD", BaseRateCents: 850000, MaxGuests: 2,
		Now: date(2026, time.January, 1),
	})
	require.NoError(t, err)
	require.NoError(t, units.Save(context.Background(), u))

	return memory.Factory{UnitRepo: units, RateRepo: rules, BookingRepo: bookings}, bookings
}

func seedHold(t *testing.T, repo *memory.ReservationRepository, id string, in, out time.Time) {
	t.Helper()
	stay, err := domainrange.New(in, out)
	require.NoError(t, err)
	nightly := money.Must(850000, "DZD")
	subtotal := money.Must(850000*int64(stay.Nights()), "DZD")
	r, err := domainbooking.NewReservation(domainbooking.CreateParams{
		ID:          domainbooking.ReservationID(id),
		UnitID:      "unit-1",
		RequesterID: "guest-" + id,
		Range:       stay,
		Guests:      2,
		Price: domainpricing.Breakdown{
			NightlyRate: nightly,
			Nights:      stay.Nights(),
			Subtotal:    subtotal,
			CleaningFee: money.Zero("DZD"),
			ServiceFee:  money.Zero("DZD"),
			Taxes:       money.Zero("DZD"),
			Total:       subtotal,
		},
		Now: date(2026, time.February, 1),
	})
	require.NoError(t, err)
	r.ClearEvents()
	require.NoError(t, repo.Save(context.Background(), r))
}

func TestCheckReportsConflictsAsData(t *testing.T) {
	factory, bookings := checkFixture(t)
	seedHold(t, bookings, "res-1", date(2026, time.June, 10), date(2026, time.June, 15))
	h := &CheckAvailabilityHandler{UoWFactory: factory}

	res, err := h.Handle(context.Background(), CheckAvailabilityQuery{
		UnitID:   "unit-1",
		CheckIn:  date(2026, time.June, 12),
		CheckOut: date(2026, time.June, 14),
	})
	require.NoError(t, err)
	assert.False(t, res.Available)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "res-1", res.Conflicts[0].ID)
	assert.Equal(t, date(2026, time.June, 10), res.Conflicts[0].CheckIn)
}

func TestCheckBackToBackStaysAreFree(t *testing.T) {
	factory, bookings := checkFixture(t)
	seedHold(t, bookings, "res-1", date(2026, time.June, 10), date(2026, time.June, 15))
	h := &CheckAvailabilityHandler{UoWFactory: factory}

	res, err := h.Handle(context.Background(), CheckAvailabilityQuery{
		UnitID:   "unit-1",
		CheckIn:  date(2026, time.June, 15),
		CheckOut: date(2026, time.June, 18),
	})
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Empty(t, res.Conflicts)
}

func TestCheckExcludesOwnReservation(t *testing.T) {
	factory, bookings := checkFixture(t)
	seedHold(t, bookings, "res-1", date(2026, time.June, 10), date(2026, time.June, 15))
	h := &CheckAvailabilityHandler{UoWFactory: factory}

	res, err := h.Handle(context.Background(), CheckAvailabilityQuery{
		UnitID:               "unit-1",
		CheckIn:              date(2026, time.June, 10),
		CheckOut:             date(2026, time.June, 15),
		ExcludeReservationID: "res-1",
	})
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestCheckUnknownUnit(t *testing.T) {
	factory, _ := checkFixture(t)
	h := &CheckAvailabilityHandler{UoWFactory: factory}

	_, err := h.Handle(context.Background(), CheckAvailabilityQuery{
		UnitID:   "missing",
		CheckIn:  date(2026, time.June, 10),
		CheckOut: date(2026, time.June, 12),
	})
	assert.ErrorIs(t, err, domainunit.ErrNotFound)
}

func TestCheckRejectsEmptyRange(t *testing.T) {
	factory, _ := checkFixture(t)
	h := &CheckAvailabilityHandler{UoWFactory: factory}

	_, err := h.Handle(context.Background(), CheckAvailabilityQuery{
		UnitID:   "unit-1",
		CheckIn:  date(2026, time.June, 10),
		CheckOut: date(2026, time.June, 10),
	})
	var verr *domainbooking.ValidationError
	assert.ErrorAs(t, err, &verr)
}
