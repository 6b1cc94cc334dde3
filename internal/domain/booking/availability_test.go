package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayd/internal/domain/shared/daterange"
)

func heldReservation(t *testing.T, id string, in, out time.Time) *Reservation {
	t.Helper()
	stay, err := daterange.New(in, out)
	require.NoError(t, err)
	r, err := NewReservation(CreateParams{
		ID:          ReservationID(id),
		UnitID:      "unit-1",
		RequesterID: "guest-" + id,
		Range:       stay,
		Guests:      2,
		Price:       testBreakdown(),
		Now:         day(2026, time.May, 1),
	})
	require.NoError(t, err)
	return r
}

func TestCheckAvailabilityHalfOpenBoundaries(t *testing.T) {
	existing := []*Reservation{
		heldReservation(t, "res-a", day(2026, time.June, 10), day(2026, time.June, 15)),
	}

	// Back to back stays share a day without colliding.
	before, err := daterange.New(day(2026, time.June, 5), day(2026, time.June, 10))
	require.NoError(t, err)
	assert.True(t, CheckAvailability(existing, before, "").Available)

	after, err := daterange.New(day(2026, time.June, 15), day(2026, time.June, 18))
	require.NoError(t, err)
	assert.True(t, CheckAvailability(existing, after, "").Available)

	inside, err := daterange.New(day(2026, time.June, 12), day(2026, time.June, 13))
	require.NoError(t, err)
	res := CheckAvailability(existing, inside, "")
	assert.False(t, res.Available)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, ReservationID("res-a"), res.Conflicts[0].ID)
}

func TestCheckAvailabilityIgnoresCancelled(t *testing.T) {
	cancelled := heldReservation(t, "res-a", day(2026, time.June, 10), day(2026, time.June, 15))
	require.NoError(t, cancelled.Cancel("guest request", day(2026, time.May, 2)))

	stay, err := daterange.New(day(2026, time.June, 11), day(2026, time.June, 14))
	require.NoError(t, err)
	assert.True(t, CheckAvailability([]*Reservation{cancelled}, stay, "").Available)
}

func TestCheckAvailabilityExcludesSelf(t *testing.T) {
	self := heldReservation(t, "res-a", day(2026, time.June, 10), day(2026, time.June, 15))

	res := CheckAvailability([]*Reservation{self}, self.Range, "res-a")
	assert.True(t, res.Available)

	res = CheckAvailability([]*Reservation{self}, self.Range, "res-b")
	assert.False(t, res.Available)
}

func TestCheckAvailabilitySortsConflictsByCheckIn(t *testing.T) {
	existing := []*Reservation{
		heldReservation(t, "res-late", day(2026, time.June, 20), day(2026, time.June, 25)),
		heldReservation(t, "res-early", day(2026, time.June, 10), day(2026, time.June, 15)),
	}

	stay, err := daterange.New(day(2026, time.June, 12), day(2026, time.June, 22))
	require.NoError(t, err)
	res := CheckAvailability(existing, stay, "")
	require.Len(t, res.Conflicts, 2)
	assert.Equal(t, ReservationID("res-early"), res.Conflicts[0].ID)
	assert.Equal(t, ReservationID("res-late"), res.Conflicts[1].ID)
}
