package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayd/internal/domain/pricing"
	"stayd/internal/domain/shared/daterange"
	"stayd/internal/domain/shared/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testBreakdown() pricing.Breakdown {
	return pricing.Breakdown{
		NightlyRate: money.Must(850000, "DZD"),
		Nights:      2,
		Subtotal:    money.Must(1700000, "DZD"),
		CleaningFee: money.Must(150000, "DZD"),
		ServiceFee:  money.Must(170000, "DZD"),
		Taxes:       money.Must(384300, "DZD"),
		Total:       money.Must(2404300, "DZD"),
	}
}

func testReservation(t *testing.T) *Reservation {
	t.Helper()
	stay, err := daterange.New(day(2026, time.June, 10), day(2026, time.June, 12))
	require.NoError(t, err)
	r, err := NewReservation(CreateParams{
		ID:          "res-1",
		UnitID:      "unit-1",
		RequesterID: "guest-1",
		Range:       stay,
		Guests:      2,
		Price:       testBreakdown(),
		Reference:   "BK-TEST0001",
		Now:         day(2026, time.June, 1),
	})
	require.NoError(t, err)
	r.ClearEvents()
	return r
}

func TestNewReservationStartsPendingUnpaid(t *testing.T) {
	stay, err := daterange.New(day(2026, time.June, 10), day(2026, time.June, 12))
	require.NoError(t, err)
	r, err := NewReservation(CreateParams{
		ID:          "res-1",
		UnitID:      "unit-1",
		RequesterID: "guest-1",
		Range:       stay,
		Guests:      2,
		Price:       testBreakdown(),
		Now:         day(2026, time.June, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, PaymentPending, r.Payment)
	assert.True(t, r.HoldsDates())

	events := r.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "reservation.requested", events[0].EventName())
}

func TestConfirmRequiresPayment(t *testing.T) {
	r := testReservation(t)
	now := day(2026, time.June, 2)

	assert.ErrorIs(t, r.Confirm(now), ErrPaymentRequired)

	require.NoError(t, r.MarkPaid(now))
	require.NoError(t, r.Confirm(now))
	assert.Equal(t, StatusConfirmed, r.Status)

	// Confirming twice is an invalid transition.
	assert.ErrorIs(t, r.Confirm(now), ErrInvalidState)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	r := testReservation(t)
	now := day(2026, time.June, 2)

	require.NoError(t, r.MarkPaid(now))
	r.ClearEvents()
	require.NoError(t, r.MarkPaid(now.AddDate(0, 0, 1)))
	assert.Empty(t, r.PendingEvents())
}

func TestCancelIsIdempotentAndKeepsSnapshot(t *testing.T) {
	r := testReservation(t)
	now := day(2026, time.June, 2)
	priceBefore := r.Price

	require.NoError(t, r.Cancel("guest change of plans", now))
	assert.Equal(t, StatusCancelled, r.Status)
	assert.Equal(t, "guest change of plans", r.CancelReason)
	assert.False(t, r.HoldsDates())
	updatedAt := r.UpdatedAt
	r.ClearEvents()

	// Second cancel: same state, no error, no new events, reason untouched.
	require.NoError(t, r.Cancel("different reason", now.AddDate(0, 0, 3)))
	assert.Equal(t, "guest change of plans", r.CancelReason)
	assert.Equal(t, updatedAt, r.UpdatedAt)
	assert.Empty(t, r.PendingEvents())

	assert.Equal(t, priceBefore, r.Price)
}

func TestCancelConfirmedReservation(t *testing.T) {
	r := testReservation(t)
	now := day(2026, time.June, 2)
	require.NoError(t, r.MarkPaid(now))
	require.NoError(t, r.Confirm(now))

	require.NoError(t, r.Cancel(ReasonLostRace, now))
	assert.Equal(t, StatusCancelled, r.Status)
	assert.Equal(t, ReasonLostRace, r.CancelReason)
}

func TestMarkRefundedRequiresPaid(t *testing.T) {
	r := testReservation(t)
	now := day(2026, time.June, 2)

	assert.ErrorIs(t, r.MarkRefunded(now), ErrInvalidState)

	require.NoError(t, r.MarkPaid(now))
	require.NoError(t, r.MarkRefunded(now))
	assert.Equal(t, PaymentRefunded, r.Payment)

	require.NoError(t, r.MarkRefunded(now))
}

func TestHoldExpired(t *testing.T) {
	r := testReservation(t)
	window := 30 * time.Minute
	created := r.CreatedAt

	assert.False(t, r.HoldExpired(window, created.Add(29*time.Minute)))
	assert.True(t, r.HoldExpired(window, created.Add(30*time.Minute)))
	assert.True(t, r.HoldExpired(window, created.Add(2*time.Hour)))

	require.NoError(t, r.MarkPaid(created.Add(time.Minute)))
	assert.False(t, r.HoldExpired(window, created.Add(2*time.Hour)))
}
