package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayd/internal/app/middleware"
	domainbooking "stayd/internal/domain/booking"
	domainpricing "stayd/internal/domain/pricing"
	domainrange "stayd/internal/domain/shared/daterange"
	"stayd/internal/domain/shared/money"
	domainunit "stayd/internal/domain/unit"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedReservation(t *testing.T, repo *ReservationRepository, id, requester string, in, out, createdAt time.Time) *domainbooking.Reservation {
	t.Helper()
	stay, err := domainrange.New(in, out)
	require.NoError(t, err)
	r, err := domainbooking.NewReservation(domainbooking.CreateParams{
		ID:          domainbooking.ReservationID(id),
		UnitID:      "unit-1",
		RequesterID: requester,
		Range:       stay,
		Guests:      2,
		Price: domainpricing.Breakdown{
			NightlyRate: money.Must(850000, "DZD"),
			Nights:      stay.Nights(),
			Subtotal:    money.Must(850000*int64(stay.Nights()), "DZD"),
			CleaningFee: money.Zero("DZD"),
			ServiceFee:  money.Zero("DZD"),
			Taxes:       money.Zero("DZD"),
			Total:       money.Must(850000*int64(stay.Nights()), "DZD"),
		},
		Now: createdAt,
	})
	require.NoError(t, err)
	r.ClearEvents()
	require.NoError(t, repo.Save(context.Background(), r))
	return r
}

func TestUnitRepositoryClonesOnReadAndWrite(t *testing.T) {
	repo := NewUnitRepository()
	u, err := domainunit.NewRentalUnit(domainunit.CreateParams{
		ID: "unit-1", Owner: "owner-1", Name: "Oran Studio",
		Currency: "DZD", BaseRateCents: 850000, MaxGuests: 2,
		Now: date(2026, time.January, 1),
	})
	require.NoError(t, err)
	u.ClearEvents()

	require.NoError(t, repo.Save(context.Background(), u))
	assert.Equal(t, int64(1), u.Version)

	loaded, err := repo.ByID(context.Background(), "unit-1")
	require.NoError(t, err)
	loaded.Name = "mutated"

	again, err := repo.ByID(context.Background(), "unit-1")
	require.NoError(t, err)
	assert.Equal(t, "Oran Studio", again.Name)

	_, err = repo.ByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domainunit.ErrNotFound)
}

func TestUnitRepositoryListByOwnerOrdersByCreation(t *testing.T) {
	repo := NewUnitRepository()
	for i, id := range []string{"unit-b", "unit-a"} {
		u, err := domainunit.NewRentalUnit(domainunit.CreateParams{
			ID: domainunit.UnitID(id), Owner: "owner-1", Name: id,
			Currency: "DZD", BaseRateCents: 850000, MaxGuests: 2,
			Now: date(2026, time.January, 1+i),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), u))
	}

	units, err := repo.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, domainunit.UnitID("unit-b"), units[0].ID)

	none, err := repo.ListByOwner(context.Background(), "owner-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReservationRepositoryActiveByUnit(t *testing.T) {
	repo := NewReservationRepository()
	now := date(2026, time.March, 1)
	late := seedReservation(t, repo, "res-late", "g1", date(2026, time.June, 20), date(2026, time.June, 25), now)
	early := seedReservation(t, repo, "res-early", "g2", date(2026, time.June, 10), date(2026, time.June, 15), now)
	gone := seedReservation(t, repo, "res-gone", "g3", date(2026, time.June, 1), date(2026, time.June, 5), now)
	require.NoError(t, gone.Cancel("guest request", now))
	require.NoError(t, repo.Save(context.Background(), gone))

	active, err := repo.ActiveByUnit(context.Background(), "unit-1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, early.ID, active[0].ID)
	assert.Equal(t, late.ID, active[1].ID)
}

func TestReservationRepositoryPendingBefore(t *testing.T) {
	repo := NewReservationRepository()
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	old := seedReservation(t, repo, "res-old", "g1", date(2026, time.June, 10), date(2026, time.June, 12), base)
	seedReservation(t, repo, "res-new", "g2", date(2026, time.June, 20), date(2026, time.June, 22), base.Add(20*time.Minute))

	paid := seedReservation(t, repo, "res-paid", "g3", date(2026, time.June, 25), date(2026, time.June, 27), base)
	require.NoError(t, paid.MarkPaid(base.Add(time.Minute)))
	require.NoError(t, repo.Save(context.Background(), paid))

	stale, err := repo.PendingBefore(context.Background(), base.Add(10*time.Minute), "")
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.ID, stale[0].ID)

	// Narrowing to a different unit matches nothing.
	none, err := repo.PendingBefore(context.Background(), base.Add(10*time.Minute), "unit-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReservationRepositoryListByRequester(t *testing.T) {
	repo := NewReservationRepository()
	base := date(2026, time.March, 1)
	seedReservation(t, repo, "res-1", "guest-1", date(2026, time.June, 10), date(2026, time.June, 12), base)
	seedReservation(t, repo, "res-2", "guest-1", date(2026, time.June, 20), date(2026, time.June, 22), base.Add(time.Hour))
	seedReservation(t, repo, "res-3", "guest-2", date(2026, time.June, 10), date(2026, time.June, 12), base)

	mine, err := repo.ListByRequester(context.Background(), "guest-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// Newest first.
	assert.Equal(t, domainbooking.ReservationID("res-2"), mine[0].ID)

	_, err = repo.ListByRequester(context.Background(), "  ")
	var verr *domainbooking.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestIdempotencyStoreEvictsExpired(t *testing.T) {
	store := NewIdempotencyStore(time.Minute)
	rec := middleware.IdempotencyRecord{
		Key:        "k1",
		Payload:    []byte(`{"ok":true}`),
		OccurredAt: time.Now().Add(-2 * time.Minute),
	}
	require.NoError(t, store.Save(context.Background(), rec))

	_, found, err := store.Get(context.Background(), "k1")
	require.NoError(t, err)
	assert.False(t, found)

	fresh := middleware.IdempotencyRecord{Key: "k2", OccurredAt: time.Now()}
	require.NoError(t, store.Save(context.Background(), fresh))
	got, found, err := store.Get(context.Background(), "k2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "k2", got.Key)
}
