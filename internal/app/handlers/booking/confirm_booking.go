package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"stayd/internal/app/commands"
	"stayd/internal/app/outbox"
	"stayd/internal/app/policies"
	"stayd/internal/app/uow"
	domainbooking "stayd/internal/domain/booking"
)

const confirmBookingKey = "booking.confirm"

// lockTTL bounds the confirm critical section so a crashed process cannot
// wedge a unit's calendar.
const lockTTL = 10 * time.Second

type ConfirmBookingCommand struct {
	ReservationID string
	PaymentRef    string
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

type ConfirmBookingResult struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	CancelReason  string `json:"cancel_reason,omitempty"`
	WinnerID      string `json:"winner_id,omitempty"`
}

// LostRace reports whether the confirm attempt lost to a competing
// reservation that was confirmed first.
func (r *ConfirmBookingResult) LostRace() bool { return r.WinnerID != "" }

// ConfirmBookingHandler performs the authoritative availability re-check at
// the moment of resource commitment. Two racing pending reservations both
// pass creation; only the first one through this handler wins. The loser
// is cancelled with a lost-race reason and must be refunded. Losing is a
// committed outcome, not a failure: the result carries the winner so the
// cancellation write survives the surrounding transaction.
type ConfirmBookingHandler struct {
	Locker  policies.UnitLocker
	Clock   policies.Clock
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*ConfirmBookingResult, error) {
	id := strings.TrimSpace(cmd.ReservationID)
	if id == "" {
		return nil, domainbooking.NewValidationError("reservation_id", "is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	reservation, err := unit.Bookings().ByID(ctx, domainbooking.ReservationID(id))
	if err != nil {
		return nil, err
	}
	if reservation.Status == domainbooking.StatusConfirmed {
		return resultFor(reservation), nil
	}

	release, err := h.Locker.Acquire(ctx, string(reservation.UnitID), lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	now := h.clock().Now().UTC()
	if err := reservation.MarkPaid(now); err != nil {
		return nil, err
	}

	active, err := unit.Bookings().ActiveByUnit(ctx, reservation.UnitID)
	if err != nil {
		return nil, err
	}
	check := domainbooking.CheckAvailability(active, reservation.Range, reservation.ID)
	if winner := firstConfirmed(check.Conflicts); winner != nil {
		if err := reservation.Cancel(domainbooking.ReasonLostRace, now); err != nil {
			return nil, err
		}
		if err := h.persist(ctx, unit, reservation); err != nil {
			return nil, err
		}
		if h.Logger != nil {
			h.Logger.Warn("reservation lost confirm race",
				"reservation_id", reservation.ID, "winner_id", winner.ID, "unit_id", reservation.UnitID)
		}
		res := resultFor(reservation)
		res.WinnerID = string(winner.ID)
		return res, nil
	}

	if err := reservation.Confirm(now); err != nil {
		return nil, err
	}
	if err := h.persist(ctx, unit, reservation); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("reservation confirmed", "reservation_id", reservation.ID, "unit_id", reservation.UnitID)
	}
	return resultFor(reservation), nil
}

func (h *ConfirmBookingHandler) persist(ctx context.Context, unit uow.UnitOfWork, r *domainbooking.Reservation) error {
	if err := unit.Bookings().Save(ctx, r); err != nil {
		return err
	}
	pending := r.PendingEvents()
	r.ClearEvents()
	return outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending)
}

func (h *ConfirmBookingHandler) clock() policies.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return policies.SystemClock{}
}

func (h *ConfirmBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

// firstConfirmed picks the conflicting reservation that already holds the
// dates authoritatively. Pending conflicts are not winners: whichever side
// confirms first takes the range.
func firstConfirmed(conflicts []*domainbooking.Reservation) *domainbooking.Reservation {
	for _, c := range conflicts {
		if c.Status == domainbooking.StatusConfirmed {
			return c
		}
	}
	return nil
}

func resultFor(r *domainbooking.Reservation) *ConfirmBookingResult {
	return &ConfirmBookingResult{
		ReservationID: string(r.ID),
		Status:        string(r.Status),
		PaymentStatus: string(r.Payment),
		CancelReason:  r.CancelReason,
	}
}

var _ commands.Handler[ConfirmBookingCommand, *ConfirmBookingResult] = (*ConfirmBookingHandler)(nil)
