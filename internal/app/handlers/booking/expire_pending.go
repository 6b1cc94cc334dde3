package booking

import (
	"context"
	"log/slog"
	"time"

	"stayd/internal/app/commands"
	"stayd/internal/app/outbox"
	"stayd/internal/app/policies"
	"stayd/internal/app/uow"
	domainbooking "stayd/internal/domain/booking"
	domainunit "stayd/internal/domain/unit"
)

const expirePendingKey = "booking.expire_pending"

type ExpirePendingCommand struct {
	// UnitID narrows the sweep to one unit; empty sweeps all units.
	UnitID string
}

func (c ExpirePendingCommand) Key() string { return expirePendingKey }

type ExpirePendingResult struct {
	Cancelled int `json:"cancelled"`
}

// ExpirePendingHandler cancels pending reservations whose hold window ran
// out without payment. The engine runs no timer of its own; an external
// sweeper invokes this on whatever cadence it likes.
type ExpirePendingHandler struct {
	Clock      policies.Clock
	HoldWindow time.Duration
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *ExpirePendingHandler) Handle(ctx context.Context, cmd ExpirePendingCommand) (*ExpirePendingResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	now := h.clock().Now().UTC()
	cutoff := now.Add(-h.holdWindow())
	stale, err := unit.Bookings().PendingBefore(ctx, cutoff, domainunit.UnitID(cmd.UnitID))
	if err != nil {
		return nil, err
	}

	cancelled := 0
	for _, reservation := range stale {
		if !reservation.HoldExpired(h.holdWindow(), now) {
			continue
		}
		if err := reservation.Cancel(domainbooking.ReasonHoldExpired, now); err != nil {
			return nil, err
		}
		if err := unit.Bookings().Save(ctx, reservation); err != nil {
			return nil, err
		}
		pending := reservation.PendingEvents()
		reservation.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
			return nil, err
		}
		cancelled++
	}

	if h.Logger != nil && cancelled > 0 {
		h.Logger.Info("expired pending reservations cancelled", "count", cancelled, "unit_id", cmd.UnitID)
	}
	return &ExpirePendingResult{Cancelled: cancelled}, nil
}

func (h *ExpirePendingHandler) clock() policies.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return policies.SystemClock{}
}

func (h *ExpirePendingHandler) holdWindow() time.Duration {
	if h.HoldWindow > 0 {
		return h.HoldWindow
	}
	return 30 * time.Minute
}

func (h *ExpirePendingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ExpirePendingCommand, *ExpirePendingResult] = (*ExpirePendingHandler)(nil)
