package booking

import (
	"context"
	"log/slog"
	"strings"

	"stayd/internal/app/commands"
	"stayd/internal/app/outbox"
	"stayd/internal/app/policies"
	"stayd/internal/app/uow"
	domainbooking "stayd/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	ReservationID string
	Reason        string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Reason        string `json:"reason,omitempty"`
}

// CancelBookingHandler releases a reservation's date range. Cancelling a
// reservation that is already cancelled returns its current state without
// error so retries are harmless.
type CancelBookingHandler struct {
	Clock   policies.Clock
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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
	alreadyCancelled := reservation.Status == domainbooking.StatusCancelled

	now := h.clock().Now().UTC()
	if err := reservation.Cancel(cmd.Reason, now); err != nil {
		return nil, err
	}
	if !alreadyCancelled {
		if err := unit.Bookings().Save(ctx, reservation); err != nil {
			return nil, err
		}
		pending := reservation.PendingEvents()
		reservation.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
			return nil, err
		}
		if h.Logger != nil {
			h.Logger.Info("reservation cancelled",
				"reservation_id", reservation.ID, "unit_id", reservation.UnitID, "reason", reservation.CancelReason)
		}
	}

	return &CancelBookingResult{
		ReservationID: string(reservation.ID),
		Status:        string(reservation.Status),
		PaymentStatus: string(reservation.Payment),
		Reason:        reservation.CancelReason,
	}, nil
}

func (h *CancelBookingHandler) clock() policies.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return policies.SystemClock{}
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
