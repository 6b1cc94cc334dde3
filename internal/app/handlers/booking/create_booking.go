package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayd/internal/app/commands"
	"stayd/internal/app/middleware"
	"stayd/internal/app/outbox"
	"stayd/internal/app/policies"
	"stayd/internal/app/uow"
	domainbooking "stayd/internal/domain/booking"
	domainpricing "stayd/internal/domain/pricing"
	domainrates "stayd/internal/domain/rates"
	domainrange "stayd/internal/domain/shared/daterange"
	domainunit "stayd/internal/domain/unit"
)

const createBookingKey = "booking.create"

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

type CreateBookingCommand struct {
	CommandID       string
	UnitID          string
	RequesterID     string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	Guest           domainbooking.GuestInfo
	SpecialRequests string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

// Validate rejects structurally broken requests before any middleware or
// storage work happens. Range and guest-capacity checks need unit data and
// stay in the handler.
func (c CreateBookingCommand) Validate() error {
	if strings.TrimSpace(c.UnitID) == "" {
		return domainbooking.NewValidationError("unit_id", "is required")
	}
	if strings.TrimSpace(c.RequesterID) == "" {
		return domainbooking.NewValidationError("requester_id", "is required")
	}
	if c.Guests < 1 {
		return domainbooking.NewValidationError("guests", "must be at least 1")
	}
	return nil
}

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	ReservationID string    `json:"reservation_id"`
	Reference     string    `json:"reference"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	ValidUntil    time.Time `json:"valid_until"`
}

// CreateBookingHandler validates the request, checks availability, prices
// the stay and persists a pending reservation. Creation is all-or-nothing:
// a failed step leaves no partial write behind.
type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	HoldWindow time.Duration
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := h.clock().Now().UTC()

	stay, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, domainbooking.NewValidationError("dates", err.Error())
	}
	if stay.CheckIn.Before(domainrange.Day(now)) {
		return nil, domainbooking.NewValidationError("check_in", "date is in the past")
	}
	if strings.TrimSpace(cmd.RequesterID) == "" {
		return nil, domainbooking.NewValidationError("requester_id", "is required")
	}

	rental, err := unit.Units().ByID(ctx, domainunit.UnitID(cmd.UnitID))
	if err != nil {
		return nil, err
	}
	if cmd.Guests < 1 || cmd.Guests > rental.MaxGuests {
		return nil, domainbooking.NewValidationError("guests", fmt.Sprintf("must be between 1 and %d", rental.MaxGuests))
	}

	active, err := unit.Bookings().ActiveByUnit(ctx, rental.ID)
	if err != nil {
		return nil, err
	}
	check := domainbooking.CheckAvailability(active, stay, "")
	if !check.Available {
		return nil, &domainbooking.ConflictError{UnitID: rental.ID, Conflicts: check.Conflicts}
	}

	rules, err := unit.Rates().ActiveByUnit(ctx, rental.ID)
	if err != nil {
		return nil, err
	}
	schedule, err := domainrates.ResolveSchedule(rental, rules, stay)
	if err != nil {
		return nil, err
	}
	breakdown, err := domainpricing.Calculate(rental, schedule, cmd.Guests)
	if err != nil {
		return nil, err
	}

	reservation, err := domainbooking.NewReservation(domainbooking.CreateParams{
		ID:              domainbooking.ReservationID(cmd.CommandID),
		UnitID:          rental.ID,
		RequesterID:     cmd.RequesterID,
		Range:           stay,
		Guests:          cmd.Guests,
		Price:           breakdown,
		Guest:           cmd.Guest,
		SpecialRequests: cmd.SpecialRequests,
		Reference:       newReference(),
		Now:             now,
	})
	if err != nil {
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

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CreateBookingResult{
		ReservationID: string(reservation.ID),
		Reference:     reservation.Reference,
		Status:        string(reservation.Status),
		PaymentStatus: string(reservation.Payment),
		TotalCents:    reservation.Price.Total.Amount,
		Currency:      reservation.Price.Currency(),
		ValidUntil:    now.Add(h.holdWindow()),
	}, nil
}

func (h *CreateBookingHandler) clock() policies.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return policies.SystemClock{}
}

func (h *CreateBookingHandler) holdWindow() time.Duration {
	if h.HoldWindow > 0 {
		return h.HoldWindow
	}
	return 30 * time.Minute
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func newReference() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
