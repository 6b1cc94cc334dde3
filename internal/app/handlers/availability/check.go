package availability

import (
	"context"
	"time"

	"stayd/internal/app/dto"
	handlersupport "stayd/internal/app/handlers/support"
	"stayd/internal/app/queries"
	"stayd/internal/app/uow"
	domainbooking "stayd/internal/domain/booking"
	domainrange "stayd/internal/domain/shared/daterange"
	domainunit "stayd/internal/domain/unit"
)

const checkAvailabilityKey = "availability.check"

type CheckAvailabilityQuery struct {
	UnitID   string
	CheckIn  time.Time
	CheckOut time.Time
	// ExcludeReservationID lets a re-validation skip the reservation it
	// belongs to, e.g. when re-checking before confirmation.
	ExcludeReservationID string
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

// CheckAvailabilityHandler is a pure read: conflicts come back as data so
// callers can suggest alternative dates.
type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.AvailabilityDTO, error) {
	stay, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.AvailabilityDTO{}, domainbooking.NewValidationError("dates", err.Error())
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AvailabilityDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Ensure the unit exists before reporting an empty calendar as free.
	if _, err := unit.Units().ByID(execCtx, domainunit.UnitID(q.UnitID)); err != nil {
		return dto.AvailabilityDTO{}, err
	}
	active, err := unit.Bookings().ActiveByUnit(execCtx, domainunit.UnitID(q.UnitID))
	if err != nil {
		return dto.AvailabilityDTO{}, err
	}
	result := domainbooking.CheckAvailability(active, stay, domainbooking.ReservationID(q.ExcludeReservationID))
	return dto.MapAvailability(result), nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.AvailabilityDTO] = (*CheckAvailabilityHandler)(nil)
