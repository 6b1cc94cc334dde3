package booking

import (
	"context"
	"errors"
	"sort"
	"strings"

	"stayd/internal/app/dto"
	handlersupport "stayd/internal/app/handlers/support"
	"stayd/internal/app/queries"
	"stayd/internal/app/uow"
	domainbooking "stayd/internal/domain/booking"
)

const (
	listGuestBookingsKey = "booking.list_by_guest"
	getBookingKey        = "booking.get"
)

type ListGuestBookingsQuery struct {
	RequesterID string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.ReservationCollection, error) {
	requester := strings.TrimSpace(q.RequesterID)
	if requester == "" {
		return dto.ReservationCollection{}, errors.New("requester id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	reservations, err := unit.Bookings().ListByRequester(execCtx, requester)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	items := make([]dto.ReservationSummary, 0, len(reservations))
	for _, r := range reservations {
		items = append(items, dto.MapReservation(r))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return dto.ReservationCollection{Items: items}, nil
}

type GetBookingQuery struct {
	ReservationID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.ReservationSummary, error) {
	id := strings.TrimSpace(q.ReservationID)
	if id == "" {
		return dto.ReservationSummary{}, errors.New("reservation id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationSummary{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	reservation, err := unit.Bookings().ByID(execCtx, domainbooking.ReservationID(id))
	if err != nil {
		return dto.ReservationSummary{}, err
	}
	return dto.MapReservation(reservation), nil
}

var _ queries.Handler[ListGuestBookingsQuery, dto.ReservationCollection] = (*ListGuestBookingsHandler)(nil)
var _ queries.Handler[GetBookingQuery, dto.ReservationSummary] = (*GetBookingHandler)(nil)
