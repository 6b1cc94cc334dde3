package memory

import (
	"context"
	"errors"

	"stayd/internal/app/uow"
	domainbooking "stayd/internal/domain/booking"
	domainrates "stayd/internal/domain/rates"
	domainunit "stayd/internal/domain/unit"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	UnitRepo    domainunit.Repository
	RateRepo    domainrates.RuleRepository
	BookingRepo domainbooking.Repository
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.UnitRepo == nil || f.RateRepo == nil || f.BookingRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{units: f.UnitRepo, rates: f.RateRepo, bookings: f.BookingRepo}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	units    domainunit.Repository
	rates    domainrates.RuleRepository
	bookings domainbooking.Repository
}

func (u *Unit) Units() domainunit.Repository       { return u.units }
func (u *Unit) Rates() domainrates.RuleRepository  { return u.rates }
func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Commit(ctx context.Context) error   { return nil }
func (u *Unit) Rollback(ctx context.Context) error { return nil }

var _ uow.UoWFactory = Factory{}
