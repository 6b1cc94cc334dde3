package uow

import (
	"context"

	domainbooking "stayd/internal/domain/booking"
	domainrates "stayd/internal/domain/rates"
	domainunit "stayd/internal/domain/unit"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Units() domainunit.Repository
	Rates() domainrates.RuleRepository
	Bookings() domainbooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
