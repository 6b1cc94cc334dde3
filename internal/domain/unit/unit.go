package unit

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayd/internal/domain/shared/events"
	"stayd/internal/domain/shared/money"
)

var (
	ErrNotFound        = errors.New("unit: not found")
	ErrOwnerRequired   = errors.New("unit: owner is required")
	ErrNameRequired    = errors.New("unit: name is required")
	ErrBaseRate        = errors.New("unit: base nightly rate must be positive")
	ErrMaxGuests       = errors.New("unit: max guests must be at least 1")
	ErrNegativeFee     = errors.New("unit: fees must be non-negative")
	ErrPercentRange    = errors.New("unit: percent rates must be between 0 and 100")
	ErrUnknownStatus   = errors.New("unit: unknown status")
	ErrInvalidCurrency = errors.New("unit: currency code must be 3 letters")
)

type UnitID string
type OwnerID string

// Status is the unit lifecycle. Units are never deleted, only transitioned.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
)

// RentalUnit is a bookable property together with its rate catalog: the
// base nightly rate and the fee/tax structure every quote is derived from.
type RentalUnit struct {
	ID       UnitID
	Owner    OwnerID
	Name     string
	Currency string

	// Rate catalog. Amounts are minor units, percents whole numbers.
	BaseRateCents    int64
	CleaningFeeCents int64
	ServiceFeePct    int64
	TaxPct           int64
	TouristTaxCents  int64

	MaxGuests int
	Status    Status

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id UnitID) (*RentalUnit, error)
	Save(ctx context.Context, u *RentalUnit) error
	ListByOwner(ctx context.Context, owner OwnerID) ([]*RentalUnit, error)
}

type CreateParams struct {
	ID               UnitID
	Owner            OwnerID
	Name             string
	Currency         string
	BaseRateCents    int64
	CleaningFeeCents int64
	ServiceFeePct    int64
	TaxPct           int64
	TouristTaxCents  int64
	MaxGuests        int
	Now              time.Time
}

func NewRentalUnit(params CreateParams) (*RentalUnit, error) {
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if len(params.Currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	if params.BaseRateCents <= 0 {
		return nil, ErrBaseRate
	}
	if params.MaxGuests < 1 {
		return nil, ErrMaxGuests
	}
	if params.CleaningFeeCents < 0 || params.TouristTaxCents < 0 {
		return nil, ErrNegativeFee
	}
	if params.ServiceFeePct < 0 || params.ServiceFeePct > 100 || params.TaxPct < 0 || params.TaxPct > 100 {
		return nil, ErrPercentRange
	}
	now := params.Now.UTC()
	u := &RentalUnit{
		ID:               params.ID,
		Owner:            params.Owner,
		Name:             strings.TrimSpace(params.Name),
		Currency:         strings.ToUpper(params.Currency),
		BaseRateCents:    params.BaseRateCents,
		CleaningFeeCents: params.CleaningFeeCents,
		ServiceFeePct:    params.ServiceFeePct,
		TaxPct:           params.TaxPct,
		TouristTaxCents:  params.TouristTaxCents,
		MaxGuests:        params.MaxGuests,
		Status:           StatusAvailable,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	u.Record(UnitCreated{UnitID: u.ID, Owner: u.Owner, At: now})
	return u, nil
}

// BaseRate returns the base nightly rate as money.
func (u *RentalUnit) BaseRate() money.Money {
	return money.Money{Amount: u.BaseRateCents, Currency: u.Currency}
}

// CleaningFee returns the per-stay base cleaning fee as money.
func (u *RentalUnit) CleaningFee() money.Money {
	return money.Money{Amount: u.CleaningFeeCents, Currency: u.Currency}
}

// TouristTax returns the flat per-stay tax as money.
func (u *RentalUnit) TouristTax() money.Money {
	return money.Money{Amount: u.TouristTaxCents, Currency: u.Currency}
}

// SetStatus transitions the unit lifecycle state.
func (u *RentalUnit) SetStatus(status Status, now time.Time) error {
	switch status {
	case StatusAvailable, StatusOccupied, StatusMaintenance:
	default:
		return ErrUnknownStatus
	}
	if u.Status == status {
		return nil
	}
	u.Status = status
	u.UpdatedAt = now.UTC()
	u.Record(UnitStatusChanged{UnitID: u.ID, Status: status, At: u.UpdatedAt})
	return nil
}

type UnitCreated struct {
	UnitID UnitID
	Owner  OwnerID
	At     time.Time
}

func (e UnitCreated) EventName() string     { return "unit.created" }
func (e UnitCreated) AggregateID() string   { return string(e.UnitID) }
func (e UnitCreated) OccurredAt() time.Time { return e.At }

type UnitStatusChanged struct {
	UnitID UnitID
	Status Status
	At     time.Time
}

func (e UnitStatusChanged) EventName() string     { return "unit.status_changed" }
func (e UnitStatusChanged) AggregateID() string   { return string(e.UnitID) }
func (e UnitStatusChanged) OccurredAt() time.Time { return e.At }
