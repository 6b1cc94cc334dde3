package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayd/internal/domain/pricing"
	"stayd/internal/domain/shared/daterange"
	"stayd/internal/domain/shared/events"
	"stayd/internal/domain/unit"
)

var (
	ErrNotFound        = errors.New("booking: reservation not found")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrPaymentRequired = errors.New("booking: payment must be settled before confirmation")
)

type ReservationID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Well-known cancellation reasons. Free-form reasons are allowed too.
const (
	ReasonLostRace    = "lost_race"
	ReasonHoldExpired = "hold_expired"
)

// GuestInfo is the contact snapshot captured with the booking request.
// Partial submissions are tolerated; only what was provided is stored.
type GuestInfo struct {
	FullName string `json:"full_name" bson:"full_name"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone" bson:"phone"`
}

// Reservation is a guest's claim on a unit for a date range. The price
// breakdown is a snapshot from booking time and is never recomputed; once
// cancelled the reservation is immutable except for audit metadata.
type Reservation struct {
	ID              ReservationID
	UnitID          unit.UnitID
	RequesterID     string
	Range           daterange.DateRange
	Guests          int
	Price           pricing.Breakdown
	Status          Status
	Payment         PaymentStatus
	Guest           GuestInfo
	SpecialRequests string
	Reference       string
	CancelReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	Save(ctx context.Context, r *Reservation) error
	// ActiveByUnit returns reservations that currently hold dates on the
	// unit, i.e. status pending or confirmed.
	ActiveByUnit(ctx context.Context, unitID unit.UnitID) ([]*Reservation, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*Reservation, error)
	// PendingBefore returns pending, unpaid reservations created at or
	// before the cutoff; a zero unitID means all units.
	PendingBefore(ctx context.Context, cutoff time.Time, unitID unit.UnitID) ([]*Reservation, error)
}

type CreateParams struct {
	ID              ReservationID
	UnitID          unit.UnitID
	RequesterID     string
	Range           daterange.DateRange
	Guests          int
	Price           pricing.Breakdown
	Guest           GuestInfo
	SpecialRequests string
	Reference       string
	Now             time.Time
}

func NewReservation(params CreateParams) (*Reservation, error) {
	if strings.TrimSpace(params.RequesterID) == "" {
		return nil, errors.New("booking: requester id required")
	}
	if params.Guests < 1 {
		return nil, NewValidationError("guests", "must be at least 1")
	}
	if err := params.Price.Validate(); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	r := &Reservation{
		ID:              params.ID,
		UnitID:          params.UnitID,
		RequesterID:     params.RequesterID,
		Range:           params.Range,
		Guests:          params.Guests,
		Price:           params.Price,
		Status:          StatusPending,
		Payment:         PaymentPending,
		Guest:           params.Guest,
		SpecialRequests: strings.TrimSpace(params.SpecialRequests),
		Reference:       params.Reference,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.Record(ReservationRequested{
		ReservationID: r.ID,
		UnitID:        r.UnitID,
		RequesterID:   r.RequesterID,
		Range:         r.Range,
		Guests:        r.Guests,
		Total:         r.Price.Total,
		At:            now,
	})
	return r, nil
}

// HoldsDates reports whether the reservation currently blocks its range on
// the unit's calendar.
func (r *Reservation) HoldsDates() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// MarkPaid records a successful payment capture. Marking an already paid
// reservation is a no-op.
func (r *Reservation) MarkPaid(now time.Time) error {
	if r.Payment == PaymentPaid {
		return nil
	}
	if r.Payment != PaymentPending || r.Status == StatusCancelled {
		return ErrInvalidState
	}
	r.Payment = PaymentPaid
	r.UpdatedAt = now.UTC()
	r.Record(PaymentCaptured{ReservationID: r.ID, Total: r.Price.Total, At: r.UpdatedAt})
	return nil
}

// Confirm flips a paid, pending reservation to confirmed. The caller is
// responsible for the authoritative availability re-check that precedes it.
func (r *Reservation) Confirm(now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidState
	}
	if r.Payment != PaymentPaid {
		return ErrPaymentRequired
	}
	r.Status = StatusConfirmed
	r.UpdatedAt = now.UTC()
	r.Record(ReservationConfirmed{ReservationID: r.ID, UnitID: r.UnitID, Range: r.Range, Total: r.Price.Total, At: r.UpdatedAt})
	return nil
}

// Cancel releases the date range. Cancelling an already cancelled
// reservation is a no-op so the operation stays idempotent. The price
// snapshot is left untouched as a historical record.
func (r *Reservation) Cancel(reason string, now time.Time) error {
	if r.Status == StatusCancelled {
		return nil
	}
	r.Status = StatusCancelled
	r.CancelReason = strings.TrimSpace(reason)
	r.UpdatedAt = now.UTC()
	r.Record(ReservationCancelled{ReservationID: r.ID, UnitID: r.UnitID, Range: r.Range, Reason: r.CancelReason, At: r.UpdatedAt})
	return nil
}

// MarkRefunded records that the external gateway returned the money.
func (r *Reservation) MarkRefunded(now time.Time) error {
	if r.Payment == PaymentRefunded {
		return nil
	}
	if r.Payment != PaymentPaid {
		return ErrInvalidState
	}
	r.Payment = PaymentRefunded
	r.UpdatedAt = now.UTC()
	r.Record(PaymentRefundedEvent{ReservationID: r.ID, Total: r.Price.Total, At: r.UpdatedAt})
	return nil
}

// HoldExpired reports whether a pending, unpaid reservation outlived the
// hold window at the given instant.
func (r *Reservation) HoldExpired(window time.Duration, now time.Time) bool {
	if r.Status != StatusPending || r.Payment != PaymentPending {
		return false
	}
	return !now.Before(r.CreatedAt.Add(window))
}
