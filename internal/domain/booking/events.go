package booking

import (
	"time"

	"stayd/internal/domain/shared/daterange"
	"stayd/internal/domain/shared/money"
	"stayd/internal/domain/unit"
)

type ReservationRequested struct {
	ReservationID ReservationID
	UnitID        unit.UnitID
	RequesterID   string
	Range         daterange.DateRange
	Guests        int
	Total         money.Money
	At            time.Time
}

func (e ReservationRequested) EventName() string     { return "reservation.requested" }
func (e ReservationRequested) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRequested) OccurredAt() time.Time { return e.At }

type ReservationConfirmed struct {
	ReservationID ReservationID
	UnitID        unit.UnitID
	Range         daterange.DateRange
	Total         money.Money
	At            time.Time
}

func (e ReservationConfirmed) EventName() string     { return "reservation.confirmed" }
func (e ReservationConfirmed) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationConfirmed) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ReservationID ReservationID
	UnitID        unit.UnitID
	Range         daterange.DateRange
	Reason        string
	At            time.Time
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }

type PaymentCaptured struct {
	ReservationID ReservationID
	Total         money.Money
	At            time.Time
}

func (e PaymentCaptured) EventName() string     { return "reservation.payment_captured" }
func (e PaymentCaptured) AggregateID() string   { return string(e.ReservationID) }
func (e PaymentCaptured) OccurredAt() time.Time { return e.At }

type PaymentRefundedEvent struct {
	ReservationID ReservationID
	Total         money.Money
	At            time.Time
}

func (e PaymentRefundedEvent) EventName() string     { return "reservation.payment_refunded" }
func (e PaymentRefundedEvent) AggregateID() string   { return string(e.ReservationID) }
func (e PaymentRefundedEvent) OccurredAt() time.Time { return e.At }
