package pricing

import (
	"errors"

	"stayd/internal/domain/shared/money"
)

var (
	ErrEmptySchedule = errors.New("pricing: rate schedule must cover at least one night")
	ErrInvalidGuests = errors.New("pricing: guests count must be positive")
	ErrSumMismatch   = errors.New("pricing: breakdown components do not sum to total")
)

// toleranceCents is the rounding slack allowed by the sum invariant.
const toleranceCents = 1

// Breakdown is the itemized price of a stay. It is computed once at booking
// time and persisted as an immutable snapshot; later reads never recompute
// it. All amounts share one currency and are integer minor units.
type Breakdown struct {
	NightlyRate money.Money `json:"nightly_rate" bson:"nightly_rate"`
	Nights      int         `json:"nights" bson:"nights"`
	Subtotal    money.Money `json:"subtotal" bson:"subtotal"`
	CleaningFee money.Money `json:"cleaning_fee" bson:"cleaning_fee"`
	ServiceFee  money.Money `json:"service_fee" bson:"service_fee"`
	Taxes       money.Money `json:"taxes" bson:"taxes"`
	Total       money.Money `json:"total" bson:"total"`
}

// Validate checks the sum invariant: subtotal + cleaning + service + taxes
// must equal total within one minor unit.
func (b Breakdown) Validate() error {
	if b.Nights <= 0 {
		return ErrEmptySchedule
	}
	sum := b.Subtotal.Amount + b.CleaningFee.Amount + b.ServiceFee.Amount + b.Taxes.Amount
	diff := sum - b.Total.Amount
	if diff < -toleranceCents || diff > toleranceCents {
		return ErrSumMismatch
	}
	return nil
}

// Currency returns the breakdown currency.
func (b Breakdown) Currency() string {
	return b.Total.Currency
}
