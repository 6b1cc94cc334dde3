package pricing

import (
	"time"

	"stayd/internal/domain/rates"
	"stayd/internal/domain/shared/money"
	"stayd/internal/domain/unit"
)

// Quote is a breakdown plus the window during which it may be reused
// without re-validation. The window mirrors the pending-booking hold.
type Quote struct {
	Breakdown  Breakdown `json:"breakdown"`
	ValidUntil time.Time `json:"valid_until"`
}

// Calculate produces the deterministic price breakdown for a stay:
//
//	subtotal     = sum of the effective nightly rates
//	cleaning fee = unit base cleaning fee x max(1, ceil(guests/2))
//	service fee  = configured percent of subtotal
//	taxes        = configured percent of (subtotal+cleaning+service)
//	               plus the flat per-stay tourist tax
//
// Everything is integer minor-unit arithmetic, so identical inputs always
// yield an identical breakdown. The function is read-only and safe to call
// speculatively for live previews.
func Calculate(u *unit.RentalUnit, schedule []rates.NightRate, guests int) (Breakdown, error) {
	if len(schedule) == 0 {
		return Breakdown{}, ErrEmptySchedule
	}
	if guests <= 0 {
		return Breakdown{}, ErrInvalidGuests
	}

	subtotal := money.Zero(u.Currency)
	for _, night := range schedule {
		sum, err := subtotal.Add(night.Rate)
		if err != nil {
			return Breakdown{}, err
		}
		subtotal = sum
	}

	cleaning := u.CleaningFee().Multiply(cleaningMultiplier(guests))
	service := subtotal.Percent(u.ServiceFeePct)

	taxable := subtotal.Amount + cleaning.Amount + service.Amount
	taxes := money.Money{Amount: taxable, Currency: u.Currency}.Percent(u.TaxPct)
	taxes.Amount += u.TouristTaxCents

	total := money.Money{
		Amount:   subtotal.Amount + cleaning.Amount + service.Amount + taxes.Amount,
		Currency: u.Currency,
	}

	b := Breakdown{
		NightlyRate: money.Money{Amount: subtotal.Amount / int64(len(schedule)), Currency: u.Currency},
		Nights:      len(schedule),
		Subtotal:    subtotal,
		CleaningFee: cleaning,
		ServiceFee:  service,
		Taxes:       taxes,
		Total:       total,
	}
	if err := b.Validate(); err != nil {
		return Breakdown{}, err
	}
	return b, nil
}

// cleaningMultiplier scales the per-stay cleaning fee with expected mess:
// one multiple per started pair of guests, never less than one.
func cleaningMultiplier(guests int) int64 {
	m := int64((guests + 1) / 2)
	if m < 1 {
		m = 1
	}
	return m
}
