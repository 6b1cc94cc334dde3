package dto

import (
	"time"

	domainbooking "stayd/internal/domain/booking"
	domainpricing "stayd/internal/domain/pricing"
	"stayd/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type BreakdownDTO struct {
	NightlyRate MoneyDTO `json:"nightly_rate"`
	Nights      int      `json:"nights"`
	Subtotal    MoneyDTO `json:"subtotal"`
	CleaningFee MoneyDTO `json:"cleaning_fee"`
	ServiceFee  MoneyDTO `json:"service_fee"`
	Taxes       MoneyDTO `json:"taxes"`
	Total       MoneyDTO `json:"total"`
}

type QuoteDTO struct {
	Breakdown  BreakdownDTO `json:"breakdown"`
	ValidUntil time.Time    `json:"valid_until"`
}

type ReservationSummary struct {
	ID              string       `json:"id"`
	UnitID          string       `json:"unit_id"`
	RequesterID     string       `json:"requester_id"`
	CheckIn         time.Time    `json:"check_in"`
	CheckOut        time.Time    `json:"check_out"`
	Guests          int          `json:"guests"`
	Status          string       `json:"status"`
	PaymentStatus   string       `json:"payment_status"`
	Reference       string       `json:"reference"`
	Price           BreakdownDTO `json:"price"`
	SpecialRequests string       `json:"special_requests,omitempty"`
	CancelReason    string       `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type ReservationCollection struct {
	Items []ReservationSummary `json:"items"`
}

type AvailabilityDTO struct {
	Available bool                 `json:"available"`
	Conflicts []ReservationSummary `json:"conflicts"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

func MapBreakdown(b domainpricing.Breakdown) BreakdownDTO {
	return BreakdownDTO{
		NightlyRate: MapMoney(b.NightlyRate),
		Nights:      b.Nights,
		Subtotal:    MapMoney(b.Subtotal),
		CleaningFee: MapMoney(b.CleaningFee),
		ServiceFee:  MapMoney(b.ServiceFee),
		Taxes:       MapMoney(b.Taxes),
		Total:       MapMoney(b.Total),
	}
}

func MapQuote(q domainpricing.Quote) QuoteDTO {
	return QuoteDTO{Breakdown: MapBreakdown(q.Breakdown), ValidUntil: q.ValidUntil}
}

func MapReservation(r *domainbooking.Reservation) ReservationSummary {
	return ReservationSummary{
		ID:              string(r.ID),
		UnitID:          string(r.UnitID),
		RequesterID:     r.RequesterID,
		CheckIn:         r.Range.CheckIn,
		CheckOut:        r.Range.CheckOut,
		Guests:          r.Guests,
		Status:          string(r.Status),
		PaymentStatus:   string(r.Payment),
		Reference:       r.Reference,
		Price:           MapBreakdown(r.Price),
		SpecialRequests: r.SpecialRequests,
		CancelReason:    r.CancelReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func MapAvailability(result domainbooking.AvailabilityResult) AvailabilityDTO {
	conflicts := make([]ReservationSummary, 0, len(result.Conflicts))
	for _, c := range result.Conflicts {
		conflicts = append(conflicts, MapReservation(c))
	}
	return AvailabilityDTO{Available: result.Available, Conflicts: conflicts}
}
