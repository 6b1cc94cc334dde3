package dto

import (
	"time"

	domainunit "stayd/internal/domain/unit"
)

type UnitSummary struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Name             string    `json:"name"`
	Currency         string    `json:"currency"`
	BaseRateCents    int64     `json:"base_rate_cents"`
	CleaningFeeCents int64     `json:"cleaning_fee_cents"`
	ServiceFeePct    int64     `json:"service_fee_pct"`
	TaxPct           int64     `json:"tax_pct"`
	TouristTaxCents  int64     `json:"tourist_tax_cents"`
	MaxGuests        int       `json:"max_guests"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type UnitCollection struct {
	Items []UnitSummary `json:"items"`
}

func MapUnit(u *domainunit.RentalUnit) UnitSummary {
	return UnitSummary{
		ID:               string(u.ID),
		OwnerID:          string(u.Owner),
		Name:             u.Name,
		Currency:         u.Currency,
		BaseRateCents:    u.BaseRateCents,
		CleaningFeeCents: u.CleaningFeeCents,
		ServiceFeePct:    u.ServiceFeePct,
		TaxPct:           u.TaxPct,
		TouristTaxCents:  u.TouristTaxCents,
		MaxGuests:        u.MaxGuests,
		Status:           string(u.Status),
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
