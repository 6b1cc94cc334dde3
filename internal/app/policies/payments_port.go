package policies

import (
	"context"

	"stayd/internal/domain/shared/money"
)

// PaymentsPort is the external payment gateway collaborator. The engine
// never implements capture logic; it only reacts to the final authorized
// amount/status the gateway reports.
type PaymentsPort interface {
	PlaceHold(ctx context.Context, reservationID string, amount money.Money) (string, error)
	Capture(ctx context.Context, holdID string) error
	Refund(ctx context.Context, reservationID string, amount money.Money) error
}
