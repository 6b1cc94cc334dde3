package payments

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"stayd/internal/app/policies"
	"stayd/internal/domain/shared/money"
)

// LogGateway is the dev stand-in for the external payment provider. It
// approves every hold and logs the calls a real adapter would make.
type LogGateway struct {
	Logger *slog.Logger
}

func (g LogGateway) PlaceHold(ctx context.Context, reservationID string, amount money.Money) (string, error) {
	holdID := "hold-" + uuid.NewString()
	if g.Logger != nil {
		g.Logger.Info("payment hold placed", "reservation_id", reservationID, "hold_id", holdID, "amount", amount.String())
	}
	return holdID, nil
}

func (g LogGateway) Capture(ctx context.Context, holdID string) error {
	if g.Logger != nil {
		g.Logger.Info("payment captured", "hold_id", holdID)
	}
	return nil
}

func (g LogGateway) Refund(ctx context.Context, reservationID string, amount money.Money) error {
	if g.Logger != nil {
		g.Logger.Info("payment refunded", "reservation_id", reservationID, "amount", amount.String())
	}
	return nil
}

var _ policies.PaymentsPort = LogGateway{}
