package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"stayd/internal/app/commands"
	bookinghandlers "stayd/internal/app/handlers/booking"
	"stayd/internal/app/policies"
	"stayd/internal/domain/shared/money"
	"stayd/internal/infra/broker/kafka"
)

const (
	typeCaptured = "payment.captured.v1"
	typeFailed   = "payment.failed.v1"
	typeRefunded = "payment.refunded.v1"
)

// EventConsumer reacts to gateway payment events. A captured payment drives
// the confirm transition; a lost confirm race triggers a refund of the
// captured amount back through the gateway.
type EventConsumer struct {
	Bus     commands.Bus
	Gateway policies.PaymentsPort
	Logger  *slog.Logger
}

type paymentEnvelope struct {
	Type string       `json:"type"`
	Data paymentEvent `json:"data"`
}

type paymentEvent struct {
	ReservationID string `json:"reservation_id"`
	PaymentRef    string `json:"payment_ref"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	Reason        string `json:"reason"`
}

func (c *EventConsumer) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env paymentEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		// Malformed payloads are logged and acked; redelivery cannot fix them.
		if c.Logger != nil {
			c.Logger.Warn("unparseable payment event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
		return nil
	}
	switch env.Type {
	case typeCaptured:
		return c.onCaptured(ctx, env.Data)
	case typeFailed:
		return c.onFailed(ctx, env.Data)
	case typeRefunded:
		if c.Logger != nil {
			c.Logger.Info("refund settled by gateway", "reservation_id", env.Data.ReservationID)
		}
		return nil
	default:
		return nil
	}
}

func (c *EventConsumer) onCaptured(ctx context.Context, ev paymentEvent) error {
	if strings.TrimSpace(ev.ReservationID) == "" {
		return nil
	}
	res, err := commands.Dispatch[bookinghandlers.ConfirmBookingCommand, *bookinghandlers.ConfirmBookingResult](ctx, c.Bus, bookinghandlers.ConfirmBookingCommand{
		ReservationID: ev.ReservationID,
		PaymentRef:    ev.PaymentRef,
	})
	if err != nil {
		return err
	}
	if res.LostRace() {
		return c.refundLoser(ctx, ev)
	}
	return nil
}

func (c *EventConsumer) onFailed(ctx context.Context, ev paymentEvent) error {
	if strings.TrimSpace(ev.ReservationID) == "" {
		return nil
	}
	_, err := commands.Dispatch[bookinghandlers.CancelBookingCommand, *bookinghandlers.CancelBookingResult](ctx, c.Bus, bookinghandlers.CancelBookingCommand{
		ReservationID: ev.ReservationID,
		Reason:        "payment_failed",
	})
	return err
}

func (c *EventConsumer) refundLoser(ctx context.Context, ev paymentEvent) error {
	if c.Gateway == nil {
		return nil
	}
	amount := money.Money{Amount: ev.AmountCents, Currency: ev.Currency}
	if err := c.Gateway.Refund(ctx, ev.ReservationID, amount); err != nil {
		return err
	}
	if c.Logger != nil {
		c.Logger.Info("lost-race reservation refunded", "reservation_id", ev.ReservationID, "amount", amount.String())
	}
	return nil
}

var _ kafka.MessageHandler = (*EventConsumer)(nil)
