package payments

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayd/internal/app/commands"
	bookinghandlers "stayd/internal/app/handlers/booking"
	domainbooking "stayd/internal/domain/booking"
	"stayd/internal/domain/shared/money"
)

type refundRecorder struct {
	refunds []string
	amounts []money.Money
}

func (r *refundRecorder) PlaceHold(ctx context.Context, reservationID string, amount money.Money) (string, error) {
	return "hold-test", nil
}

func (r *refundRecorder) Capture(ctx context.Context, holdID string) error { return nil }

func (r *refundRecorder) Refund(ctx context.Context, reservationID string, amount money.Money) error {
	r.refunds = append(r.refunds, reservationID)
	r.amounts = append(r.amounts, amount)
	return nil
}

func capturedMessage(payload string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "payment.events.v1", Value: []byte(payload)}
}

func TestCapturedEventDrivesConfirm(t *testing.T) {
	bus := commands.NewInMemoryBus()
	var got bookinghandlers.ConfirmBookingCommand
	commands.RegisterHandler(bus, "booking.confirm",
		commands.HandlerFunc[bookinghandlers.ConfirmBookingCommand, *bookinghandlers.ConfirmBookingResult](
			func(ctx context.Context, cmd bookinghandlers.ConfirmBookingCommand) (*bookinghandlers.ConfirmBookingResult, error) {
				got = cmd
				return &bookinghandlers.ConfirmBookingResult{ReservationID: cmd.ReservationID, Status: "confirmed"}, nil
			}))
	c := &EventConsumer{Bus: bus}

	err := c.Handle(context.Background(), capturedMessage(
		`{"type":"payment.captured.v1","data":{"reservation_id":"res-1","payment_ref":"pay-42","amount_cents":3516950,"currency":"DZD"}}`))
	require.NoError(t, err)
	assert.Equal(t, "res-1", got.ReservationID)
	assert.Equal(t, "pay-42", got.PaymentRef)
}

func TestLostRaceTriggersRefund(t *testing.T) {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, "booking.confirm",
		commands.HandlerFunc[bookinghandlers.ConfirmBookingCommand, *bookinghandlers.ConfirmBookingResult](
			func(ctx context.Context, cmd bookinghandlers.ConfirmBookingCommand) (*bookinghandlers.ConfirmBookingResult, error) {
				// Losing the race is a committed result, not an error.
				return &bookinghandlers.ConfirmBookingResult{
					ReservationID: "res-1",
					Status:        string(domainbooking.StatusCancelled),
					PaymentStatus: string(domainbooking.PaymentPaid),
					CancelReason:  domainbooking.ReasonLostRace,
					WinnerID:      "res-2",
				}, nil
			}))
	gateway := &refundRecorder{}
	c := &EventConsumer{Bus: bus, Gateway: gateway}

	err := c.Handle(context.Background(), capturedMessage(
		`{"type":"payment.captured.v1","data":{"reservation_id":"res-1","amount_cents":3516950,"currency":"DZD"}}`))
	require.NoError(t, err)
	require.Len(t, gateway.refunds, 1)
	assert.Equal(t, "res-1", gateway.refunds[0])
	assert.Equal(t, int64(3516950), gateway.amounts[0].Amount)
	assert.Equal(t, "DZD", gateway.amounts[0].Currency)
}

func TestFailedEventCancelsReservation(t *testing.T) {
	bus := commands.NewInMemoryBus()
	var got bookinghandlers.CancelBookingCommand
	commands.RegisterHandler(bus, "booking.cancel",
		commands.HandlerFunc[bookinghandlers.CancelBookingCommand, *bookinghandlers.CancelBookingResult](
			func(ctx context.Context, cmd bookinghandlers.CancelBookingCommand) (*bookinghandlers.CancelBookingResult, error) {
				got = cmd
				return &bookinghandlers.CancelBookingResult{ReservationID: cmd.ReservationID, Status: "cancelled"}, nil
			}))
	c := &EventConsumer{Bus: bus}

	err := c.Handle(context.Background(), capturedMessage(
		`{"type":"payment.failed.v1","data":{"reservation_id":"res-1","reason":"card declined"}}`))
	require.NoError(t, err)
	assert.Equal(t, "res-1", got.ReservationID)
	assert.Equal(t, "payment_failed", got.Reason)
}

func TestMalformedAndUnknownEventsAreAcked(t *testing.T) {
	c := &EventConsumer{Bus: commands.NewInMemoryBus()}

	assert.NoError(t, c.Handle(context.Background(), capturedMessage("{broken")))
	assert.NoError(t, c.Handle(context.Background(), capturedMessage(
		`{"type":"payment.unknown.v1","data":{"reservation_id":"res-1"}}`)))
	// Captured without a reservation id is dropped, not retried.
	assert.NoError(t, c.Handle(context.Background(), capturedMessage(
		`{"type":"payment.captured.v1","data":{"reservation_id":""}}`)))
}
