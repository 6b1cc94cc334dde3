package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"stayd/internal/domain/shared/events"
)

var ErrEncoderRequired = errors.New("outbox: event encoder required")

// EventRecord is the serialized form of a domain event staged for
// publication. Records are written inside the same transaction as the
// state change and shipped asynchronously by the worker.
type EventRecord struct {
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
}

// Outbox stages event records for later publication.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// EventEncoder turns a domain event into a transportable record.
type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event struct as the record payload.
type JSONEventEncoder struct{}

func (JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	return EventRecord{
		Name:       ev.EventName(),
		Aggregate:  ev.AggregateID(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
	}, nil
}

// RecordDomainEvents encodes and stages every pending event. Call it after
// the aggregate mutation but before commit so the records ride the same
// transaction.
func RecordDomainEvents(ctx context.Context, ob Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if ob == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		return ErrEncoderRequired
	}
	for _, ev := range evs {
		record, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := ob.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
