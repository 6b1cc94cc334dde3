package events

import "time"

// DomainEvent is raised by aggregates when state changes worth publishing
// occur. Events are collected inside the transaction and shipped through
// the outbox after commit.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder accumulates pending events; embed it into aggregates.
type EventRecorder struct {
	pending []DomainEvent
}

// Record appends an event to the pending list.
func (r *EventRecorder) Record(ev DomainEvent) {
	r.pending = append(r.pending, ev)
}

// PendingEvents returns the events recorded since the last clear.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	return r.pending
}

// ClearEvents drops all pending events, typically after outbox handoff.
func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}
