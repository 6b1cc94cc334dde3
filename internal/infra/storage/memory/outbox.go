package memory

import (
	"context"
	"sync"

	appoutbox "stayd/internal/app/outbox"
)

// Outbox keeps staged event records in memory until flushed. Useful for dev
// mode and for asserting emitted events in tests.
type Outbox struct {
	mu      sync.Mutex
	pending []appoutbox.EventRecord
	flushed []appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushed = append(o.flushed, o.pending...)
	o.pending = nil
	return nil
}

// Flushed returns a copy of every record that made it past Flush.
func (o *Outbox) Flushed() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, len(o.flushed))
	copy(out, o.flushed)
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
