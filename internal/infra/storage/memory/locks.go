package memory

import (
	"context"
	"sync"
	"time"

	"stayd/internal/app/policies"
)

// UnitLocker serializes confirms per unit with in-process mutexes. Suitable
// for a single instance; multi-instance deployments use the redis locker.
// Like the redis locker, an unreleased lock expires after its ttl so a
// caller that never returns cannot wedge the unit.
type UnitLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewUnitLocker() *UnitLocker {
	return &UnitLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *UnitLocker) Acquire(ctx context.Context, unitID string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[unitID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[unitID] = m
	}
	l.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
	}()
	select {
	case <-acquired:
		var once sync.Once
		unlock := func() { once.Do(m.Unlock) }
		if ttl > 0 {
			timer := time.AfterFunc(ttl, unlock)
			return func() {
				timer.Stop()
				unlock()
			}, nil
		}
		return unlock, nil
	case <-ctx.Done():
		// The goroutine will still take the lock eventually; hand it back
		// immediately so the key does not stay held.
		go func() {
			<-acquired
			m.Unlock()
		}()
		return nil, ctx.Err()
	}
}

var _ policies.UnitLocker = (*UnitLocker)(nil)
