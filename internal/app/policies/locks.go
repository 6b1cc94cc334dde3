package policies

import (
	"context"
	"time"
)

// UnitLocker serializes the confirm re-check and write for one unit. The
// critical section is deliberately narrow: only the confirm transition
// holds it, never the pending/payment-collection window. Release must be
// safe on every exit path.
type UnitLocker interface {
	Acquire(ctx context.Context, unitID string, ttl time.Duration) (release func(), err error)
}
