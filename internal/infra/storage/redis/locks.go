package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"stayd/internal/app/policies"
)

// ErrLockHeld is returned when another holder owns the unit lock and the
// caller's context ran out before it was freed.
var ErrLockHeld = errors.New("redis: unit lock held")

const retryInterval = 50 * time.Millisecond

// Tokens guard against releasing a lock that expired and was re-acquired
// by someone else.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// UnitLocker implements a distributed per-unit lock with SET NX and a TTL.
// The TTL bounds how long a crashed confirm can block a unit.
type UnitLocker struct {
	client *redis.Client
	prefix string
}

func NewUnitLocker(client *redis.Client) *UnitLocker {
	return &UnitLocker{client: client, prefix: "stayd:unitlock:"}
}

func (l *UnitLocker) Acquire(ctx context.Context, unitID string, ttl time.Duration) (func(), error) {
	key := l.prefix + unitID
	token := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockHeld, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
	release := func() {
		// Best effort; the TTL cleans up if the release never lands.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(ctx, l.client, []string{key}, token).Result()
	}
	return release, nil
}

var _ policies.UnitLocker = (*UnitLocker)(nil)
