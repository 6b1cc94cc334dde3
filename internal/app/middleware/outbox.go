package middleware

import (
	"context"

	"stayd/internal/app/commands"
	"stayd/internal/app/outbox"
)

// OutboxFlush flushes staged event records after a command completes
// successfully. With a transactional store the flush is a no-op and the
// worker picks the records up; the in-memory store hands them to the
// publisher here.
func OutboxFlush(ob outbox.Outbox) CommandMiddleware {
	if ob == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := ob.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
