package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayd/internal/app/commands"
)

type guardedCommand struct {
	Bad bool
}

func (c guardedCommand) Key() string { return "test.guarded" }

func (c guardedCommand) Validate() error {
	if c.Bad {
		return errors.New("bad command")
	}
	return nil
}

func TestSelfValidationRejectsBeforeDispatch(t *testing.T) {
	base := commands.NewInMemoryBus()
	calls := 0
	commands.RegisterHandler(base, "test.guarded",
		commands.HandlerFunc[guardedCommand, *struct{}](func(ctx context.Context, cmd guardedCommand) (*struct{}, error) {
			calls++
			return nil, nil
		}))
	bus := ChainCommands(base, Validation(SelfValidation{}))

	_, err := bus.Dispatch(context.Background(), guardedCommand{Bad: true})
	require.EqualError(t, err, "bad command")
	assert.Zero(t, calls)

	_, err = bus.Dispatch(context.Background(), guardedCommand{})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSelfValidationPassesPlainCommands(t *testing.T) {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, "test.charge",
		commands.HandlerFunc[chargeCommand, *chargeResult](func(ctx context.Context, cmd chargeCommand) (*chargeResult, error) {
			return &chargeResult{Attempt: 1}, nil
		}))
	bus := ChainCommands(base, Validation(SelfValidation{}))

	res, err := commands.Dispatch[chargeCommand, *chargeResult](context.Background(), bus, chargeCommand{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempt)
}
