package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"stayd/internal/app/commands"
	domainbooking "stayd/internal/domain/booking"
	domainunit "stayd/internal/domain/unit"
)

// IdempotentCommand must be implemented by commands that want idempotency guarantees.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // should match the handler result type
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorKind  string
	ErrorData  []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var (
	errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")
)

func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok {
				return nextFn(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			if key == "" {
				return nextFn(ctx, cmd)
			}
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				if rec.Error != "" {
					return nil, decodeFailure(rec)
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := codec.Decode(rec.Payload, proto); err != nil {
					return nil, err
				}
				return normalizePrototype(proto), nil
			}
			result, err := nextFn(ctx, cmd)
			record := IdempotencyRecord{
				Key:        key,
				OccurredAt: time.Now().UTC(),
			}
			if err != nil {
				record.Error = err.Error()
				record.ErrorKind, record.ErrorData = encodeFailure(err)
				if saveErr := store.Save(ctx, record); saveErr != nil {
					return nil, errors.Join(err, saveErr)
				}
				return nil, err
			}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if saveErr := store.Save(ctx, record); saveErr != nil {
				return nil, saveErr
			}
			return result, nil
		})
	}
}

// Failure kinds that survive a replay with their type intact. Replaying a
// stored failure as a bare string would turn a 409 or 400 into a 500 at the
// HTTP layer.
const (
	errKindValidation = "validation"
	errKindConflict   = "conflict"
)

type validationFailure struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type conflictFailure struct {
	UnitID string `json:"unit_id"`
}

func encodeFailure(err error) (string, []byte) {
	var verr *domainbooking.ValidationError
	if errors.As(err, &verr) {
		data, _ := json.Marshal(validationFailure{Field: verr.Field, Reason: verr.Reason})
		return errKindValidation, data
	}
	var cerr *domainbooking.ConflictError
	if errors.As(err, &cerr) {
		data, _ := json.Marshal(conflictFailure{UnitID: string(cerr.UnitID)})
		return errKindConflict, data
	}
	return "", nil
}

func decodeFailure(rec IdempotencyRecord) error {
	switch rec.ErrorKind {
	case errKindValidation:
		var f validationFailure
		if json.Unmarshal(rec.ErrorData, &f) == nil {
			return &domainbooking.ValidationError{Field: f.Field, Reason: f.Reason}
		}
	case errKindConflict:
		var f conflictFailure
		if json.Unmarshal(rec.ErrorData, &f) == nil {
			return &domainbooking.ConflictError{UnitID: domainunit.UnitID(f.UnitID)}
		}
	}
	return errors.New(rec.Error)
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
