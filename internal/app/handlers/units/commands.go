package units

import (
	"context"
	"log/slog"
	"strings"

	"stayd/internal/app/commands"
	"stayd/internal/app/outbox"
	"stayd/internal/app/policies"
	"stayd/internal/app/uow"
	domainunit "stayd/internal/domain/unit"
)

const (
	createUnitKey    = "unit.create"
	setUnitStatusKey = "unit.set_status"
)

type CreateUnitCommand struct {
	CommandID        string
	OwnerID          string
	Name             string
	Currency         string
	BaseRateCents    int64
	CleaningFeeCents int64
	ServiceFeePct    int64
	TaxPct           int64
	TouristTaxCents  int64
	MaxGuests        int
}

func (c CreateUnitCommand) Key() string { return createUnitKey }

type CreateUnitResult struct {
	UnitID string `json:"unit_id"`
	Status string `json:"status"`
}

type CreateUnitHandler struct {
	Clock   policies.Clock
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CreateUnitHandler) Handle(ctx context.Context, cmd CreateUnitCommand) (*CreateUnitResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	rental, err := domainunit.NewRentalUnit(domainunit.CreateParams{
		ID:               domainunit.UnitID(cmd.CommandID),
		Owner:            domainunit.OwnerID(cmd.OwnerID),
		Name:             cmd.Name,
		Currency:         cmd.Currency,
		BaseRateCents:    cmd.BaseRateCents,
		CleaningFeeCents: cmd.CleaningFeeCents,
		ServiceFeePct:    cmd.ServiceFeePct,
		TaxPct:           cmd.TaxPct,
		TouristTaxCents:  cmd.TouristTaxCents,
		MaxGuests:        cmd.MaxGuests,
		Now:              h.clock().Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Units().Save(ctx, rental); err != nil {
		return nil, err
	}
	pending := rental.PendingEvents()
	rental.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("rental unit created", "unit_id", rental.ID, "owner_id", rental.Owner)
	}
	return &CreateUnitResult{UnitID: string(rental.ID), Status: string(rental.Status)}, nil
}

func (h *CreateUnitHandler) clock() policies.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return policies.SystemClock{}
}

func (h *CreateUnitHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

type SetUnitStatusCommand struct {
	UnitID string
	Status string
}

func (c SetUnitStatusCommand) Key() string { return setUnitStatusKey }

type SetUnitStatusResult struct {
	UnitID string `json:"unit_id"`
	Status string `json:"status"`
}

type SetUnitStatusHandler struct {
	Clock  policies.Clock
	Logger *slog.Logger
}

func (h *SetUnitStatusHandler) Handle(ctx context.Context, cmd SetUnitStatusCommand) (*SetUnitStatusResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	rental, err := unit.Units().ByID(ctx, domainunit.UnitID(cmd.UnitID))
	if err != nil {
		return nil, err
	}
	status := domainunit.Status(strings.ToLower(strings.TrimSpace(cmd.Status)))
	if err := rental.SetStatus(status, h.clock().Now()); err != nil {
		return nil, err
	}
	if err := unit.Units().Save(ctx, rental); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("unit status changed", "unit_id", rental.ID, "status", rental.Status)
	}
	return &SetUnitStatusResult{UnitID: string(rental.ID), Status: string(rental.Status)}, nil
}

func (h *SetUnitStatusHandler) clock() policies.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return policies.SystemClock{}
}

var _ commands.Handler[CreateUnitCommand, *CreateUnitResult] = (*CreateUnitHandler)(nil)
var _ commands.Handler[SetUnitStatusCommand, *SetUnitStatusResult] = (*SetUnitStatusHandler)(nil)
