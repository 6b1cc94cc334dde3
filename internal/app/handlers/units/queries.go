package units

import (
	"context"
	"strings"

	"stayd/internal/app/dto"
	handlersupport "stayd/internal/app/handlers/support"
	"stayd/internal/app/queries"
	"stayd/internal/app/uow"
	domainbooking "stayd/internal/domain/booking"
	domainunit "stayd/internal/domain/unit"
)

const (
	listOwnerUnitsKey = "unit.list_by_owner"
	getUnitKey        = "unit.get"
)

type ListOwnerUnitsQuery struct {
	OwnerID string
}

func (q ListOwnerUnitsQuery) Key() string { return listOwnerUnitsKey }

type ListOwnerUnitsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListOwnerUnitsHandler) Handle(ctx context.Context, q ListOwnerUnitsQuery) (dto.UnitCollection, error) {
	owner := strings.TrimSpace(q.OwnerID)
	if owner == "" {
		return dto.UnitCollection{}, domainbooking.NewValidationError("owner_id", "is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UnitCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rentals, err := unit.Units().ListByOwner(execCtx, domainunit.OwnerID(owner))
	if err != nil {
		return dto.UnitCollection{}, err
	}
	items := make([]dto.UnitSummary, 0, len(rentals))
	for _, rental := range rentals {
		items = append(items, dto.MapUnit(rental))
	}
	return dto.UnitCollection{Items: items}, nil
}

type GetUnitQuery struct {
	UnitID string
}

func (q GetUnitQuery) Key() string { return getUnitKey }

type GetUnitHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetUnitHandler) Handle(ctx context.Context, q GetUnitQuery) (dto.UnitSummary, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UnitSummary{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rental, err := unit.Units().ByID(execCtx, domainunit.UnitID(q.UnitID))
	if err != nil {
		return dto.UnitSummary{}, err
	}
	return dto.MapUnit(rental), nil
}

var _ queries.Handler[ListOwnerUnitsQuery, dto.UnitCollection] = (*ListOwnerUnitsHandler)(nil)
var _ queries.Handler[GetUnitQuery, dto.UnitSummary] = (*GetUnitHandler)(nil)
