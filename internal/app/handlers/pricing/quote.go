package pricing

import (
	"context"
	"time"

	"stayd/internal/app/dto"
	handlersupport "stayd/internal/app/handlers/support"
	"stayd/internal/app/policies"
	"stayd/internal/app/queries"
	"stayd/internal/app/uow"
	domainbooking "stayd/internal/domain/booking"
	domainpricing "stayd/internal/domain/pricing"
	domainrates "stayd/internal/domain/rates"
	domainrange "stayd/internal/domain/shared/daterange"
	domainunit "stayd/internal/domain/unit"
)

const quotePriceKey = "pricing.quote"

type QuotePriceQuery struct {
	UnitID   string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

func (q QuotePriceQuery) Key() string { return quotePriceKey }

// QuotePriceHandler prices a stay without reserving anything. The
// computation is side-effect-free, so it is safe for live previews; the
// attached validity window mirrors the pending-booking hold.
type QuotePriceHandler struct {
	UoWFactory uow.UoWFactory
	Clock      policies.Clock
	HoldWindow time.Duration
}

func (h *QuotePriceHandler) Handle(ctx context.Context, q QuotePriceQuery) (dto.QuoteDTO, error) {
	stay, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.QuoteDTO{}, domainbooking.NewValidationError("dates", err.Error())
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rental, err := unit.Units().ByID(execCtx, domainunit.UnitID(q.UnitID))
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	rules, err := unit.Rates().ActiveByUnit(execCtx, rental.ID)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	schedule, err := domainrates.ResolveSchedule(rental, rules, stay)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	breakdown, err := domainpricing.Calculate(rental, schedule, q.Guests)
	if err != nil {
		return dto.QuoteDTO{}, err
	}
	quote := domainpricing.Quote{
		Breakdown:  breakdown,
		ValidUntil: h.clock().Now().UTC().Add(h.holdWindow()),
	}
	return dto.MapQuote(quote), nil
}

func (h *QuotePriceHandler) clock() policies.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return policies.SystemClock{}
}

func (h *QuotePriceHandler) holdWindow() time.Duration {
	if h.HoldWindow > 0 {
		return h.HoldWindow
	}
	return 30 * time.Minute
}

var _ queries.Handler[QuotePriceQuery, dto.QuoteDTO] = (*QuotePriceHandler)(nil)
