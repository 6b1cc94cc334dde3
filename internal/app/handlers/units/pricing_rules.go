package units

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"stayd/internal/app/commands"
	"stayd/internal/app/policies"
	"stayd/internal/app/uow"
	domainrates "stayd/internal/domain/rates"
	domainunit "stayd/internal/domain/unit"
)

const (
	upsertRuleKey     = "rates.upsert_rule"
	deactivateRuleKey = "rates.deactivate_rule"
)

var ErrRuleUnitMismatch = errors.New("units: rule belongs to a different unit")

type UpsertPricingRuleCommand struct {
	CommandID     string
	RuleID        string // empty creates a new rule
	UnitID        string
	Label         string
	Start         time.Time
	End           time.Time
	MultiplierPct int64
}

func (c UpsertPricingRuleCommand) Key() string { return upsertRuleKey }

type PricingRuleResult struct {
	RuleID string `json:"rule_id"`
	Active bool   `json:"active"`
}

// UpsertPricingRuleHandler creates or edits a rate override. Overlap with
// other active rules is rejected here, at write time, so read-time rate
// resolution can trust the stored calendar.
type UpsertPricingRuleHandler struct {
	Clock  policies.Clock
	Logger *slog.Logger
}

func (h *UpsertPricingRuleHandler) Handle(ctx context.Context, cmd UpsertPricingRuleCommand) (*PricingRuleResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	rental, err := unit.Units().ByID(ctx, domainunit.UnitID(cmd.UnitID))
	if err != nil {
		return nil, err
	}

	now := h.clock().Now()
	ruleID := strings.TrimSpace(cmd.RuleID)
	if ruleID == "" {
		ruleID = cmd.CommandID
	}
	candidate, err := domainrates.NewPricingRule(domainrates.RuleParams{
		ID:            domainrates.RuleID(ruleID),
		UnitID:        rental.ID,
		Label:         cmd.Label,
		Start:         cmd.Start,
		End:           cmd.End,
		MultiplierPct: cmd.MultiplierPct,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cmd.RuleID) != "" {
		existing, err := unit.Rates().ByID(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		if existing.UnitID != rental.ID {
			return nil, ErrRuleUnitMismatch
		}
		candidate.CreatedAt = existing.CreatedAt
		candidate.Version = existing.Version
	}

	siblings, err := unit.Rates().ActiveByUnit(ctx, rental.ID)
	if err != nil {
		return nil, err
	}
	if err := domainrates.CheckNoOverlap(candidate, siblings); err != nil {
		return nil, err
	}
	if err := unit.Rates().Save(ctx, candidate); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("pricing rule saved",
			"rule_id", candidate.ID, "unit_id", rental.ID, "label", candidate.Label,
			"start", candidate.Start.Format("2006-01-02"), "end", candidate.End.Format("2006-01-02"))
	}
	return &PricingRuleResult{RuleID: string(candidate.ID), Active: candidate.Active}, nil
}

func (h *UpsertPricingRuleHandler) clock() policies.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return policies.SystemClock{}
}

type DeactivatePricingRuleCommand struct {
	RuleID string
}

func (c DeactivatePricingRuleCommand) Key() string { return deactivateRuleKey }

// DeactivatePricingRuleHandler makes a rule inert. Rules are never deleted;
// history stays auditable.
type DeactivatePricingRuleHandler struct {
	Clock  policies.Clock
	Logger *slog.Logger
}

func (h *DeactivatePricingRuleHandler) Handle(ctx context.Context, cmd DeactivatePricingRuleCommand) (*PricingRuleResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	rule, err := unit.Rates().ByID(ctx, domainrates.RuleID(cmd.RuleID))
	if err != nil {
		return nil, err
	}
	rule.Deactivate(h.clock().Now())
	if err := unit.Rates().Save(ctx, rule); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("pricing rule deactivated", "rule_id", rule.ID, "unit_id", rule.UnitID)
	}
	return &PricingRuleResult{RuleID: string(rule.ID), Active: rule.Active}, nil
}

func (h *DeactivatePricingRuleHandler) clock() policies.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return policies.SystemClock{}
}

var _ commands.Handler[UpsertPricingRuleCommand, *PricingRuleResult] = (*UpsertPricingRuleHandler)(nil)
var _ commands.Handler[DeactivatePricingRuleCommand, *PricingRuleResult] = (*DeactivatePricingRuleHandler)(nil)
