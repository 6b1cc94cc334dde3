package rates

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"stayd/internal/domain/shared/daterange"
	"stayd/internal/domain/unit"
)

var (
	ErrRuleNotFound    = errors.New("rates: rule not found")
	ErrLabelRequired   = errors.New("rates: label is required")
	ErrBadRuleRange    = errors.New("rates: rule start must be before end")
	ErrMultiplierRange = errors.New("rates: multiplier must be within (0, 10] of the base rate")
	ErrRuleOverlap     = errors.New("rates: rule overlaps an existing active rule")
)

type RuleID string

// PricingRule is a date-bounded override of a unit's base nightly rate.
// Start and End are inclusive calendar dates. The multiplier is expressed
// in whole percent of the base rate (150 means 1.5x) so rate resolution
// stays in integer arithmetic.
type PricingRule struct {
	ID            RuleID
	UnitID        unit.UnitID
	Label         string
	Start         time.Time
	End           time.Time
	MultiplierPct int64
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

type RuleRepository interface {
	ByID(ctx context.Context, id RuleID) (*PricingRule, error)
	Save(ctx context.Context, rule *PricingRule) error
	// ActiveByUnit returns all active rules for a unit ordered by start date.
	ActiveByUnit(ctx context.Context, unitID unit.UnitID) ([]*PricingRule, error)
}

type RuleParams struct {
	ID            RuleID
	UnitID        unit.UnitID
	Label         string
	Start         time.Time
	End           time.Time
	MultiplierPct int64
	Now           time.Time
}

// NewPricingRule validates and builds an active rule. Overlap with sibling
// rules is the calendar's concern, not the rule's.
func NewPricingRule(params RuleParams) (*PricingRule, error) {
	if strings.TrimSpace(params.Label) == "" {
		return nil, ErrLabelRequired
	}
	start := daterange.Day(params.Start)
	end := daterange.Day(params.End)
	if !start.Before(end) {
		return nil, ErrBadRuleRange
	}
	if params.MultiplierPct <= 0 || params.MultiplierPct > 1000 {
		return nil, ErrMultiplierRange
	}
	now := params.Now.UTC()
	return &PricingRule{
		ID:            params.ID,
		UnitID:        params.UnitID,
		Label:         strings.TrimSpace(params.Label),
		Start:         start,
		End:           end,
		MultiplierPct: params.MultiplierPct,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Covers reports whether the given night falls inside the rule's inclusive
// date span.
func (r *PricingRule) Covers(night time.Time) bool {
	d := daterange.Day(night)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Intersects reports whether two inclusive rule spans share at least one day.
func (r *PricingRule) Intersects(other *PricingRule) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// Deactivate makes the rule inert without deleting it.
func (r *PricingRule) Deactivate(now time.Time) {
	if !r.Active {
		return
	}
	r.Active = false
	r.UpdatedAt = now.UTC()
}

// CheckNoOverlap rejects a candidate rule whose inclusive span intersects
// any existing active rule for the same unit. The existing rules are sorted
// by start date once and scanned; the first rule starting after the
// candidate's end terminates the scan, keeping write-time validation cheap.
func CheckNoOverlap(candidate *PricingRule, existing []*PricingRule) error {
	sorted := make([]*PricingRule, 0, len(existing))
	for _, rule := range existing {
		if !rule.Active || rule.ID == candidate.ID {
			continue
		}
		sorted = append(sorted, rule)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
	for _, rule := range sorted {
		if rule.Start.After(candidate.End) {
			break
		}
		if rule.Intersects(candidate) {
			return ErrRuleOverlap
		}
	}
	return nil
}
