package rates

import (
	"errors"
	"fmt"
	"time"

	"stayd/internal/domain/shared/daterange"
	"stayd/internal/domain/shared/money"
	"stayd/internal/domain/unit"
)

// ErrRuleConflict indicates that two active rules cover the same night.
// The write-time invariant should make this impossible; hitting it means
// stored data is corrupt, so the resolver refuses to pick a winner.
var ErrRuleConflict = errors.New("rates: conflicting active rules cover the same night")

// NightRate is one entry of an effective rate schedule.
type NightRate struct {
	Night time.Time
	Rate  money.Money
	// RuleID is set when an override produced the rate, empty for base rate.
	RuleID RuleID
}

// ResolveSchedule maps every night of the stay to its effective rate:
// exactly one active rule covering the night applies its multiplier to the
// unit's base rate, no rule means the base rate, and more than one is a
// data-integrity fault reported as ErrRuleConflict.
func ResolveSchedule(u *unit.RentalUnit, rules []*PricingRule, stay daterange.DateRange) ([]NightRate, error) {
	base := u.BaseRate()
	schedule := make([]NightRate, 0, stay.Nights())

	var conflict error
	stay.EachNight(func(night time.Time) bool {
		var matched *PricingRule
		for _, rule := range rules {
			if !rule.Active || rule.UnitID != u.ID || !rule.Covers(night) {
				continue
			}
			if matched != nil {
				conflict = fmt.Errorf("%w: unit %s night %s", ErrRuleConflict, u.ID, night.Format("2006-01-02"))
				return false
			}
			matched = rule
		}
		entry := NightRate{Night: night, Rate: base}
		if matched != nil {
			entry.Rate = base.Percent(matched.MultiplierPct)
			entry.RuleID = matched.ID
		}
		schedule = append(schedule, entry)
		return true
	})
	if conflict != nil {
		return nil, conflict
	}
	return schedule, nil
}
