package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainbooking "stayd/internal/domain/booking"
	domainrates "stayd/internal/domain/rates"
	domainunit "stayd/internal/domain/unit"
)

// UnitRepository is an in-memory rental unit store used in dev and tests.
type UnitRepository struct {
	mu    sync.RWMutex
	items map[domainunit.UnitID]*domainunit.RentalUnit
}

func NewUnitRepository() *UnitRepository {
	return &UnitRepository{items: make(map[domainunit.UnitID]*domainunit.RentalUnit)}
}

func (r *UnitRepository) ByID(ctx context.Context, id domainunit.UnitID) (*domainunit.RentalUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainunit.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UnitRepository) Save(ctx context.Context, u *domainunit.RentalUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Version++
	clone := *u
	r.items[u.ID] = &clone
	return nil
}

func (r *UnitRepository) ListByOwner(ctx context.Context, owner domainunit.OwnerID) ([]*domainunit.RentalUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainunit.RentalUnit, 0)
	for _, u := range r.items {
		if u.Owner == owner {
			clone := *u
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

// RuleRepository keeps rate overrides in memory.
type RuleRepository struct {
	mu    sync.RWMutex
	items map[domainrates.RuleID]*domainrates.PricingRule
}

func NewRuleRepository() *RuleRepository {
	return &RuleRepository{items: make(map[domainrates.RuleID]*domainrates.PricingRule)}
}

func (r *RuleRepository) ByID(ctx context.Context, id domainrates.RuleID) (*domainrates.PricingRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.items[id]
	if !ok {
		return nil, domainrates.ErrRuleNotFound
	}
	clone := *rule
	return &clone, nil
}

func (r *RuleRepository) Save(ctx context.Context, rule *domainrates.PricingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule.Version++
	clone := *rule
	r.items[rule.ID] = &clone
	return nil
}

// ActiveByUnit returns active rules sorted by start date, the order the
// schedule resolver expects.
func (r *RuleRepository) ActiveByUnit(ctx context.Context, unitID domainunit.UnitID) ([]*domainrates.PricingRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainrates.PricingRule, 0)
	for _, rule := range r.items {
		if rule.UnitID == unitID && rule.Active {
			clone := *rule
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start.Before(matches[j].Start)
	})
	return matches, nil
}

// ReservationRepository stores reservations in memory.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ReservationID]*domainbooking.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[domainbooking.ReservationID]*domainbooking.Reservation)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainbooking.ReservationID) (*domainbooking.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	clone := *res
	return &clone, nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainbooking.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res.Version++
	clone := *res
	r.items[res.ID] = &clone
	return nil
}

func (r *ReservationRepository) ActiveByUnit(ctx context.Context, unitID domainunit.UnitID) ([]*domainbooking.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Reservation, 0)
	for _, res := range r.items {
		if res.UnitID == unitID && res.HoldsDates() {
			clone := *res
			matches = append(matches, &clone)
		}
	}
	sortByCheckIn(matches)
	return matches, nil
}

func (r *ReservationRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domainbooking.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := strings.TrimSpace(requesterID)
	if id == "" {
		return nil, domainbooking.NewValidationError("requester_id", "required")
	}
	matches := make([]*domainbooking.Reservation, 0)
	for _, res := range r.items {
		if res.RequesterID == id {
			clone := *res
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *ReservationRepository) PendingBefore(ctx context.Context, cutoff time.Time, unitID domainunit.UnitID) ([]*domainbooking.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Reservation, 0)
	for _, res := range r.items {
		if res.Status != domainbooking.StatusPending || res.Payment != domainbooking.PaymentPending {
			continue
		}
		if unitID != "" && res.UnitID != unitID {
			continue
		}
		if res.CreatedAt.After(cutoff) {
			continue
		}
		clone := *res
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func sortByCheckIn(items []*domainbooking.Reservation) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Range.CheckIn.Before(items[j].Range.CheckIn)
	})
}

var (
	_ domainunit.Repository      = (*UnitRepository)(nil)
	_ domainrates.RuleRepository = (*RuleRepository)(nil)
	_ domainbooking.Repository   = (*ReservationRepository)(nil)
)
