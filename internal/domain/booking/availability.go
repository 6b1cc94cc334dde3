package booking

import (
	"sort"

	"stayd/internal/domain/shared/daterange"
)

// AvailabilityResult carries the outcome of an availability check.
type AvailabilityResult struct {
	Available bool
	Conflicts []*Reservation
}

// CheckAvailability tests a candidate half-open range against the given
// reservations. Only reservations that still hold dates (pending or
// confirmed) can conflict; a checkout on day N never collides with a
// check-in on day N. excludeID lets a re-validation skip the reservation
// being processed. Pure function, no side effects.
func CheckAvailability(existing []*Reservation, stay daterange.DateRange, excludeID ReservationID) AvailabilityResult {
	conflicts := make([]*Reservation, 0)
	for _, r := range existing {
		if r.ID == excludeID || !r.HoldsDates() {
			continue
		}
		if stay.Overlaps(r.Range) {
			conflicts = append(conflicts, r)
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Range.CheckIn.Before(conflicts[j].Range.CheckIn)
	})
	return AvailabilityResult{Available: len(conflicts) == 0, Conflicts: conflicts}
}
