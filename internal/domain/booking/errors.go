package booking

import (
	"fmt"

	"stayd/internal/domain/unit"
)

// ValidationError rejects malformed input before any read happens.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: invalid %s: %s", e.Field, e.Reason)
}

// ConflictError is returned when a requested range collides with existing
// reservations. Conflicts are data the caller can use to suggest
// alternatives, not an internal failure.
type ConflictError struct {
	UnitID    unit.UnitID
	Conflicts []*Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking: unit %s has %d conflicting reservation(s)", e.UnitID, len(e.Conflicts))
}

// LostRaceError reports that a competing reservation for overlapping dates
// was confirmed first. The confirm step records the outcome in its result;
// callers surface this error to clients. Distinct from
// ConflictError because it implies a refund workflow, not a re-submission.
type LostRaceError struct {
	ReservationID ReservationID
	WinnerID      ReservationID
}

func (e *LostRaceError) Error() string {
	return fmt.Sprintf("booking: reservation %s lost the confirm race to %s", e.ReservationID, e.WinnerID)
}
