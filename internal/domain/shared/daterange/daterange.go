package daterange

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCheckOutNotAfterCheckIn = errors.New("daterange: check-out must be after check-in")
)

// DateRange is a half-open stay interval [CheckIn, CheckOut): the checkout
// day itself is not occupied, so a checkout on day N and a new check-in on
// day N do not conflict. Both bounds are calendar dates normalized to UTC
// midnight; a booking occupies whole nights.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New builds a DateRange from the provided instants, truncating any
// time-of-day component. The range must span at least one night.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	in := Day(checkIn)
	out := Day(checkOut)
	if !out.After(in) {
		return DateRange{}, ErrCheckOutNotAfterCheckIn
	}
	return DateRange{CheckIn: in, CheckOut: out}, nil
}

// Day truncates t to a calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of occupied nights in the range.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn) / (24 * time.Hour))
}

// Overlaps reports whether two half-open ranges share at least one night.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// ContainsNight reports whether the given date is one of the occupied nights.
func (r DateRange) ContainsNight(night time.Time) bool {
	d := Day(night)
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

// EachNight calls fn for every occupied night in order, stopping early if
// fn returns false.
func (r DateRange) EachNight(fn func(night time.Time) bool) {
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDate(0, 0, 1) {
		if !fn(d) {
			return
		}
	}
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.CheckIn.Format("2006-01-02"), r.CheckOut.Format("2006-01-02"))
}
