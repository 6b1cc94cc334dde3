package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewNormalizesToCalendarDates(t *testing.T) {
	in := time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
	out := time.Date(2026, time.March, 13, 9, 0, 0, 0, time.UTC)

	r, err := New(in, out)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 10), r.CheckIn)
	assert.Equal(t, date(2026, time.March, 13), r.CheckOut)
	assert.Equal(t, 3, r.Nights())
}

func TestNewRejectsEmptyRange(t *testing.T) {
	_, err := New(date(2026, time.March, 10), date(2026, time.March, 10))
	assert.ErrorIs(t, err, ErrCheckOutNotAfterCheckIn)

	_, err = New(date(2026, time.March, 10), date(2026, time.March, 9))
	assert.ErrorIs(t, err, ErrCheckOutNotAfterCheckIn)
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	base, err := New(date(2026, time.June, 10), date(2026, time.June, 15))
	require.NoError(t, err)

	cases := []struct {
		name string
		in   time.Time
		out  time.Time
		want bool
	}{
		{"identical", date(2026, time.June, 10), date(2026, time.June, 15), true},
		{"contained", date(2026, time.June, 11), date(2026, time.June, 12), true},
		{"overlaps tail", date(2026, time.June, 14), date(2026, time.June, 20), true},
		{"checkout equals checkin", date(2026, time.June, 15), date(2026, time.June, 18), false},
		{"checkin equals checkout", date(2026, time.June, 5), date(2026, time.June, 10), false},
		{"disjoint", date(2026, time.June, 20), date(2026, time.June, 22), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(tc.in, tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.want, base.Overlaps(other))
			assert.Equal(t, tc.want, other.Overlaps(base))
		})
	}
}

func TestEachNightVisitsOccupiedNightsOnly(t *testing.T) {
	r, err := New(date(2026, time.June, 10), date(2026, time.June, 13))
	require.NoError(t, err)

	var visited []time.Time
	r.EachNight(func(night time.Time) bool {
		visited = append(visited, night)
		return true
	})
	require.Len(t, visited, 3)
	assert.Equal(t, date(2026, time.June, 10), visited[0])
	assert.Equal(t, date(2026, time.June, 12), visited[2])

	assert.True(t, r.ContainsNight(date(2026, time.June, 12)))
	assert.False(t, r.ContainsNight(date(2026, time.June, 13)))
}
