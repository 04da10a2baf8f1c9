package forecast

import (
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
)

const day = 24 * time.Hour

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after d.
func AddDays(d time.Time, n int) time.Time {
	return DateOnly(d).AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)) / day)
}

// Series is a date-contiguous daily unit series. Index i holds the units for
// Start+i days, so there can be no gaps or duplicates.
type Series struct {
	start time.Time
	units []int
}

// NewSeries builds a series starting at start from per-day units. Negative
// values are floored at zero.
func NewSeries(start time.Time, units []int) Series {
	s := Series{start: DateOnly(start), units: make([]int, len(units))}
	for i, u := range units {
		if u > 0 {
			s.units[i] = u
		}
	}
	return s
}

// ZeroSeries returns a series over [start, end] with every day set to zero.
// An end before start yields an empty series anchored at start.
func ZeroSeries(start, end time.Time) Series {
	n := DaysBetween(start, end) + 1
	if n < 0 {
		n = 0
	}
	return Series{start: DateOnly(start), units: make([]int, n)}
}

func (s Series) Len() int { return len(s.units) }

func (s Series) Start() time.Time { return s.start }

// End is the last date in the series. For an empty series it is the day before Start.
func (s Series) End() time.Time { return AddDays(s.start, len(s.units)-1) }

// DateAt returns the date of index i.
func (s Series) DateAt(i int) time.Time { return AddDays(s.start, i) }

// UnitsAt returns the units at index i.
func (s Series) UnitsAt(i int) int { return s.units[i] }

// At looks up the units recorded for date d.
func (s Series) At(d time.Time) (int, bool) {
	i := DaysBetween(s.start, d)
	if i < 0 || i >= len(s.units) {
		return 0, false
	}
	return s.units[i], true
}

func (s *Series) add(d time.Time, units int) {
	i := DaysBetween(s.start, d)
	if i < 0 || i >= len(s.units) || units <= 0 {
		return
	}
	s.units[i] += units
}

// Values returns the units as float64 in date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.units))
	for i, u := range s.units {
		out[i] = float64(u)
	}
	return out
}

// Total is the sum of all units.
func (s Series) Total() int {
	total := 0
	for _, u := range s.units {
		total += u
	}
	return total
}

// Tail returns the last n days (or the whole series when shorter).
func (s Series) Tail(n int) Series {
	if n >= len(s.units) {
		return s
	}
	if n <= 0 {
		return Series{start: AddDays(s.End(), 1)}
	}
	off := len(s.units) - n
	return Series{start: AddDays(s.start, off), units: s.units[off:]}
}

// Points converts the series into its explicit per-day representation.
func (s Series) Points() []domain.DemandPoint {
	points := make([]domain.DemandPoint, len(s.units))
	for i, u := range s.units {
		points[i] = domain.DemandPoint{Date: s.DateAt(i), Units: u}
	}
	return points
}
