// Package timeseries provides the daily series data structures consumed by
// the feature, split and forecast packages.
package timeseries

import (
	"time"

	"github.com/manojb/expensecast/internal/utils"
)

// DailySeries is a date-indexed numeric series with one entry per calendar
// day and no gaps. The ingestion layer guarantees gap-free, zero-filled
// input; Validate enforces the ordering invariants before the core uses it.
type DailySeries struct {
	Dates  []time.Time
	Values []float64
}

// New creates a DailySeries from parallel date and value slices.
func New(dates []time.Time, values []float64) (*DailySeries, error) {
	if len(dates) != len(values) {
		return nil, utils.NewValidationErrorf(
			"dates and values must have the same length: %d != %d", len(dates), len(values))
	}
	return &DailySeries{Dates: dates, Values: values}, nil
}

// Len returns the number of daily observations.
func (s *DailySeries) Len() int {
	return len(s.Values)
}

// Validate checks that dates are unique and strictly increasing. A duplicate
// date signals that upstream per-date aggregation failed and must surface as
// an error, never be aggregated away here.
func (s *DailySeries) Validate() error {
	for i := 1; i < len(s.Dates); i++ {
		prev, cur := s.Dates[i-1], s.Dates[i]
		if cur.Equal(prev) {
			return utils.NewInvariantErrorf(utils.DuplicateDates,
				"date %s appears more than once", cur.Format("2006-01-02"))
		}
		if cur.Before(prev) {
			return utils.NewInvariantErrorf(utils.NonChronological,
				"date %s follows %s", cur.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
	}
	return nil
}

// Tail returns a copy of the last n observations (the whole series when n
// exceeds its length). The copy keeps the caller's series untouched when the
// result is later appended to.
func (s *DailySeries) Tail(n int) *DailySeries {
	if n > s.Len() {
		n = s.Len()
	}
	start := s.Len() - n
	dates := make([]time.Time, n)
	values := make([]float64, n)
	copy(dates, s.Dates[start:])
	copy(values, s.Values[start:])
	return &DailySeries{Dates: dates, Values: values}
}

// History is the mutable working copy of a DailySeries used by the recursive
// forecaster. It is seeded from the tail of real history and grows by one row
// per forecasted day; it lives only for the duration of one forecast call and
// is never written back to the caller's series.
type History struct {
	dates  []time.Time
	values []float64
}

// NewHistory seeds a History from a series tail, preallocating room for the
// given forecast horizon so the append loop never reallocates.
func NewHistory(seed *DailySeries, horizon int) *History {
	h := &History{
		dates:  make([]time.Time, seed.Len(), seed.Len()+horizon),
		values: make([]float64, seed.Len(), seed.Len()+horizon),
	}
	copy(h.dates, seed.Dates)
	copy(h.values, seed.Values)
	return h
}

// Append records one forecasted day.
func (h *History) Append(date time.Time, value float64) {
	h.dates = append(h.dates, date)
	h.values = append(h.values, value)
}

// Len returns the number of rows currently held.
func (h *History) Len() int {
	return len(h.values)
}

// Series exposes the working copy as a DailySeries without copying. The
// returned value aliases the history buffer and must not outlive it.
func (h *History) Series() *DailySeries {
	return &DailySeries{Dates: h.dates, Values: h.values}
}
