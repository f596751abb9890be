// Package features derives the model feature table from a daily series:
// lagged target values, trailing rolling statistics and calendar fields.
// Generation is deterministic and performs no I/O; identical inputs always
// produce identical output.
package features

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/manojb/expensecast/internal/timeseries"
)

const dowPrefix = "dow_"

// dowDummies is the fixed one-hot day-of-week column set, alphabetical with
// the first category (Friday) dropped as the baseline.
var dowDummies = []string{
	"dow_monday", "dow_saturday", "dow_sunday",
	"dow_thursday", "dow_tuesday", "dow_wednesday",
}

// Options selects which feature families to generate.
type Options struct {
	Lags           []int
	RollingWindows []int
	Calendar       bool
}

// Builder derives feature tables from daily series under fixed Options. The
// same Builder is used for training tables and for single future rows so the
// column schema cannot drift between the two.
type Builder struct {
	opts   Options
	logger *logrus.Logger
}

// NewBuilder creates a feature builder.
func NewBuilder(opts Options, logger *logrus.Logger) *Builder {
	return &Builder{opts: opts, logger: logger}
}

// Columns returns the canonical ordered column schema for these Options.
func (b *Builder) Columns() []string {
	var cols []string
	for _, lag := range b.opts.Lags {
		cols = append(cols, fmt.Sprintf("lag_%d", lag))
	}
	for _, w := range b.opts.RollingWindows {
		cols = append(cols, fmt.Sprintf("rolling_mean_%d", w))
		cols = append(cols, fmt.Sprintf("rolling_std_%d", w))
	}
	if b.opts.Calendar {
		cols = append(cols, "month", "day_of_month", "quarter", "year")
		cols = append(cols, dowDummies...)
	}
	return cols
}

// Build generates one feature row per series position. Rows whose lag or
// rolling lookback exceeds the available history carry NaN in the affected
// columns; callers decide whether to drop them (training) or fill them
// (inference, degraded path).
func (b *Builder) Build(series *timeseries.DailySeries) *Table {
	columns := b.Columns()
	rows := make([][]float64, series.Len())
	for t := 0; t < series.Len(); t++ {
		rows[t] = b.buildRow(series.Values[:t], series.Dates[t])
	}
	return &Table{
		Columns: columns,
		Dates:   append([]time.Time(nil), series.Dates...),
		Rows:    rows,
	}
}

// BuildTraining generates the training feature table, dropping every row
// that contains a NaN from lag or rolling computation. Dropped rows are
// never imputed: zero-filling early history would bias the model toward
// near-zero behavior at the start of the series. The returned target slice
// stays aligned with the surviving rows.
func (b *Builder) BuildTraining(series *timeseries.DailySeries) (*Table, []float64) {
	full := b.Build(series)

	var rows [][]float64
	var dates []time.Time
	var targets []float64
	for t, row := range full.Rows {
		if rowHasNaN(row) {
			continue
		}
		rows = append(rows, row)
		dates = append(dates, full.Dates[t])
		targets = append(targets, series.Values[t])
	}

	dropped := len(full.Rows) - len(rows)
	if dropped > 0 && b.logger != nil {
		b.logger.WithFields(logrus.Fields{
			"rows_before":  len(full.Rows),
			"rows_after":   len(rows),
			"rows_dropped": dropped,
		}).Info("Dropped rows with incomplete lag/rolling history from training table")
	}

	return &Table{Columns: full.Columns, Dates: dates, Rows: rows}, targets
}

// FutureRow computes the feature row for one date strictly after the given
// history. Lag and rolling features read only the history (values before the
// date); the calendar fields come from the date itself. The returned row
// contains NaN wherever the history is shorter than the required lookback.
func (b *Builder) FutureRow(history *timeseries.DailySeries, date time.Time) []float64 {
	return b.buildRow(history.Values, date)
}

// MaxLookback returns the number of trailing history days needed to compute
// a complete feature row: the widest lag, or the widest rolling window plus
// the one-day shift, whichever is larger.
func (b *Builder) MaxLookback() int {
	max := 0
	for _, lag := range b.opts.Lags {
		if lag > max {
			max = lag
		}
	}
	for _, w := range b.opts.RollingWindows {
		if w+1 > max {
			max = w + 1
		}
	}
	return max
}

// buildRow computes the feature row for a date whose preceding values are
// prior. The target value at the date itself is never an input.
func (b *Builder) buildRow(prior []float64, date time.Time) []float64 {
	row := make([]float64, 0, len(b.Columns()))

	for _, lag := range b.opts.Lags {
		if len(prior) >= lag {
			row = append(row, prior[len(prior)-lag])
		} else {
			row = append(row, math.NaN())
		}
	}

	for _, w := range b.opts.RollingWindows {
		if len(prior) >= w {
			window := prior[len(prior)-w:]
			mean, std := meanStd(window)
			row = append(row, mean, std)
		} else {
			row = append(row, math.NaN(), math.NaN())
		}
	}

	if b.opts.Calendar {
		row = append(row,
			float64(date.Month()),
			float64(date.Day()),
			float64((int(date.Month())-1)/3+1),
			float64(date.Year()),
		)
		row = append(row, dowOneHot(date.Weekday())...)
	}

	return row
}

// meanStd computes the mean and the sample standard deviation (ddof=1) of a
// full window. A single-element window has no defined sample deviation.
func meanStd(window []float64) (float64, float64) {
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(len(window))

	if len(window) < 2 {
		return mean, math.NaN()
	}
	sumSq := 0.0
	for _, v := range window {
		diff := v - mean
		sumSq += diff * diff
	}
	return mean, math.Sqrt(sumSq / float64(len(window)-1))
}

func dowOneHot(day time.Weekday) []float64 {
	out := make([]float64, len(dowDummies))
	switch day {
	case time.Monday:
		out[0] = 1
	case time.Saturday:
		out[1] = 1
	case time.Sunday:
		out[2] = 1
	case time.Thursday:
		out[3] = 1
	case time.Tuesday:
		out[4] = 1
	case time.Wednesday:
		out[5] = 1
	}
	// Friday is the dropped baseline category: all zeros.
	return out
}

func rowHasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
