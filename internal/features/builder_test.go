package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojb/expensecast/internal/timeseries"
)

func makeSeries(t *testing.T, n int, value func(i int) float64) *timeseries.DailySeries {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		dates[i] = start.AddDate(0, 0, i)
		values[i] = value(i)
	}
	series, err := timeseries.New(dates, values)
	require.NoError(t, err)
	return series
}

func TestBuild_LagFeatures(t *testing.T) {
	series := makeSeries(t, 10, func(i int) float64 { return float64(i) })
	builder := NewBuilder(Options{Lags: []int{1, 3}}, nil)

	table := builder.Build(series)

	lag1 := table.Column("lag_1")
	lag3 := table.Column("lag_3")
	require.NotNil(t, lag1)
	require.NotNil(t, lag3)

	assert.True(t, math.IsNaN(lag1[0]))
	assert.Equal(t, 4.0, lag1[5])
	assert.True(t, math.IsNaN(lag3[2]))
	assert.Equal(t, 2.0, lag3[5])
}

func TestBuild_RollingExcludesCurrentDay(t *testing.T) {
	series := makeSeries(t, 10, func(i int) float64 { return float64(i) })
	builder := NewBuilder(Options{RollingWindows: []int{3}}, nil)

	table := builder.Build(series)
	mean := table.Column("rolling_mean_3")
	std := table.Column("rolling_std_3")

	// Row 3 sees exactly values 0,1,2 - never its own value 3.
	assert.InDelta(t, 1.0, mean[3], 1e-12)
	assert.InDelta(t, 1.0, std[3], 1e-12) // sample std of {0,1,2}

	// First w rows lack a full window.
	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(mean[i]), "row %d", i)
		assert.True(t, math.IsNaN(std[i]), "row %d", i)
	}
}

func TestBuild_NoLookAhead(t *testing.T) {
	base := makeSeries(t, 40, func(i int) float64 { return float64(i) * 1.5 })
	builder := NewBuilder(Options{Lags: []int{1, 3}, RollingWindows: []int{7}}, nil)

	before := builder.Build(base)

	// Mutating values strictly after index 20 must not change row 20.
	mutated := makeSeries(t, 40, func(i int) float64 {
		if i > 20 {
			return 9999.0
		}
		return float64(i) * 1.5
	})
	after := builder.Build(mutated)

	assert.Equal(t, before.Rows[20], after.Rows[20])
}

func TestBuild_Deterministic(t *testing.T) {
	series := makeSeries(t, 30, func(i int) float64 { return math.Sin(float64(i)) * 50 })
	builder := NewBuilder(Options{Lags: []int{1, 6}, RollingWindows: []int{7, 14}, Calendar: true}, nil)

	first := builder.Build(series)
	second := builder.Build(series)

	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, first.Rows, second.Rows)
}

func TestBuildTraining_DropsAllNaNRows(t *testing.T) {
	series := makeSeries(t, 50, func(i int) float64 { return float64(i) })
	builder := NewBuilder(Options{Lags: []int{1, 3, 6, 12}, RollingWindows: []int{7, 14, 30}, Calendar: true}, nil)

	table, targets := builder.BuildTraining(series)

	// The 30-day rolling window is the widest lookback: the first row with a
	// full window of strictly-preceding values is t=30.
	assert.Equal(t, 50-30, table.NumRows())
	assert.Len(t, targets, table.NumRows())
	for _, row := range table.Rows {
		for i, v := range row {
			assert.False(t, math.IsNaN(v), "column %s", table.Columns[i])
		}
	}
	// Targets stay aligned with the surviving dates.
	assert.Equal(t, 30.0, targets[0])
}

func TestBuild_CalendarColumns(t *testing.T) {
	// 2024-01-01 is a Monday.
	series := makeSeries(t, 7, func(i int) float64 { return 1 })
	builder := NewBuilder(Options{Calendar: true}, nil)

	table := builder.Build(series)

	assert.Equal(t, []string{
		"month", "day_of_month", "quarter", "year",
		"dow_monday", "dow_saturday", "dow_sunday",
		"dow_thursday", "dow_tuesday", "dow_wednesday",
	}, table.Columns)

	assert.Equal(t, 1.0, table.Column("month")[0])
	assert.Equal(t, 1.0, table.Column("quarter")[0])
	assert.Equal(t, 2024.0, table.Column("year")[0])
	assert.Equal(t, 1.0, table.Column("dow_monday")[0])
	assert.Equal(t, 0.0, table.Column("dow_monday")[1])
	assert.Equal(t, 1.0, table.Column("dow_tuesday")[1])

	// Friday (index 4) is the dropped baseline: all dummies zero.
	for _, col := range table.Columns[4:] {
		assert.Equal(t, 0.0, table.Column(col)[4], col)
	}
}

func TestFutureRow_UsesOnlyHistory(t *testing.T) {
	series := makeSeries(t, 20, func(i int) float64 { return float64(i) })
	builder := NewBuilder(Options{Lags: []int{1, 3}, RollingWindows: []int{7}}, nil)

	next := series.Dates[19].AddDate(0, 0, 1)
	row := builder.FutureRow(series, next)

	cols := builder.Columns()
	byName := map[string]float64{}
	for i, c := range cols {
		byName[c] = row[i]
	}
	assert.Equal(t, 19.0, byName["lag_1"])
	assert.Equal(t, 17.0, byName["lag_3"])
	assert.InDelta(t, 16.0, byName["rolling_mean_7"], 1e-12)
}

func TestMaxLookback(t *testing.T) {
	builder := NewBuilder(Options{Lags: []int{1, 3, 6, 12}, RollingWindows: []int{7, 14, 30}}, nil)
	assert.Equal(t, 31, builder.MaxLookback())

	builder = NewBuilder(Options{Lags: []int{40}, RollingWindows: []int{7}}, nil)
	assert.Equal(t, 40, builder.MaxLookback())
}

func TestAlign_FillsMissingDummiesWithZero(t *testing.T) {
	table := &Table{
		Columns: []string{"lag_1", "dow_monday"},
		Rows:    [][]float64{{5, 1}},
	}

	aligned, err := table.Align([]string{"lag_1", "dow_monday", "dow_saturday"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lag_1", "dow_monday", "dow_saturday"}, aligned.Columns)
	assert.Equal(t, []float64{5, 1, 0}, aligned.Rows[0])
}

func TestAlign_RejectsNonDummyMismatch(t *testing.T) {
	table := &Table{
		Columns: []string{"lag_1"},
		Rows:    [][]float64{{5}},
	}

	_, err := table.Align([]string{"lag_1", "rolling_mean_7"})
	assert.Error(t, err)

	extra := &Table{
		Columns: []string{"lag_1", "lag_99"},
		Rows:    [][]float64{{5, 6}},
	}
	_, err = extra.Align([]string{"lag_1"})
	assert.Error(t, err)
}
