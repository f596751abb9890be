// Package forecast produces multi-day forecasts by repeated one-step-ahead
// prediction: each day's prediction is appended to a private working history
// so the next day's lag and rolling features are computed from forecasts,
// never from zero placeholders.
package forecast

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/manojb/expensecast/internal/features"
	"github.com/manojb/expensecast/internal/models"
	"github.com/manojb/expensecast/internal/timeseries"
	"github.com/manojb/expensecast/internal/transform"
	"github.com/manojb/expensecast/internal/utils"
)

// Point is one forecasted day on the original target scale, rounded to two
// decimal places.
type Point struct {
	Date  time.Time
	Value float64
}

// Forecaster drives the recursive loop for one fitted model. The column set
// the model was fit on is captured at construction so every inference row is
// aligned to it exactly.
type Forecaster struct {
	builder *features.Builder
	model   models.Regressor
	columns []string
	target  *transform.Target
	logger  *logrus.Logger
}

// New creates a forecaster around a model already fit on trainColumns.
func New(builder *features.Builder, model models.Regressor, trainColumns []string, target *transform.Target, logger *logrus.Logger) *Forecaster {
	if target == nil {
		target = transform.None()
	}
	return &Forecaster{
		builder: builder,
		model:   model,
		columns: append([]string(nil), trainColumns...),
		target:  target,
		logger:  logger,
	}
}

// Forecast predicts every day in [start, end]. The real history is only
// read: the growing copy that absorbs predictions is private to this call
// and discarded when it returns.
//
// The loop is inherently sequential - day t+1's features depend on day t's
// prediction being committed to the working history first.
func (f *Forecaster) Forecast(history *timeseries.DailySeries, start, end time.Time) ([]Point, error) {
	if err := history.Validate(); err != nil {
		return nil, err
	}
	if history.Len() == 0 {
		return nil, utils.NewValidationError("cannot forecast from an empty history")
	}
	if end.Before(start) {
		return nil, utils.NewValidationErrorf(
			"horizon end %s precedes start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	lastReal := history.Dates[history.Len()-1]
	if !start.After(lastReal) {
		return nil, utils.NewValidationErrorf(
			"horizon start %s is not after the last observed date %s",
			start.Format("2006-01-02"), lastReal.Format("2006-01-02"))
	}

	horizon := int(end.Sub(start).Hours()/24) + 1

	// Seed with just enough real history to cover the widest lookback. A
	// shorter real history is accepted as-is and handled by the degraded
	// zero-fill path below.
	lookback := f.builder.MaxLookback()
	working := timeseries.NewHistory(history.Tail(lookback), horizon)

	points := make([]Point, 0, horizon)
	degradedDays := 0
	for i := 0; i < horizon; i++ {
		date := start.AddDate(0, 0, i)

		row := f.builder.FutureRow(working.Series(), date)
		if n := fillNaN(row); n > 0 {
			degradedDays++
		}

		table := &features.Table{Columns: f.builder.Columns(), Rows: [][]float64{row}}
		aligned, err := table.Align(f.columns)
		if err != nil {
			return nil, err
		}

		preds, err := f.model.Predict(aligned.Rows)
		if err != nil {
			return nil, err
		}

		// Everything fed back into history happens in original units.
		value := round2(f.target.InvertOne(preds[0]))
		working.Append(date, value)
		points = append(points, Point{Date: date, Value: value})
	}

	if degradedDays > 0 && f.logger != nil {
		f.logger.WithFields(logrus.Fields{
			"model":         f.model.Name(),
			"degraded_days": degradedDays,
			"lookback":      lookback,
			"history_len":   history.Len(),
		}).Warn("Real history shorter than the widest feature lookback; zero-filled missing lag/rolling features for the earliest forecast days (degraded accuracy)")
	}

	return points, nil
}

// fillNaN zero-fills NaN features left by insufficient real history. This is
// the one permitted zero-fill: it applies strictly past the earliest real
// lookback and only on the inference path.
func fillNaN(row []float64) int {
	filled := 0
	for i, v := range row {
		if math.IsNaN(v) {
			row[i] = 0
			filled++
		}
	}
	return filled
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
