// Package baselines provides the sanity-check forecasters the trained models
// must beat: last value, trailing moving average and seasonal naive.
package baselines

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/manojb/expensecast/internal/metrics"
	"github.com/manojb/expensecast/internal/timeseries"
	"github.com/manojb/expensecast/internal/utils"
)

// Scores bundles the evaluation metrics of one baseline on a test block.
type Scores struct {
	Name string
	MAE  float64
	RMSE float64
	R2   float64
}

// LastValue forecasts the last observed value for every horizon day.
func LastValue(history *timeseries.DailySeries, horizon int) ([]float64, error) {
	if history.Len() == 0 {
		return nil, utils.NewValidationError("last-value baseline needs at least one observation")
	}
	last := history.Values[history.Len()-1]
	out := make([]float64, horizon)
	for i := range out {
		out[i] = last
	}
	return out, nil
}

// RollingMean forecasts the trailing moving average of the final window for
// every horizon day.
func RollingMean(history *timeseries.DailySeries, window, horizon int) ([]float64, error) {
	if history.Len() < window {
		return nil, utils.NewValidationErrorf(
			"rolling-mean baseline needs %d observations, got %d", window, history.Len())
	}

	sma := trend.NewSmaWithPeriod[float64](window)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(history.Values)))
	mean := values[len(values)-1]

	out := make([]float64, horizon)
	for i := range out {
		out[i] = mean
	}
	return out, nil
}

// SeasonalNaive forecasts each horizon day with the value observed one
// season (period days) earlier, wrapping through already-forecast days the
// way a repeating weekly pattern would.
func SeasonalNaive(history *timeseries.DailySeries, period, horizon int) ([]float64, error) {
	if history.Len() < period {
		return nil, utils.NewValidationErrorf(
			"seasonal-naive baseline needs %d observations, got %d", period, history.Len())
	}
	season := history.Values[history.Len()-period:]
	out := make([]float64, horizon)
	for i := range out {
		out[i] = season[i%period]
	}
	return out, nil
}

// Evaluate scores a baseline's predictions against actual values.
func Evaluate(name string, actual, predicted []float64) (*Scores, error) {
	mae, err := metrics.MAE(actual, predicted)
	if err != nil {
		return nil, err
	}
	rmse, err := metrics.RMSE(actual, predicted)
	if err != nil {
		return nil, err
	}
	r2, err := metrics.R2(actual, predicted)
	if err != nil {
		return nil, err
	}
	return &Scores{Name: name, MAE: mae, RMSE: rmse, R2: r2}, nil
}
