// Package metrics provides the regression error metrics shared by model
// evaluation, baselines and hyperparameter tuning.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/manojb/expensecast/internal/utils"
)

// MAE computes the mean absolute error.
func MAE(actual, predicted []float64) (float64, error) {
	if err := checkLengths(actual, predicted); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual)), nil
}

// RMSE computes the root mean squared error.
func RMSE(actual, predicted []float64) (float64, error) {
	if err := checkLengths(actual, predicted); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual))), nil
}

// R2 computes the coefficient of determination. With fewer than two samples
// the statistic is undefined and NaN is returned.
func R2(actual, predicted []float64) (float64, error) {
	if err := checkLengths(actual, predicted); err != nil {
		return 0, err
	}
	if len(actual) < 2 {
		return math.NaN(), nil
	}
	mean := stat.Mean(actual, nil)
	var ssRes, ssTot float64
	for i := range actual {
		res := actual[i] - predicted[i]
		tot := actual[i] - mean
		ssRes += res * res
		ssTot += tot * tot
	}
	if ssTot == 0 {
		return math.NaN(), nil
	}
	return 1 - ssRes/ssTot, nil
}

func checkLengths(actual, predicted []float64) error {
	if len(actual) == 0 {
		return utils.NewValidationError("cannot compute a metric over zero samples")
	}
	if len(actual) != len(predicted) {
		return utils.NewValidationErrorf(
			"actual and predicted lengths differ: %d != %d", len(actual), len(predicted))
	}
	return nil
}
