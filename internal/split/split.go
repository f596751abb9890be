// Package split partitions feature tables chronologically for training,
// testing and expanding-window cross-validation. There is no shuffling
// anywhere in this package: every partition respects time order.
package split

import (
	"math"
	"time"

	"github.com/manojb/expensecast/internal/features"
	"github.com/manojb/expensecast/internal/utils"
)

// Result holds a chronological train/test partition. Train always precedes
// test in time.
type Result struct {
	XTrain *features.Table
	XTest  *features.Table
	YTrain []float64
	YTest  []float64
}

// Fold is one expanding-window cross-validation fold: the training prefix
// [0, TrainEnd) and the validation block [TrainEnd, ValEnd).
type Fold struct {
	TrainEnd int
	ValEnd   int
}

// Chronological cuts the feature table at n - floor(n*testFraction):
// everything before the cut is train, everything from it on is test. The cut
// is positional, which is equivalent to a date cut because the dates are
// validated contiguous and sorted first.
func Chronological(table *features.Table, target []float64, testFraction float64) (*Result, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, utils.NewValidationErrorf("test fraction must be in (0,1), got %v", testFraction)
	}
	n := table.NumRows()
	if len(target) != n {
		return nil, utils.NewValidationErrorf("target length %d does not match table rows %d", len(target), n)
	}
	if err := validateDates(table.Dates); err != nil {
		return nil, err
	}

	cut := n - int(math.Floor(float64(n)*testFraction))

	return &Result{
		XTrain: slice(table, 0, cut),
		XTest:  slice(table, cut, n),
		YTrain: target[:cut],
		YTest:  target[cut:],
	}, nil
}

// ExpandingFolds produces k expanding-window folds over n chronologically
// ordered rows, matching the usual time-series split: the validation block
// size is n/(k+1) and each fold's training prefix grows to meet it. The
// requested k is clamped to what n supports; fewer than 2 feasible folds
// yields nil, which callers treat as "skip tuning".
func ExpandingFolds(n, k int) []Fold {
	if k < 2 {
		k = 2
	}
	// Each fold needs a non-empty validation block and a non-empty prefix.
	if k > n-1 {
		k = n - 1
	}
	if k < 2 {
		return nil
	}

	valSize := n / (k + 1)
	if valSize < 1 {
		return nil
	}

	folds := make([]Fold, 0, k)
	for i := 0; i < k; i++ {
		valEnd := n - (k-1-i)*valSize
		trainEnd := valEnd - valSize
		if trainEnd < 1 {
			continue
		}
		folds = append(folds, Fold{TrainEnd: trainEnd, ValEnd: valEnd})
	}
	if len(folds) < 2 {
		return nil
	}
	return folds
}

// validateDates enforces the split preconditions: strictly increasing,
// duplicate-free dates. Violations are fatal and never silently corrected -
// a duplicate here means upstream per-date aggregation is broken.
func validateDates(dates []time.Time) error {
	for i := 1; i < len(dates); i++ {
		prev, cur := dates[i-1], dates[i]
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

func slice(table *features.Table, i0, i1 int) *features.Table {
	return &features.Table{
		Columns: table.Columns,
		Dates:   table.Dates[i0:i1],
		Rows:    table.Rows[i0:i1],
	}
}
