package models

import (
	"github.com/manojb/expensecast/internal/utils"
)

// GradientBoosting fits depth-limited regression trees to the running
// residuals of a mean baseline, shrinking each tree's contribution by the
// learning rate.
type GradientBoosting struct {
	params    BoostingParams
	baseline  float64
	roots     []*treeNode
	nFeatures int
}

// NewGradientBoosting creates an unfitted boosting ensemble.
func NewGradientBoosting(params BoostingParams) *GradientBoosting {
	return &GradientBoosting{params: params}
}

// Name returns the model identifier.
func (m *GradientBoosting) Name() string {
	return GradientBoostingName
}

// Fit performs NEstimators rounds of least-squares boosting.
func (m *GradientBoosting) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}
	m.nFeatures = len(X[0])

	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	m.baseline = meanAt(y, indices)

	residuals := make([]float64, len(y))
	for i, v := range y {
		residuals[i] = v - m.baseline
	}

	m.roots = make([]*treeNode, 0, m.params.NEstimators)
	for t := 0; t < m.params.NEstimators; t++ {
		root := growTree(X, residuals, indices, m.params.TreeParams, 0, m.nFeatures, nil)
		m.roots = append(m.roots, root)
		for i, row := range X {
			residuals[i] -= m.params.LearningRate * root.predict(row)
		}
	}
	return nil
}

// Predict sums the shrunken tree contributions over the mean baseline.
func (m *GradientBoosting) Predict(X [][]float64) ([]float64, error) {
	if len(m.roots) == 0 {
		return nil, utils.NewValidationError("gradient boosting predict called before fit")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != m.nFeatures {
			return nil, utils.NewValidationErrorf(
				"row has %d features, model was fit on %d", len(row), m.nFeatures)
		}
		sum := m.baseline
		for _, root := range m.roots {
			sum += m.params.LearningRate * root.predict(row)
		}
		out[i] = sum
	}
	return out, nil
}
