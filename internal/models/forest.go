package models

import (
	"math"
	"math/rand"

	"github.com/manojb/expensecast/internal/utils"
)

// RandomForest averages bootstrap-sampled regression trees, each split
// drawing from a sqrt-sized random feature subset. The forest is seeded so
// repeated runs on the same data produce identical predictions.
type RandomForest struct {
	params    ForestParams
	seed      int64
	roots     []*treeNode
	nFeatures int
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(params ForestParams, seed int64) *RandomForest {
	return &RandomForest{params: params, seed: seed}
}

// Name returns the model identifier.
func (m *RandomForest) Name() string {
	return RandomForestName
}

// Fit grows NEstimators trees on bootstrap resamples of the training data.
func (m *RandomForest) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}
	m.nFeatures = len(X[0])
	maxFeatures := int(math.Ceil(math.Sqrt(float64(m.nFeatures))))

	rng := rand.New(rand.NewSource(m.seed))
	m.roots = make([]*treeNode, m.params.NEstimators)
	for t := 0; t < m.params.NEstimators; t++ {
		sample := make([]int, len(X))
		for i := range sample {
			sample[i] = rng.Intn(len(X))
		}
		m.roots[t] = growTree(X, y, sample, m.params.TreeParams, 0, maxFeatures, rng)
	}
	return nil
}

// Predict averages the per-tree predictions.
func (m *RandomForest) Predict(X [][]float64) ([]float64, error) {
	if len(m.roots) == 0 {
		return nil, utils.NewValidationError("random forest predict called before fit")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != m.nFeatures {
			return nil, utils.NewValidationErrorf(
				"row has %d features, model was fit on %d", len(row), m.nFeatures)
		}
		sum := 0.0
		for _, root := range m.roots {
			sum += root.predict(row)
		}
		out[i] = sum / float64(len(m.roots))
	}
	return out, nil
}
