package models

import (
	"math"
	"math/rand"
	"sort"

	"github.com/manojb/expensecast/internal/utils"
)

// DecisionTree is a CART regression tree minimizing squared error, bounded
// by max depth and minimum sample counts per split and per leaf.
type DecisionTree struct {
	params    TreeParams
	root      *treeNode
	nFeatures int
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// NewDecisionTree creates an unfitted regression tree.
func NewDecisionTree(params TreeParams) *DecisionTree {
	return &DecisionTree{params: params}
}

// Name returns the model identifier.
func (m *DecisionTree) Name() string {
	return DecisionTreeName
}

// Fit grows the tree on the full feature set.
func (m *DecisionTree) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}
	m.nFeatures = len(X[0])
	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	m.root = growTree(X, y, indices, m.params, 0, len(X[0]), nil)
	return nil
}

// Predict routes each row down the tree to a leaf mean.
func (m *DecisionTree) Predict(X [][]float64) ([]float64, error) {
	if m.root == nil {
		return nil, utils.NewValidationError("decision tree predict called before fit")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != m.nFeatures {
			return nil, utils.NewValidationErrorf(
				"row has %d features, model was fit on %d", len(row), m.nFeatures)
		}
		out[i] = m.root.predict(row)
	}
	return out, nil
}

func (n *treeNode) predict(row []float64) float64 {
	node := n
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// growTree recursively partitions indices. When rng is non-nil, each split
// considers a random subset of maxFeatures candidate features (random-forest
// style); otherwise all features are candidates.
func growTree(X [][]float64, y []float64, indices []int, params TreeParams, depth, maxFeatures int, rng *rand.Rand) *treeNode {
	mean := meanAt(y, indices)

	if depth >= params.MaxDepth || len(indices) < params.MinSamplesSplit || isConstant(y, indices) {
		return &treeNode{leaf: true, value: mean}
	}

	feature, threshold, ok := bestSplit(X, y, indices, params.MinSamplesLeaf, maxFeatures, rng)
	if !ok {
		return &treeNode{leaf: true, value: mean}
	}

	var left, right []int
	for _, idx := range indices {
		if X[idx][feature] <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(X, y, left, params, depth+1, maxFeatures, rng),
		right:     growTree(X, y, right, params, depth+1, maxFeatures, rng),
	}
}

// bestSplit scans candidate features for the threshold minimizing the summed
// squared error of the two children, honoring the min-samples-per-leaf bound.
func bestSplit(X [][]float64, y []float64, indices []int, minLeaf, maxFeatures int, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(X[indices[0]])
	candidates := featureCandidates(nFeatures, maxFeatures, rng)

	bestSSE := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	sorted := make([]int, len(indices))
	for _, feature := range candidates {
		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool {
			return X[sorted[a]][feature] < X[sorted[b]][feature]
		})

		// Prefix sums over the sorted order allow evaluating every cut in
		// one pass.
		var leftSum, leftSq float64
		var totalSum, totalSq float64
		for _, idx := range sorted {
			totalSum += y[idx]
			totalSq += y[idx] * y[idx]
		}

		for i := 0; i < len(sorted)-1; i++ {
			idx := sorted[i]
			leftSum += y[idx]
			leftSq += y[idx] * y[idx]

			cur, next := X[idx][feature], X[sorted[i+1]][feature]
			if cur == next {
				continue
			}
			nLeft := i + 1
			nRight := len(sorted) - nLeft
			if nLeft < minLeaf || nRight < minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(nLeft)) +
				(rightSq - rightSum*rightSum/float64(nRight))
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = feature
				bestThreshold = (cur + next) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func featureCandidates(nFeatures, maxFeatures int, rng *rand.Rand) []int {
	all := make([]int, nFeatures)
	for i := range all {
		all[i] = i
	}
	if rng == nil || maxFeatures >= nFeatures {
		return all
	}
	rng.Shuffle(nFeatures, func(a, b int) { all[a], all[b] = all[b], all[a] })
	subset := all[:maxFeatures]
	sort.Ints(subset)
	return subset
}

func meanAt(y []float64, indices []int) float64 {
	sum := 0.0
	for _, idx := range indices {
		sum += y[idx]
	}
	return sum / float64(len(indices))
}

func isConstant(y []float64, indices []int) bool {
	first := y[indices[0]]
	for _, idx := range indices[1:] {
		if y[idx] != first {
			return false
		}
	}
	return true
}
