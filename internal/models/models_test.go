package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearData(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a := float64(i)
		b := float64(i % 7)
		X[i] = []float64{a, b}
		y[i] = 3*a - 2*b + 5
	}
	return X, y
}

func TestLinearRegression_RecoversCoefficients(t *testing.T) {
	X, y := linearData(60)
	model := NewLinearRegression()
	require.NoError(t, model.Fit(X, y))

	preds, err := model.Predict([][]float64{{10, 3}, {0, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 3*10-2*3+5, preds[0], 1e-6)
	assert.InDelta(t, 5.0, preds[1], 1e-6)
}

func TestLinearRegression_PredictBeforeFit(t *testing.T) {
	_, err := NewLinearRegression().Predict([][]float64{{1}})
	assert.Error(t, err)
}

func TestDecisionTree_FitsStepFunction(t *testing.T) {
	X := make([][]float64, 40)
	y := make([]float64, 40)
	for i := range X {
		X[i] = []float64{float64(i)}
		if i < 20 {
			y[i] = 10
		} else {
			y[i] = 50
		}
	}

	model := NewDecisionTree(TreeParams{MaxDepth: 3, MinSamplesSplit: 4, MinSamplesLeaf: 2})
	require.NoError(t, model.Fit(X, y))

	preds, err := model.Predict([][]float64{{5}, {35}})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, preds[0], 1e-9)
	assert.InDelta(t, 50.0, preds[1], 1e-9)
}

func TestDecisionTree_RespectsMinSamplesLeaf(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{1, 2, 3, 100}

	// MinSamplesLeaf of 3 forbids every cut of 4 samples except none.
	model := NewDecisionTree(TreeParams{MaxDepth: 5, MinSamplesSplit: 2, MinSamplesLeaf: 3})
	require.NoError(t, model.Fit(X, y))

	preds, err := model.Predict([][]float64{{1}, {4}})
	require.NoError(t, err)
	assert.Equal(t, preds[0], preds[1]) // single leaf: the global mean
	assert.InDelta(t, 26.5, preds[0], 1e-9)
}

func TestRandomForest_DeterministicForSeed(t *testing.T) {
	X, y := linearData(80)

	params := ForestParams{NEstimators: 10, TreeParams: TreeParams{MaxDepth: 5, MinSamplesSplit: 4, MinSamplesLeaf: 2}}
	first := NewRandomForest(params, 42)
	second := NewRandomForest(params, 42)
	require.NoError(t, first.Fit(X, y))
	require.NoError(t, second.Fit(X, y))

	query := [][]float64{{15, 1}, {44, 2}, {70, 0}}
	p1, err := first.Predict(query)
	require.NoError(t, err)
	p2, err := second.Predict(query)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestGradientBoosting_ImprovesOnMeanBaseline(t *testing.T) {
	X, y := linearData(80)

	model := NewGradientBoosting(BoostingParams{
		NEstimators:  50,
		LearningRate: 0.1,
		TreeParams:   TreeParams{MaxDepth: 3, MinSamplesSplit: 4, MinSamplesLeaf: 2},
	})
	require.NoError(t, model.Fit(X, y))

	preds, err := model.Predict(X)
	require.NoError(t, err)

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var sseModel, sseMean float64
	for i := range y {
		sseModel += (y[i] - preds[i]) * (y[i] - preds[i])
		sseMean += (y[i] - mean) * (y[i] - mean)
	}
	assert.Less(t, sseModel, sseMean/4)
}

func TestNew_FactoryValidation(t *testing.T) {
	_, err := New("no_such_model", Params{}, 1)
	assert.Error(t, err)

	_, err = New(DecisionTreeName, Params{}, 1)
	assert.Error(t, err)

	model, err := New(DecisionTreeName, Params{Tree: &TreeParams{MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1}}, 1)
	require.NoError(t, err)
	assert.Equal(t, DecisionTreeName, model.Name())
}

func TestFit_RejectsBadShapes(t *testing.T) {
	model := NewLinearRegression()
	assert.Error(t, model.Fit(nil, nil))
	assert.Error(t, model.Fit([][]float64{{1}}, []float64{1, 2}))
	assert.Error(t, model.Fit([][]float64{{1, 2}, {3}}, []float64{1, 2}))
}
