// Package models implements the regression models the forecasting pipeline
// trains on the feature table. Every model satisfies the Regressor interface
// and is otherwise opaque to the feature, split and forecast packages.
package models

import (
	"fmt"

	"github.com/manojb/expensecast/internal/config"
)

// Model names used in configuration, tuning artifacts and reports.
const (
	LinearRegressionName = "linear_regression"
	DecisionTreeName     = "decision_tree"
	RandomForestName     = "random_forest"
	GradientBoostingName = "gradient_boosting"
)

// Regressor is the fit/predict contract every model implements. X is
// row-major with a fixed column order; implementations must not retain the
// slices they are given.
type Regressor interface {
	Name() string
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
}

// TreeParams are the hyperparameters shared by the tree-based models.
type TreeParams struct {
	MaxDepth        int `json:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf"`
}

// ForestParams parameterize the random forest.
type ForestParams struct {
	NEstimators int `json:"n_estimators"`
	TreeParams
}

// BoostingParams parameterize gradient boosting.
type BoostingParams struct {
	NEstimators  int     `json:"n_estimators"`
	LearningRate float64 `json:"learning_rate"`
	TreeParams
}

// Params is the closed union of per-family hyperparameters carried through
// tuning and persistence. Exactly one family field is meaningful per model.
type Params struct {
	Tree     *TreeParams     `json:"tree,omitempty"`
	Forest   *ForestParams   `json:"forest,omitempty"`
	Boosting *BoostingParams `json:"boosting,omitempty"`
}

// New constructs a regressor by name from explicit hyperparameters. An
// unknown name or a Params value missing the family the name requires is a
// programming error surfaced as an error, not a panic.
func New(name string, params Params, seed int64) (Regressor, error) {
	switch name {
	case LinearRegressionName:
		return NewLinearRegression(), nil
	case DecisionTreeName:
		if params.Tree == nil {
			return nil, fmt.Errorf("decision tree requires tree params")
		}
		return NewDecisionTree(*params.Tree), nil
	case RandomForestName:
		if params.Forest == nil {
			return nil, fmt.Errorf("random forest requires forest params")
		}
		return NewRandomForest(*params.Forest, seed), nil
	case GradientBoostingName:
		if params.Boosting == nil {
			return nil, fmt.Errorf("gradient boosting requires boosting params")
		}
		return NewGradientBoosting(*params.Boosting), nil
	default:
		return nil, fmt.Errorf("unknown model %q", name)
	}
}

// DefaultParams maps the configured static defaults into Params for each
// tunable model. The tuner falls back to these when its grid is empty or the
// training set cannot support cross-validation.
func DefaultParams(cfg *config.ModelsConfig) map[string]Params {
	return map[string]Params{
		LinearRegressionName: {},
		DecisionTreeName: {
			Tree: &TreeParams{
				MaxDepth:        cfg.DecisionTree.MaxDepth,
				MinSamplesSplit: cfg.DecisionTree.MinSamplesSplit,
				MinSamplesLeaf:  cfg.DecisionTree.MinSamplesLeaf,
			},
		},
		RandomForestName: {
			Forest: &ForestParams{
				NEstimators: cfg.RandomForest.NEstimators,
				TreeParams: TreeParams{
					MaxDepth:        cfg.RandomForest.MaxDepth,
					MinSamplesSplit: cfg.RandomForest.MinSamplesSplit,
					MinSamplesLeaf:  cfg.RandomForest.MinSamplesLeaf,
				},
			},
		},
		GradientBoostingName: {
			Boosting: &BoostingParams{
				NEstimators:  cfg.GradientBoosting.NEstimators,
				LearningRate: cfg.GradientBoosting.LearningRate,
				TreeParams: TreeParams{
					MaxDepth:        cfg.GradientBoosting.MaxDepth,
					MinSamplesSplit: cfg.GradientBoosting.MinSamplesSplit,
					MinSamplesLeaf:  cfg.GradientBoosting.MinSamplesLeaf,
				},
			},
		},
	}
}
