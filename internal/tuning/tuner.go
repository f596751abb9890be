// Package tuning selects model hyperparameters with a time-series-aware grid
// search: every candidate is scored by expanding-window cross-validation, so
// no fold ever validates on data that precedes its training block.
package tuning

import (
	"io"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/manojb/expensecast/internal/config"
	"github.com/manojb/expensecast/internal/models"
	"github.com/manojb/expensecast/internal/split"
	"github.com/manojb/expensecast/internal/transform"
)

const topCandidatesLogged = 3

// Factory builds a regressor for a candidate configuration. Swappable in
// tests to count fits.
type Factory func(name string, params models.Params, seed int64) (models.Regressor, error)

// Result holds the selected hyperparameters per model, plus how they were
// obtained.
type Result struct {
	Selected map[string]models.Params
	CVMetric map[string]float64
	Reused   bool
	Skipped  bool
}

// Tuner runs the grid search. All scoring happens on the original target
// scale: the transform is applied before fitting and inverted before the MAE
// is computed.
type Tuner struct {
	cfg     config.TuningConfig
	seed    int64
	target  *transform.Target
	logger  *logrus.Logger
	factory Factory
	workers int
}

// New creates a tuner. A nil target means no transform; a nil logger
// discards output.
func New(cfg config.TuningConfig, seed int64, target *transform.Target, logger *logrus.Logger) *Tuner {
	if target == nil {
		target = transform.None()
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Tuner{
		cfg:     cfg,
		seed:    seed,
		target:  target,
		logger:  logger,
		factory: models.New,
		workers: runtime.NumCPU(),
	}
}

// SetFactory replaces the model factory (used by tests to count fit calls).
func (t *Tuner) SetFactory(factory Factory) {
	t.factory = factory
}

// Run tunes every tunable model over the training partition and returns the
// selected parameters for all models, falling back to the provided defaults
// wherever tuning is impossible. Persistence failures never fail the run.
func (t *Tuner) Run(X [][]float64, y []float64, defaults map[string]models.Params) *Result {
	result := &Result{
		Selected: make(map[string]models.Params, len(defaults)),
		CVMetric: make(map[string]float64, len(defaults)),
	}
	for name, params := range defaults {
		result.Selected[name] = params
	}

	if t.cfg.ReuseSavedParams {
		if artifact, err := LoadArtifact(t.cfg.PersistPath); err == nil {
			for name, saved := range artifact.Models {
				result.Selected[name] = saved.Params
				result.CVMetric[name] = saved.CVMetric
			}
			result.Reused = true
			t.logger.WithFields(logrus.Fields{
				"path":         t.cfg.PersistPath,
				"generated_at": artifact.GeneratedAt,
				"models":       len(artifact.Models),
			}).Info("Reusing saved hyperparameters; skipping grid search")
			return result
		} else {
			t.logger.WithError(err).Debug("No reusable tuning artifact; running grid search")
		}
	}

	folds := split.ExpandingFolds(len(X), t.cfg.TimeSeriesSplits)
	if folds == nil {
		result.Skipped = true
		t.logger.WithFields(logrus.Fields{
			"samples":          len(X),
			"requested_splits": t.cfg.TimeSeriesSplits,
		}).Warn("Training set too small for 2 expanding folds; skipping tuning and using default hyperparameters")
		return result
	}

	grids := map[string][]models.Params{
		models.DecisionTreeName:     enumerateTreeGrid(t.cfg.DecisionTree),
		models.RandomForestName:     enumerateForestGrid(t.cfg.RandomForest),
		models.GradientBoostingName: enumerateBoostingGrid(t.cfg.GradientBoosting),
	}

	artifact := &Artifact{
		SchemaVersion:   schemaVersion,
		GeneratedAt:     time.Now().UTC(),
		SelectionMetric: "min_mean_mae",
		CVMetric:        "mae",
		Models:          make(map[string]ModelResult),
	}

	for _, name := range []string{models.DecisionTreeName, models.RandomForestName, models.GradientBoostingName} {
		candidates := grids[name]
		if len(candidates) == 0 {
			t.logger.WithField("model", name).
				Warn("Empty hyperparameter grid; falling back to default hyperparameters")
			continue
		}

		best, score := t.searchModel(name, candidates, X, y, folds)
		result.Selected[name] = best
		result.CVMetric[name] = score
		artifact.Models[name] = ModelResult{Params: best, CVMetric: score}
	}

	if len(artifact.Models) > 0 {
		if err := SaveArtifact(t.cfg.PersistPath, artifact); err != nil {
			t.logger.WithError(err).WithField("path", t.cfg.PersistPath).
				Warn("Failed to persist tuning result; continuing with freshly computed parameters")
		} else {
			t.logger.WithField("path", t.cfg.PersistPath).Info("Persisted tuning result")
		}
	}

	return result
}

// searchModel scores every candidate and returns the winner. Candidates are
// evaluated on a bounded worker pool; scores land in a slice indexed by
// candidate so aggregation is order-independent, and the first-seen candidate
// wins ties by enumeration order.
func (t *Tuner) searchModel(name string, candidates []models.Params, X [][]float64, y []float64, folds []split.Fold) (models.Params, float64) {
	scores := make([]float64, len(candidates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < t.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				scores[i] = t.scoreCandidate(name, candidates[i], X, y, folds)
			}
		}()
	}
	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	bestIdx := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] < scores[bestIdx] {
			bestIdx = i
		}
	}

	t.logTopCandidates(name, candidates, scores)

	return candidates[bestIdx], scores[bestIdx]
}

// scoreCandidate averages the fold MAEs for one hyperparameter combination.
// An unfittable candidate scores +Inf so it can never win.
func (t *Tuner) scoreCandidate(name string, params models.Params, X [][]float64, y []float64, folds []split.Fold) float64 {
	total := 0.0
	for _, fold := range folds {
		model, err := t.factory(name, params, t.seed)
		if err != nil {
			return math.Inf(1)
		}

		trainX := X[:fold.TrainEnd]
		trainY := t.target.Apply(y[:fold.TrainEnd])
		if err := model.Fit(trainX, trainY); err != nil {
			return math.Inf(1)
		}

		preds, err := model.Predict(X[fold.TrainEnd:fold.ValEnd])
		if err != nil {
			return math.Inf(1)
		}
		preds = t.target.Invert(preds)

		mae := 0.0
		actual := y[fold.TrainEnd:fold.ValEnd]
		for i := range actual {
			mae += math.Abs(actual[i] - preds[i])
		}
		total += mae / float64(len(actual))
	}
	return total / float64(len(folds))
}

func (t *Tuner) logTopCandidates(name string, candidates []models.Params, scores []float64) {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	top := topCandidatesLogged
	if top > len(order) {
		top = len(order)
	}
	for rank := 0; rank < top; rank++ {
		idx := order[rank]
		t.logger.WithFields(logrus.Fields{
			"model":  name,
			"rank":   rank + 1,
			"cv_mae": scores[idx],
			"params": candidates[idx],
		}).Info("Tuning candidate")
	}
}

func enumerateTreeGrid(grid config.DecisionTreeGrid) []models.Params {
	var out []models.Params
	for _, depth := range grid.MaxDepth {
		for _, minSplit := range grid.MinSamplesSplit {
			for _, minLeaf := range grid.MinSamplesLeaf {
				out = append(out, models.Params{Tree: &models.TreeParams{
					MaxDepth:        depth,
					MinSamplesSplit: minSplit,
					MinSamplesLeaf:  minLeaf,
				}})
			}
		}
	}
	return out
}

func enumerateForestGrid(grid config.RandomForestGrid) []models.Params {
	var out []models.Params
	for _, n := range grid.NEstimators {
		for _, depth := range grid.MaxDepth {
			for _, minSplit := range grid.MinSamplesSplit {
				for _, minLeaf := range grid.MinSamplesLeaf {
					out = append(out, models.Params{Forest: &models.ForestParams{
						NEstimators: n,
						TreeParams: models.TreeParams{
							MaxDepth:        depth,
							MinSamplesSplit: minSplit,
							MinSamplesLeaf:  minLeaf,
						},
					}})
				}
			}
		}
	}
	return out
}

func enumerateBoostingGrid(grid config.GradientBoostingGrid) []models.Params {
	var out []models.Params
	for _, n := range grid.NEstimators {
		for _, lr := range grid.LearningRate {
			for _, depth := range grid.MaxDepth {
				for _, minSplit := range grid.MinSamplesSplit {
					for _, minLeaf := range grid.MinSamplesLeaf {
						out = append(out, models.Params{Boosting: &models.BoostingParams{
							NEstimators:  n,
							LearningRate: lr,
							TreeParams: models.TreeParams{
								MaxDepth:        depth,
								MinSamplesSplit: minSplit,
								MinSamplesLeaf:  minLeaf,
							},
						}})
					}
				}
			}
		}
	}
	return out
}
