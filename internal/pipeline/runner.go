// Package pipeline wires the full forecasting run together: ingest the
// ledger, derive features, evaluate every model on a chronological holdout,
// tune hyperparameters, refit on full history and emit the future forecast.
package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/manojb/expensecast/internal/baselines"
	"github.com/manojb/expensecast/internal/config"
	"github.com/manojb/expensecast/internal/features"
	"github.com/manojb/expensecast/internal/forecast"
	"github.com/manojb/expensecast/internal/ingest"
	"github.com/manojb/expensecast/internal/metrics"
	"github.com/manojb/expensecast/internal/models"
	"github.com/manojb/expensecast/internal/report"
	"github.com/manojb/expensecast/internal/split"
	"github.com/manojb/expensecast/internal/timeseries"
	"github.com/manojb/expensecast/internal/transform"
	"github.com/manojb/expensecast/internal/tuning"
)

// modelOrder fixes the evaluation and reporting order.
var modelOrder = []string{
	models.LinearRegressionName,
	models.DecisionTreeName,
	models.RandomForestName,
	models.GradientBoostingName,
}

// Runner executes one end-to-end forecast run.
type Runner struct {
	cfg    *config.Config
	logger *logrus.Logger
	runID  string
}

// NewRunner creates a runner with a fresh run ID.
func NewRunner(cfg *config.Config, logger *logrus.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logger, runID: uuid.NewString()}
}

// Run forecasts every day from the day after the last observed date through
// futureDate, for each configured model. Invariant violations abort the run;
// degraded conditions are logged and the run completes.
func (r *Runner) Run(futureDate time.Time) error {
	log := r.logger.WithField("run_id", r.runID)
	log.Info("Starting forecast run")

	series, err := ingest.LoadLedger(r.cfg.Ingestion, r.logger)
	if err != nil {
		return err
	}
	if err := series.Validate(); err != nil {
		return err
	}

	lastObserved := series.Dates[series.Len()-1]
	horizonStart := lastObserved.AddDate(0, 0, 1)
	if futureDate.Before(horizonStart) {
		return fmt.Errorf("future date %s is not after the last observed date %s",
			futureDate.Format("2006-01-02"), lastObserved.Format("2006-01-02"))
	}

	target := transform.None()
	if r.cfg.Transform.Enabled {
		target, err = transform.New(r.cfg.Transform.Method)
		if err != nil {
			return err
		}
	}

	builder := features.NewBuilder(features.Options{
		Lags:           r.cfg.Features.Lags,
		RollingWindows: r.cfg.Features.RollingWindows,
		Calendar:       r.cfg.Features.Calendar,
	}, r.logger)

	table, y := builder.BuildTraining(series)
	partition, err := split.Chronological(table, y, r.cfg.Evaluation.TestFraction)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"features": len(table.Columns),
		"train":    partition.XTrain.NumRows(),
		"test":     partition.XTest.NumRows(),
	}).Info("Built feature table and chronological split")

	baselineScores := r.evaluateBaselines(partition)

	selected := models.DefaultParams(&r.cfg.Models)
	if r.cfg.Tuning.Enabled {
		tuner := tuning.New(r.cfg.Tuning, r.cfg.Models.Seed, target, r.logger)
		result := tuner.Run(partition.XTrain.Rows, partition.YTrain, selected)
		selected = result.Selected
	}

	var summaries []report.ModelSummary
	for _, name := range modelOrder {
		summary, err := r.runModel(name, selected[name], builder, table, y, partition, series, target, horizonStart, futureDate)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		summaries = append(summaries, *summary)
	}

	summaryPath, err := report.WriteSummary(r.cfg.Report.OutputDir, r.runID, summaries, baselineScores)
	if err != nil {
		log.WithError(err).Warn("Failed to write run summary")
	} else {
		log.WithField("path", summaryPath).Info("Forecast run complete")
	}
	return nil
}

// runModel evaluates one model on the holdout, refits it on full history and
// writes its forecast.
func (r *Runner) runModel(
	name string,
	params models.Params,
	builder *features.Builder,
	table *features.Table,
	y []float64,
	partition *split.Result,
	series *timeseries.DailySeries,
	target *transform.Target,
	horizonStart, futureDate time.Time,
) (*report.ModelSummary, error) {
	log := r.logger.WithFields(logrus.Fields{"run_id": r.runID, "model": name})

	model, err := models.New(name, params, r.cfg.Models.Seed)
	if err != nil {
		return nil, err
	}

	// Holdout evaluation: fit on the training block only.
	if err := model.Fit(partition.XTrain.Rows, target.Apply(partition.YTrain)); err != nil {
		return nil, err
	}
	preds, err := model.Predict(partition.XTest.Rows)
	if err != nil {
		return nil, err
	}
	preds = target.Invert(preds)

	mae, err := metrics.MAE(partition.YTest, preds)
	if err != nil {
		return nil, err
	}
	rmse, err := metrics.RMSE(partition.YTest, preds)
	if err != nil {
		return nil, err
	}
	r2, err := metrics.R2(partition.YTest, preds)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"mae": mae, "rmse": rmse, "r2": r2}).Info("Holdout evaluation")

	// Refit on the complete feature table before forecasting.
	final, err := models.New(name, params, r.cfg.Models.Seed)
	if err != nil {
		return nil, err
	}
	if err := final.Fit(table.Rows, target.Apply(y)); err != nil {
		return nil, err
	}

	forecaster := forecast.New(builder, final, table.Columns, target, r.logger)
	points, err := forecaster.Forecast(series, horizonStart, futureDate)
	if err != nil {
		return nil, err
	}

	path, err := report.WritePredictions(r.cfg.Report.OutputDir, name, points)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"days": len(points), "path": path}).Info("Wrote forecast")

	return &report.ModelSummary{Name: name, MAE: mae, RMSE: rmse, R2: r2, Params: renderParams(params)}, nil
}

// renderParams compacts the active hyperparameter family to JSON for the run
// summary, empty when the model has none.
func renderParams(p models.Params) string {
	var v interface{}
	switch {
	case p.Tree != nil:
		v = p.Tree
	case p.Forest != nil:
		v = p.Forest
	case p.Boosting != nil:
		v = p.Boosting
	default:
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// evaluateBaselines scores the naive forecasters on the same holdout the
// models are judged on. Baseline failures never fail the run.
func (r *Runner) evaluateBaselines(partition *split.Result) []*baselines.Scores {
	trainSeries, err := timeseries.New(partition.XTrain.Dates, partition.YTrain)
	if err != nil {
		r.logger.WithError(err).Warn("Skipping baselines")
		return nil
	}
	horizon := len(partition.YTest)

	var scores []*baselines.Scores
	run := func(name string, predict func() ([]float64, error)) {
		preds, err := predict()
		if err != nil {
			r.logger.WithError(err).WithField("baseline", name).Warn("Baseline unavailable")
			return
		}
		score, err := baselines.Evaluate(name, partition.YTest, preds)
		if err != nil {
			r.logger.WithError(err).WithField("baseline", name).Warn("Baseline evaluation failed")
			return
		}
		scores = append(scores, score)
	}

	run("last_value", func() ([]float64, error) {
		return baselines.LastValue(trainSeries, horizon)
	})
	run("rolling_mean_7", func() ([]float64, error) {
		return baselines.RollingMean(trainSeries, 7, horizon)
	})
	run("seasonal_naive_7", func() ([]float64, error) {
		return baselines.SeasonalNaive(trainSeries, 7, horizon)
	})
	return scores
}
