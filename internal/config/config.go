package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Ingestion   IngestionConfig  `mapstructure:"ingestion"`
	Features    FeaturesConfig   `mapstructure:"features"`
	Evaluation  EvaluationConfig `mapstructure:"evaluation"`
	Transform   TransformConfig  `mapstructure:"target_transform"`
	Tuning      TuningConfig     `mapstructure:"tuning"`
	Models      ModelsConfig     `mapstructure:"models"`
	Report      ReportConfig     `mapstructure:"report"`
}

type IngestionConfig struct {
	LedgerPath string `mapstructure:"ledger_path"`
	DateColumn string `mapstructure:"date_column"`
	AmtColumn  string `mapstructure:"amount_column"`
}

type FeaturesConfig struct {
	Lags           []int `mapstructure:"lags"`
	RollingWindows []int `mapstructure:"rolling_windows"`
	Calendar       bool  `mapstructure:"calendar"`
}

type EvaluationConfig struct {
	TestFraction float64 `mapstructure:"test_fraction"`
}

type TransformConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"`
}

// TuningConfig drives the time-series hyperparameter search. Grids are typed
// and closed per model family so bad values fail at config load, not at the
// first grid-point evaluation.
type TuningConfig struct {
	Enabled          bool                 `mapstructure:"enabled"`
	TimeSeriesSplits int                  `mapstructure:"time_series_splits"`
	PersistPath      string               `mapstructure:"persist_path"`
	ReuseSavedParams bool                 `mapstructure:"reuse_saved_params"`
	DecisionTree     DecisionTreeGrid     `mapstructure:"decision_tree"`
	RandomForest     RandomForestGrid     `mapstructure:"random_forest"`
	GradientBoosting GradientBoostingGrid `mapstructure:"gradient_boosting"`
}

type DecisionTreeGrid struct {
	MaxDepth        []int `mapstructure:"max_depth"`
	MinSamplesSplit []int `mapstructure:"min_samples_split"`
	MinSamplesLeaf  []int `mapstructure:"min_samples_leaf"`
}

type RandomForestGrid struct {
	NEstimators     []int `mapstructure:"n_estimators"`
	MaxDepth        []int `mapstructure:"max_depth"`
	MinSamplesSplit []int `mapstructure:"min_samples_split"`
	MinSamplesLeaf  []int `mapstructure:"min_samples_leaf"`
}

type GradientBoostingGrid struct {
	NEstimators     []int     `mapstructure:"n_estimators"`
	LearningRate    []float64 `mapstructure:"learning_rate"`
	MaxDepth        []int     `mapstructure:"max_depth"`
	MinSamplesSplit []int     `mapstructure:"min_samples_split"`
	MinSamplesLeaf  []int     `mapstructure:"min_samples_leaf"`
}

// ModelsConfig carries the static default hyperparameters used when tuning is
// disabled, skipped, or falls back on an empty grid.
type ModelsConfig struct {
	Seed             int64                   `mapstructure:"seed"`
	DecisionTree     DecisionTreeDefaults    `mapstructure:"decision_tree"`
	RandomForest     RandomForestDefaults    `mapstructure:"random_forest"`
	GradientBoosting GradientBoostingDefault `mapstructure:"gradient_boosting"`
}

type DecisionTreeDefaults struct {
	MaxDepth        int `mapstructure:"max_depth"`
	MinSamplesSplit int `mapstructure:"min_samples_split"`
	MinSamplesLeaf  int `mapstructure:"min_samples_leaf"`
}

type RandomForestDefaults struct {
	NEstimators     int `mapstructure:"n_estimators"`
	MaxDepth        int `mapstructure:"max_depth"`
	MinSamplesSplit int `mapstructure:"min_samples_split"`
	MinSamplesLeaf  int `mapstructure:"min_samples_leaf"`
}

type GradientBoostingDefault struct {
	NEstimators     int     `mapstructure:"n_estimators"`
	LearningRate    float64 `mapstructure:"learning_rate"`
	MaxDepth        int     `mapstructure:"max_depth"`
	MinSamplesSplit int     `mapstructure:"min_samples_split"`
	MinSamplesLeaf  int     `mapstructure:"min_samples_leaf"`
}

type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvPrefix("expensecast")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	return &config, nil
}

// Validate rejects structurally bad configuration before any pipeline stage
// runs. Grid validation happens here so the tuner never sees a malformed grid.
func (c *Config) Validate() error {
	if c.Evaluation.TestFraction <= 0 || c.Evaluation.TestFraction >= 1 {
		return fmt.Errorf("evaluation.test_fraction must be in (0,1), got %v", c.Evaluation.TestFraction)
	}
	if err := allPositive("features.lags", c.Features.Lags); err != nil {
		return err
	}
	if err := allPositive("features.rolling_windows", c.Features.RollingWindows); err != nil {
		return err
	}
	if c.Transform.Enabled {
		switch c.Transform.Method {
		case "log", "log1p":
		default:
			return fmt.Errorf("target_transform.method must be log or log1p, got %q", c.Transform.Method)
		}
	}
	if c.Tuning.Enabled && c.Tuning.TimeSeriesSplits < 2 {
		return fmt.Errorf("tuning.time_series_splits must be at least 2, got %d", c.Tuning.TimeSeriesSplits)
	}
	grids := map[string][]int{
		"tuning.decision_tree.max_depth":             c.Tuning.DecisionTree.MaxDepth,
		"tuning.decision_tree.min_samples_split":     c.Tuning.DecisionTree.MinSamplesSplit,
		"tuning.decision_tree.min_samples_leaf":      c.Tuning.DecisionTree.MinSamplesLeaf,
		"tuning.random_forest.n_estimators":          c.Tuning.RandomForest.NEstimators,
		"tuning.random_forest.max_depth":             c.Tuning.RandomForest.MaxDepth,
		"tuning.random_forest.min_samples_split":     c.Tuning.RandomForest.MinSamplesSplit,
		"tuning.random_forest.min_samples_leaf":      c.Tuning.RandomForest.MinSamplesLeaf,
		"tuning.gradient_boosting.n_estimators":      c.Tuning.GradientBoosting.NEstimators,
		"tuning.gradient_boosting.max_depth":         c.Tuning.GradientBoosting.MaxDepth,
		"tuning.gradient_boosting.min_samples_split": c.Tuning.GradientBoosting.MinSamplesSplit,
		"tuning.gradient_boosting.min_samples_leaf":  c.Tuning.GradientBoosting.MinSamplesLeaf,
	}
	for key, values := range grids {
		if err := allPositive(key, values); err != nil {
			return err
		}
	}
	for _, lr := range c.Tuning.GradientBoosting.LearningRate {
		if lr <= 0 {
			return fmt.Errorf("tuning.gradient_boosting.learning_rate values must be positive, got %v", lr)
		}
	}
	return nil
}

func allPositive(key string, values []int) error {
	for _, v := range values {
		if v <= 0 {
			return fmt.Errorf("%s values must be positive, got %d", key, v)
		}
	}
	return nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Ingestion
	viper.SetDefault("ingestion.ledger_path", "trandata.csv")
	viper.SetDefault("ingestion.date_column", "Date")
	viper.SetDefault("ingestion.amount_column", "Tran Amt")

	// Time-series features
	viper.SetDefault("features.lags", []int{1, 3, 6, 12})
	viper.SetDefault("features.rolling_windows", []int{7, 14, 30})
	viper.SetDefault("features.calendar", true)

	// Evaluation
	viper.SetDefault("evaluation.test_fraction", 0.2)

	// Target transform
	viper.SetDefault("target_transform.enabled", false)
	viper.SetDefault("target_transform.method", "log1p")

	// Tuning
	viper.SetDefault("tuning.enabled", false)
	viper.SetDefault("tuning.time_series_splits", 3)
	viper.SetDefault("tuning.persist_path", "artifacts/tuning_result.json")
	viper.SetDefault("tuning.reuse_saved_params", true)
	viper.SetDefault("tuning.decision_tree.max_depth", []int{3, 5, 8})
	viper.SetDefault("tuning.decision_tree.min_samples_split", []int{5, 10})
	viper.SetDefault("tuning.decision_tree.min_samples_leaf", []int{3, 5})
	viper.SetDefault("tuning.random_forest.n_estimators", []int{50, 100})
	viper.SetDefault("tuning.random_forest.max_depth", []int{5, 10})
	viper.SetDefault("tuning.random_forest.min_samples_split", []int{5, 10})
	viper.SetDefault("tuning.random_forest.min_samples_leaf", []int{3, 5})
	viper.SetDefault("tuning.gradient_boosting.n_estimators", []int{50, 100})
	viper.SetDefault("tuning.gradient_boosting.learning_rate", []float64{0.05, 0.1})
	viper.SetDefault("tuning.gradient_boosting.max_depth", []int{3, 5})
	viper.SetDefault("tuning.gradient_boosting.min_samples_split", []int{10})
	viper.SetDefault("tuning.gradient_boosting.min_samples_leaf", []int{5})

	// Model defaults (used when tuning is off or falls back)
	viper.SetDefault("models.seed", 42)
	viper.SetDefault("models.decision_tree.max_depth", 5)
	viper.SetDefault("models.decision_tree.min_samples_split", 10)
	viper.SetDefault("models.decision_tree.min_samples_leaf", 5)
	viper.SetDefault("models.random_forest.n_estimators", 100)
	viper.SetDefault("models.random_forest.max_depth", 10)
	viper.SetDefault("models.random_forest.min_samples_split", 10)
	viper.SetDefault("models.random_forest.min_samples_leaf", 5)
	viper.SetDefault("models.gradient_boosting.n_estimators", 100)
	viper.SetDefault("models.gradient_boosting.learning_rate", 0.1)
	viper.SetDefault("models.gradient_boosting.max_depth", 5)
	viper.SetDefault("models.gradient_boosting.min_samples_split", 10)
	viper.SetDefault("models.gradient_boosting.min_samples_leaf", 5)

	// Report
	viper.SetDefault("report.output_dir", "reports")
}
