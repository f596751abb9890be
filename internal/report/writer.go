// Package report renders forecast output: one predictions CSV per model and
// a Markdown run summary. Cell values that a spreadsheet would interpret as
// formulas are neutralized before writing.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/manojb/expensecast/internal/baselines"
	"github.com/manojb/expensecast/internal/forecast"
)

// ModelSummary is one model's test-set evaluation for the run summary.
// Params is a short rendering of the hyperparameters the model ran with,
// empty for models that have none.
type ModelSummary struct {
	Name   string
	MAE    float64
	RMSE   float64
	R2     float64
	Params string
}

// WritePredictions writes the forecast as a two-column CSV, amounts fixed to
// two decimal places.
func WritePredictions(dir, modelName string, points []forecast.Point) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("future_predictions_%s.csv", modelName))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create predictions file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Date", "Predicted Tran Amt"}); err != nil {
		return "", err
	}
	for _, p := range points {
		record := []string{
			sanitizeCell(p.Date.Format("2006-01-02")),
			sanitizeCell(decimal.NewFromFloat(p.Value).StringFixed(2)),
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to write predictions: %w", err)
	}
	return path, nil
}

// WriteSummary renders the Markdown run summary: per-model test metrics and
// the baseline scores they are expected to beat.
func WriteSummary(dir, runID string, summaries []ModelSummary, baselineScores []*baselines.Scores) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, "run_summary.md")

	var b strings.Builder
	fmt.Fprintf(&b, "# Forecast run %s\n\n", runID)

	b.WriteString("## Models\n\n")
	b.WriteString("| Model | Test MAE | Test RMSE | Test R2 | Hyperparameters |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %s |\n", s.Name, s.MAE, s.RMSE, s.R2, s.Params)
	}

	if len(baselineScores) > 0 {
		b.WriteString("\n## Baselines\n\n")
		b.WriteString("| Baseline | Test MAE | Test RMSE | Test R2 |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, s := range baselineScores {
			fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f |\n", s.Name, s.MAE, s.RMSE, s.R2)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write run summary: %w", err)
	}
	return path, nil
}

// sanitizeCell prefixes values that spreadsheets would execute as formulas.
func sanitizeCell(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + value
	}
	return value
}
