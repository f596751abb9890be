package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojb/expensecast/internal/baselines"
	"github.com/manojb/expensecast/internal/forecast"
)

func TestWritePredictions(t *testing.T) {
	dir := t.TempDir()
	points := []forecast.Point{
		{Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), Value: 120.5},
		{Date: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), Value: 99},
	}

	path, err := WritePredictions(dir, "linear_regression", points)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "future_predictions_linear_regression.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Predicted Tran Amt\n2026-09-01,120.50\n2026-09-02,99.00\n", string(data))
}

func TestWritePredictions_SanitizesNegativeAmounts(t *testing.T) {
	dir := t.TempDir()
	points := []forecast.Point{
		{Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), Value: -15},
	}

	path, err := WritePredictions(dir, "decision_tree", points)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "'-15.00")
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	summaries := []ModelSummary{
		{Name: "linear_regression", MAE: 10.5, RMSE: 14.2, R2: 0.81},
		{Name: "decision_tree", MAE: 9.1, RMSE: 12.0, R2: 0.85, Params: `{"max_depth":5}`},
	}
	scores := []*baselines.Scores{
		{Name: "last_value", MAE: 25.0, RMSE: 31.0, R2: 0.1},
	}

	path, err := WriteSummary(dir, "run-123", summaries, scores)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# Forecast run run-123")
	assert.Contains(t, text, "| linear_regression | 10.5000 | 14.2000 | 0.8100 |  |")
	assert.Contains(t, text, `| decision_tree | 9.1000 | 12.0000 | 0.8500 | {"max_depth":5} |`)
	assert.Contains(t, text, "| last_value | 25.0000 | 31.0000 | 0.1000 |")
}

func TestSanitizeCell(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", sanitizeCell("=SUM(A1)"))
	assert.Equal(t, "'+1", sanitizeCell("+1"))
	assert.Equal(t, "'@cmd", sanitizeCell("@cmd"))
	assert.Equal(t, "plain", sanitizeCell("plain"))
	assert.Equal(t, "", sanitizeCell(""))
}
