package ingest

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojb/expensecast/internal/config"
)

func writeLedger(t *testing.T, content string) config.IngestionConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trandata.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return config.IngestionConfig{LedgerPath: path, DateColumn: "Date", AmtColumn: "Tran Amt"}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLoadLedger_AggregatesAndZeroFills(t *testing.T) {
	cfg := writeLedger(t, `Date,Tran Amt
01-03-2025,100.50
01-03-2025,49.50
04-03-2025,20.00
`)

	series, err := LoadLedger(cfg, quietLogger())
	require.NoError(t, err)

	// 01..04 March: gap days 02 and 03 are zero-filled.
	require.Equal(t, 4, series.Len())
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), series.Dates[0])
	assert.Equal(t, 150.0, series.Values[0])
	assert.Equal(t, 0.0, series.Values[1])
	assert.Equal(t, 0.0, series.Values[2])
	assert.Equal(t, 20.0, series.Values[3])

	assert.NoError(t, series.Validate())
}

func TestLoadLedger_UnsortedInputStillChronological(t *testing.T) {
	cfg := writeLedger(t, `Date,Tran Amt
05-03-2025,5.00
01-03-2025,1.00
03-03-2025,3.00
`)

	series, err := LoadLedger(cfg, quietLogger())
	require.NoError(t, err)
	require.Equal(t, 5, series.Len())
	assert.Equal(t, []float64{1, 0, 3, 0, 5}, series.Values)
}

func TestLoadLedger_RejectsNonNumericAmount(t *testing.T) {
	cfg := writeLedger(t, `Date,Tran Amt
01-03-2025,abc
`)
	_, err := LoadLedger(cfg, quietLogger())
	assert.Error(t, err)
}

func TestLoadLedger_RejectsBadDate(t *testing.T) {
	cfg := writeLedger(t, `Date,Tran Amt
2025-03-01,5.00
`)
	_, err := LoadLedger(cfg, quietLogger())
	assert.Error(t, err)
}

func TestLoadLedger_RejectsMissingColumns(t *testing.T) {
	cfg := writeLedger(t, `When,How Much
01-03-2025,5.00
`)
	_, err := LoadLedger(cfg, quietLogger())
	assert.Error(t, err)
}

func TestLoadLedger_RejectsEmptyLedger(t *testing.T) {
	cfg := writeLedger(t, "Date,Tran Amt\n")
	_, err := LoadLedger(cfg, quietLogger())
	assert.Error(t, err)
}
