// Package ingest loads the raw transaction ledger and turns it into the
// gap-free daily series the forecasting core consumes: amounts are validated
// and summed per calendar day, then the series is reindexed over the full
// date range with missing days filled with zero.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/manojb/expensecast/internal/config"
	"github.com/manojb/expensecast/internal/timeseries"
	"github.com/manojb/expensecast/internal/utils"
)

const dateLayout = "02-01-2006"

// LoadLedger reads the transaction CSV and produces a validated DailySeries.
func LoadLedger(cfg config.IngestionConfig, logger *logrus.Logger) (*timeseries.DailySeries, error) {
	file, err := os.Open(cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, utils.NewValidationError("ledger has no data rows")
	}

	dateIdx, amtIdx, err := locateColumns(records[0], cfg.DateColumn, cfg.AmtColumn)
	if err != nil {
		return nil, err
	}

	// Sum amounts per calendar day. Decimal arithmetic keeps cent-level
	// amounts exact until the series is handed to the models.
	totals := make(map[time.Time]decimal.Decimal)
	var minDate, maxDate time.Time
	for line, record := range records[1:] {
		date, err := time.ParseInLocation(dateLayout, record[dateIdx], time.UTC)
		if err != nil {
			return nil, utils.NewValidationErrorf(
				"ledger row %d: invalid date %q (expected DD-MM-YYYY)", line+2, record[dateIdx])
		}
		amount, err := decimal.NewFromString(record[amtIdx])
		if err != nil {
			return nil, utils.NewValidationErrorf(
				"ledger row %d: the %q column contains a non-numeric value %q",
				line+2, cfg.AmtColumn, record[amtIdx])
		}

		totals[date] = totals[date].Add(amount)
		if minDate.IsZero() || date.Before(minDate) {
			minDate = date
		}
		if date.After(maxDate) {
			maxDate = date
		}
	}

	// Reindex to a complete daily range; days without transactions are
	// legitimate zero-spend days, not missing data.
	n := int(maxDate.Sub(minDate).Hours()/24) + 1
	dates := make([]time.Time, n)
	values := make([]float64, n)
	zeroFilled := 0
	for i := 0; i < n; i++ {
		date := minDate.AddDate(0, 0, i)
		dates[i] = date
		if total, ok := totals[date]; ok {
			values[i] = total.InexactFloat64()
		} else {
			zeroFilled++
		}
	}

	series, err := timeseries.New(dates, values)
	if err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"rows":        len(records) - 1,
		"days":        n,
		"zero_filled": zeroFilled,
		"from":        minDate.Format("2006-01-02"),
		"to":          maxDate.Format("2006-01-02"),
	}).Info("Loaded transaction ledger")

	return series, nil
}

func locateColumns(header []string, dateCol, amtCol string) (int, int, error) {
	dateIdx, amtIdx := -1, -1
	for i, name := range header {
		switch name {
		case dateCol:
			dateIdx = i
		case amtCol:
			amtIdx = i
		}
	}
	if dateIdx < 0 {
		return 0, 0, utils.NewValidationErrorf("ledger is missing the %q column", dateCol)
	}
	if amtIdx < 0 {
		return 0, 0, utils.NewValidationErrorf("ledger is missing the %q column", amtCol)
	}
	return dateIdx, amtIdx, nil
}
