package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/manojb/expensecast/internal/config"
	"github.com/manojb/expensecast/internal/logging"
	"github.com/manojb/expensecast/internal/pipeline"
)

const futureDateLayout = "02/01/2006"

func main() {
	futureDateFlag := flag.String("future-date", "",
		"last day to forecast, DD/MM/YYYY (default: last day of the current quarter)")
	flag.Parse()

	// Load .env file if present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	futureDate, err := resolveFutureDate(*futureDateFlag, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --future-date: %v\n", err)
		os.Exit(2)
	}

	runner := pipeline.NewRunner(cfg, logger)
	if err := runner.Run(futureDate); err != nil {
		logger.WithError(err).Error("Forecast run failed")
		os.Exit(1)
	}
}

// resolveFutureDate parses the flag value, falling back to the last day of
// the quarter containing now.
func resolveFutureDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return quarterEnd(now), nil
	}
	d, err := time.Parse(futureDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected DD/MM/YYYY: %w", err)
	}
	return d, nil
}

func quarterEnd(now time.Time) time.Time {
	quarter := (int(now.Month()) - 1) / 3
	firstOfNext := time.Date(now.Year(), time.Month(quarter*3+4), 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.AddDate(0, 0, -1)
}
