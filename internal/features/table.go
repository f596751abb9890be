package features

import (
	"strings"
	"time"

	"github.com/manojb/expensecast/internal/utils"
)

// Table is an ordered-column feature matrix aligned with a date index. The
// column order is part of the contract: a model fit on a table must only ever
// see rows in that exact column order again.
type Table struct {
	Columns []string
	Dates   []time.Time
	Rows    [][]float64
}

// NumRows returns the number of feature rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// Column returns the values of a single named column, or nil when absent.
func (t *Table) Column(name string) []float64 {
	idx := t.columnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

func (t *Table) columnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Align reorders the table's columns to match the training-time column set.
// A day-of-week dummy missing from this table (a category the horizon never
// produced) is filled with zeros; any other discrepancy between the two
// column sets is a fatal column-mismatch invariant violation.
func (t *Table) Align(columns []string) (*Table, error) {
	indices := make([]int, len(columns))
	for i, col := range columns {
		idx := t.columnIndex(col)
		if idx < 0 && !strings.HasPrefix(col, dowPrefix) {
			return nil, utils.NewInvariantErrorf(utils.ColumnMismatch,
				"column %q expected by the model is missing from the feature table", col)
		}
		indices[i] = idx
	}
	for _, col := range t.Columns {
		if !containsColumn(columns, col) && !strings.HasPrefix(col, dowPrefix) {
			return nil, utils.NewInvariantErrorf(utils.ColumnMismatch,
				"feature table column %q was not present at training time", col)
		}
	}

	rows := make([][]float64, len(t.Rows))
	for r, src := range t.Rows {
		row := make([]float64, len(columns))
		for i, idx := range indices {
			if idx >= 0 {
				row[i] = src[idx]
			}
		}
		rows[r] = row
	}

	out := &Table{
		Columns: append([]string(nil), columns...),
		Dates:   t.Dates,
		Rows:    rows,
	}
	return out, nil
}

func containsColumn(columns []string, name string) bool {
	for _, col := range columns {
		if col == name {
			return true
		}
	}
	return false
}
