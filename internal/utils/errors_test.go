package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("ledger is empty")

	require.Error(t, err)
	assert.Equal(t, "ledger is empty", err.Error())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "ledger is empty", verr.Message)
}

func TestNewValidationErrorf(t *testing.T) {
	err := NewValidationErrorf("column %q not found in %d headers", "Tran Amt", 3)

	require.Error(t, err)
	assert.Equal(t, `column "Tran Amt" not found in 3 headers`, err.Error())
}

func TestInvariantKind_String(t *testing.T) {
	assert.Equal(t, "non_chronological", NonChronological.String())
	assert.Equal(t, "duplicate_dates", DuplicateDates.String())
	assert.Equal(t, "column_mismatch", ColumnMismatch.String())
	assert.Equal(t, "unknown", InvariantKind(99).String())
}

func TestNewInvariantErrorf(t *testing.T) {
	err := NewInvariantErrorf(DuplicateDates, "date %s appears twice", "2025-03-01")

	require.Error(t, err)
	assert.Equal(t, "invariant violation (duplicate_dates): date 2025-03-01 appears twice", err.Error())

	var ierr *InvariantError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, DuplicateDates, ierr.Kind)
}

func TestInvariantError_SurvivesWrapping(t *testing.T) {
	inner := NewInvariantErrorf(NonChronological, "dates out of order at index 4")
	wrapped := fmt.Errorf("building split: %w", inner)

	var ierr *InvariantError
	require.True(t, errors.As(wrapped, &ierr))
	assert.Equal(t, NonChronological, ierr.Kind)
}
