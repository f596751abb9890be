package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog1pRoundTrip(t *testing.T) {
	tr, err := New("log1p")
	require.NoError(t, err)
	assert.True(t, tr.Enabled())

	y := []float64{0, 1, 10, 250.75}
	back := tr.Invert(tr.Apply(y))
	for i := range y {
		assert.InDelta(t, y[i], back[i], 1e-9)
	}
}

func TestLogRoundTrip(t *testing.T) {
	tr, err := New("log")
	require.NoError(t, err)

	y := []float64{1, 10, 99.5}
	back := tr.Invert(tr.Apply(y))
	for i := range y {
		assert.InDelta(t, y[i], back[i], 1e-9)
	}
}

func TestNoneIsIdentity(t *testing.T) {
	tr := None()
	assert.False(t, tr.Enabled())
	assert.Equal(t, 42.5, tr.InvertOne(42.5))
	assert.Equal(t, []float64{1, 2}, tr.Apply([]float64{1, 2}))
}

func TestUnknownMethodRejected(t *testing.T) {
	_, err := New("boxcox")
	assert.Error(t, err)
}
