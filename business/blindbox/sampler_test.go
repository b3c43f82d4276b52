package blindbox

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays a fixed sequence of values, cycling when exhausted.
type scriptedSource struct {
	values []float64
	next   int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func equalBox() []WeightedOutcome[string] {
	return []WeightedOutcome[string]{
		{Name: "A", Payload: "a.png", Weight: 1},
		{Name: "B", Payload: "b.png", Weight: 1},
		{Name: "C", Payload: "c.png", Weight: 1},
		{Name: "D", Payload: "d.png", Weight: 1},
	}
}

func names(results []DrawResult[string]) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Outcome.Name
	}
	return out
}

func TestDraw_QuantityCorrespondence(t *testing.T) {
	src := NewSeededSource(7)

	for _, n := range []int{1, 2, 5, 64, 1000} {
		results, err := Draw(equalBox(), n, src)
		require.NoError(t, err)
		require.Len(t, results, n)

		for i, r := range results {
			assert.Equal(t, i, r.DrawIndex)
		}
	}
}

func TestDraw_PayloadTravelsWithOutcome(t *testing.T) {
	results, err := Draw(equalBox(), 20, NewSeededSource(3))
	require.NoError(t, err)

	for _, r := range results {
		assert.Equal(t, map[string]string{"A": "a.png", "B": "b.png", "C": "c.png", "D": "d.png"}[r.Outcome.Name], r.Outcome.Payload)
	}
}

func TestDraw_BoundarySelection(t *testing.T) {
	outcomes := []WeightedOutcome[string]{
		{Name: "A", Weight: 0.25},
		{Name: "B", Weight: 0.25},
		{Name: "C", Weight: 0.5},
	}
	src := &scriptedSource{values: []float64{0, 0.2499, 0.25, 0.4999, 0.5, 0.9999999999999999}}

	results, err := Draw(outcomes, 6, src)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "A", "B", "B", "C", "C"}, names(results))
}

func TestDraw_ZeroWeightNeverSelected(t *testing.T) {
	outcomes := []WeightedOutcome[string]{
		{Name: "zero-head", Weight: 0},
		{Name: "A", Weight: 1},
		{Name: "zero-mid", Weight: 0},
		{Name: "B", Weight: 1},
		{Name: "zero-tail", Weight: 0},
	}

	t.Run("edge values", func(t *testing.T) {
		src := &scriptedSource{values: []float64{0, 0.5, math.Nextafter(0.5, 0), math.Nextafter(1, 0)}}

		results, err := Draw(outcomes, 4, src)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "A", "B"}, names(results))
	})

	t.Run("many draws", func(t *testing.T) {
		results, err := Draw(outcomes, 50000, NewSeededSource(11))
		require.NoError(t, err)

		for _, r := range results {
			assert.NotContains(t, r.Outcome.Name, "zero")
		}
	})
}

func TestDraw_DeterministicUnderSeed(t *testing.T) {
	first, err := Draw(equalBox(), 500, NewSeededSource(2024))
	require.NoError(t, err)

	second, err := Draw(equalBox(), 500, NewSeededSource(2024))
	require.NoError(t, err)

	if diff := cmp.Diff(names(first), names(second)); diff != "" {
		t.Fatalf("same seed produced different draws (-first +second):\n%s", diff)
	}

	other, err := Draw(equalBox(), 500, NewSeededSource(2025))
	require.NoError(t, err)
	assert.NotEqual(t, names(first), names(other))
}

func TestDraw_NormalizesUnscaledWeights(t *testing.T) {
	// weights 30/10 behave like 0.75/0.25
	outcomes := []WeightedOutcome[string]{
		{Name: "big", Weight: 30},
		{Name: "small", Weight: 10},
	}
	src := &scriptedSource{values: []float64{0.74, 0.76}}

	results, err := Draw(outcomes, 2, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"big", "small"}, names(results))
}

func TestDraw_RoundingFallsBackToLastPositive(t *testing.T) {
	outcomes := []WeightedOutcome[string]{
		{Name: "A", Weight: 0.1},
		{Name: "B", Weight: 0.2},
		{Name: "C", Weight: 0.7},
		{Name: "gone", Weight: 0},
	}
	// a misbehaving source at exactly 1 must still land on a real outcome
	src := &scriptedSource{values: []float64{1}}

	results, err := Draw(outcomes, 1, src)
	require.NoError(t, err)
	assert.Equal(t, "C", results[0].Outcome.Name)
}

func TestDraw_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []WeightedOutcome[string]
		quantity int
		want     error
	}{
		{"zero quantity", equalBox(), 0, ErrInvalidQuantity},
		{"negative quantity", equalBox(), -3, ErrInvalidQuantity},
		{"empty table", nil, 1, ErrInvalidDistribution},
		{"all zero weights", []WeightedOutcome[string]{{Name: "A"}, {Name: "B"}}, 1, ErrInvalidDistribution},
		{"negative weight", []WeightedOutcome[string]{{Name: "A", Weight: 2}, {Name: "B", Weight: -1}}, 1, ErrInvalidDistribution},
		{"nan weight", []WeightedOutcome[string]{{Name: "A", Weight: math.NaN()}}, 1, ErrInvalidDistribution},
		{"infinite weight", []WeightedOutcome[string]{{Name: "A", Weight: math.Inf(1)}}, 1, ErrInvalidDistribution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Draw(tt.outcomes, tt.quantity, NewSeededSource(1))
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Nil(t, results)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(equalBox()))
	assert.NoError(t, Validate([]WeightedOutcome[string]{{Name: "A", Weight: 0}, {Name: "B", Weight: 0.01}}))
	assert.ErrorIs(t, Validate([]WeightedOutcome[string]{{Name: "A", Weight: 0}}), ErrInvalidDistribution)
}

func TestDefaultSource_Range(t *testing.T) {
	src := DefaultSource()
	for i := 0; i < 10000; i++ {
		v := src.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestCryptoSource_NoSilentFallback(t *testing.T) {
	src := cryptoSource{r: failingReader{}}
	assert.PanicsWithValue(t, "blindbox: random source unavailable: entropy exhausted", func() {
		src.Float64()
	})

	// all-zero entropy maps to exactly 0, all-ones to just below 1
	assert.Equal(t, 0.0, cryptoSource{r: bytes.NewReader(make([]byte, 8))}.Float64())
	assert.Less(t, cryptoSource{r: bytes.NewReader(bytes.Repeat([]byte{0xff}, 8))}.Float64(), 1.0)
}
