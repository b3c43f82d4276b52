// Package blindbox draws mystery item contents from a weighted outcome table.
package blindbox

import (
	"errors"
	"math"
)

var (
	ErrInvalidDistribution = errors.New("invalid blind box distribution")
	ErrInvalidQuantity     = errors.New("quantity must be greater than 0")
)

// WeightedOutcome is one possible result of opening a box. Weights are
// relative and need not sum to 1.
type WeightedOutcome[T any] struct {
	Name    string
	Payload T
	Weight  float64
}

// DrawResult is the outcome picked for one purchased unit.
type DrawResult[T any] struct {
	Outcome   WeightedOutcome[T]
	DrawIndex int
}

// Validate rejects empty tables, negative or non-finite weights and tables
// whose weights sum to zero.
func Validate[T any](outcomes []WeightedOutcome[T]) error {
	_, err := totalWeight(outcomes)
	return err
}

func totalWeight[T any](outcomes []WeightedOutcome[T]) (float64, error) {
	if len(outcomes) == 0 {
		return 0, ErrInvalidDistribution
	}

	var total float64
	for _, o := range outcomes {
		if o.Weight < 0 || math.IsNaN(o.Weight) || math.IsInf(o.Weight, 0) {
			return 0, ErrInvalidDistribution
		}
		total += o.Weight
	}

	if total <= 0 || math.IsInf(total, 0) {
		return 0, ErrInvalidDistribution
	}

	return total, nil
}

// Draw picks quantity outcomes independently, with replacement, each with
// probability weight/total.
func Draw[T any](outcomes []WeightedOutcome[T], quantity int, src RandomSource) ([]DrawResult[T], error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	total, err := totalWeight(outcomes)
	if err != nil {
		return nil, err
	}

	cdf := cumulative(outcomes, total)
	last := lastPositive(outcomes)

	results := make([]DrawResult[T], quantity)
	for i := 0; i < quantity; i++ {
		idx := pick(cdf, src.Float64(), last)
		results[i] = DrawResult[T]{
			Outcome:   outcomes[idx],
			DrawIndex: i,
		}
	}

	return results, nil
}

func cumulative[T any](outcomes []WeightedOutcome[T], total float64) []float64 {
	cdf := make([]float64, len(outcomes))

	var acc float64
	for i, o := range outcomes {
		acc += o.Weight
		cdf[i] = acc / total
	}

	return cdf
}

// pick returns the first index whose interval [cdf[i-1], cdf[i]) contains u.
// A zero-weight outcome has cdf[i] == cdf[i-1] and can never contain u.
func pick(cdf []float64, u float64, fallback int) int {
	for i, bound := range cdf {
		if u < bound {
			return i
		}
	}

	// rounding left the final bound a hair below 1
	return fallback
}

func lastPositive[T any](outcomes []WeightedOutcome[T]) int {
	for i := len(outcomes) - 1; i >= 0; i-- {
		if outcomes[i].Weight > 0 {
			return i
		}
	}
	return len(outcomes) - 1
}
