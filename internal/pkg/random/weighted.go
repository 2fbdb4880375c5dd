package random

import (
	"github.com/yigit/fneseed/internal/pkg/apperrors"
)

// Weighted pairs a value with its selection weight
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// W is shorthand for building a Weighted entry
func W[T any](value T, weight float64) Weighted[T] {
	return Weighted[T]{Value: value, Weight: weight}
}

// WeightedChoice picks an entry by cumulative-weight roulette.
//
// Edge cases:
//   - an empty list returns ErrEmptyChoices
//   - negative weights count as zero
//   - if no entry has positive weight the pick is uniform over all entries
//   - a zero-weight entry is never returned while any weight is positive
//   - the first positive entry whose cumulative weight is >= the draw wins,
//     and rounding overrun falls back to the last positive entry
func WeightedChoice[T any](s *Sampler, items []Weighted[T]) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, apperrors.ErrEmptyChoices
	}

	total := 0.0
	last := -1
	for i, it := range items {
		if it.Weight > 0 {
			total += it.Weight
			last = i
		}
	}
	if last < 0 {
		return items[s.rng.IntN(len(items))].Value, nil
	}

	draw := s.rng.Float64() * total
	cumulative := 0.0
	for _, it := range items {
		if it.Weight <= 0 {
			continue
		}
		cumulative += it.Weight
		if cumulative >= draw {
			return it.Value, nil
		}
	}
	return items[last].Value, nil
}

// MustWeightedChoice is WeightedChoice for tables that are non-empty by construction
func MustWeightedChoice[T any](s *Sampler, items []Weighted[T]) T {
	v, err := WeightedChoice(s, items)
	if err != nil {
		panic(err)
	}
	return v
}
