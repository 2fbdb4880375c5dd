// Package random holds every random draw the seeder makes. All generators share
// one Sampler so a run is reproducible from a single seed.
package random

import (
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/yigit/fneseed/internal/pkg/apperrors"
)

// Sampler is a seeded source of uniform and weighted draws. It is not safe for
// concurrent use; the pipeline is the only caller.
type Sampler struct {
	rng   *rand.Rand
	faker *gofakeit.Faker
	seed  uint64
}

// NewSampler creates a Sampler. A zero seed picks one from the clock.
func NewSampler(seed uint64) *Sampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Sampler{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		faker: gofakeit.New(int64(seed)),
		seed:  seed,
	}
}

// Seed returns the seed the sampler was created with
func (s *Sampler) Seed() uint64 {
	return s.seed
}

// Float64 returns a draw from [0,1)
func (s *Sampler) Float64() float64 {
	return s.rng.Float64()
}

// Chance returns true with probability p
func (s *Sampler) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// IntBetween returns a uniform integer in [min,max]. Reversed bounds are swapped.
func (s *Sampler) IntBetween(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + s.rng.IntN(max-min+1)
}

// FloatBetween returns a uniform float in [min,max)
func (s *Sampler) FloatBetween(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	return min + s.rng.Float64()*(max-min)
}

// DateBetween returns a uniform timestamp in [start,end]
func (s *Sampler) DateBetween(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	span := end.Sub(start)
	return start.Add(time.Duration(s.rng.Int64N(int64(span) + 1)))
}

// Shuffle permutes n elements through swap
func (s *Sampler) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// IPv4 returns a plausible client address for session logs
func (s *Sampler) IPv4() string {
	return s.faker.IPv4Address()
}

// UserAgent returns a plausible browser user agent
func (s *Sampler) UserAgent() string {
	return s.faker.UserAgent()
}

// Sentence returns filler text of roughly words words
func (s *Sampler) Sentence(words int) string {
	return s.faker.Sentence(words)
}

// Choice returns a uniform pick from items
func Choice[T any](s *Sampler, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, apperrors.ErrEmptyChoices
	}
	return items[s.rng.IntN(len(items))], nil
}

// MustChoice is Choice for lists that are non-empty by construction
func MustChoice[T any](s *Sampler, items []T) T {
	v, err := Choice(s, items)
	if err != nil {
		panic(err)
	}
	return v
}

// Sample draws n distinct elements of items without replacement. When n
// exceeds len(items) every element is returned in random order.
func Sample[T any](s *Sampler, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return nil
	}
	idx := s.rng.Perm(len(items))[:n]
	out := make([]T, n)
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
