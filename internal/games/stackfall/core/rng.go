package core

import "math/rand"

// RNG wraps a seeded math/rand source with the range helpers the
// formation generator needs.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG for the given seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

// Float returns a float64 in [0, 1).
func (g *RNG) Float() float64 {
	return g.r.Float64()
}

// Range returns a float64 in [min, max). Reversed bounds are swapped and
// equal bounds return min.
func (g *RNG) Range(min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	if min == max {
		return min
	}
	return min + g.r.Float64()*(max-min)
}

// IntRange returns an int in [min, max], both inclusive.
func (g *RNG) IntRange(min, max int) int {
	if min > max {
		min, max = max, min
	}
	return min + g.r.Intn(max-min+1)
}
