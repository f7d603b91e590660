package enhancers

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure Random implements the interface.
var _ driven.Selector = (*Random)(nil)

// Random picks variants with a seeded PCG generator.
// It is safe for concurrent use.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a seeded selector. A zero seed uses the clock.
func NewSelector(seed uint64) *Random {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // clock seed, not security sensitive
	}
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))} //nolint:gosec // variant choice only
}

// Intn returns a value in [0, n).
func (r *Random) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// Float64 returns a value in [0, 1).
func (r *Random) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Fixed always returns the same choices. Useful for reproducible output.
type Fixed struct {
	Index int
	Value float64
}

// Intn returns Index clamped to [0, n).
func (f Fixed) Intn(n int) int {
	switch {
	case f.Index < 0:
		return 0
	case f.Index >= n:
		return n - 1
	default:
		return f.Index
	}
}

// Float64 returns Value.
func (f Fixed) Float64() float64 {
	return f.Value
}
