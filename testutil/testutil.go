package testutil

import (
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// SampleDensity returns the ascending indices in [0, n) picked independently
// with probability density.
func (r *RNG) SampleDensity(n int, density float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, 0, int(float64(n)*density)+1)
	for i := 0; i < n; i++ {
		if r.rand.Float64() < density {
			out = append(out, i)
		}
	}
	return out
}

// SampleExact returns k distinct ascending indices in [0, n).
// It panics if k > n.
func (r *RNG) SampleExact(n, k int) []int {
	if k > n {
		panic("testutil: sample larger than population")
	}

	r.mu.Lock()
	perm := r.rand.Perm(n)
	r.mu.Unlock()

	out := perm[:k]
	slices.Sort(out)
	return out
}

// SortedUnique returns the ascending, duplicate-free indices of values.
// The input is not modified.
func SortedUnique(values []int) []int {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
