// Package dice provides the randomness abstraction used by the combat simulator.
package dice

import (
	"math/rand/v2"
	"sync"
)

// Source is the randomness provider for block checks.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// seededSource implements Source with a PCG generator guarded by a mutex.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a reproducible Source seeded from seed.
//
// Postcondition: two sources built from the same seed yield the same sequence
// when called from a single goroutine.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" otherwise.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// FixedSource replays Values in order, wrapping around at the end.
// Each value is reduced modulo n. Intended for tests.
type FixedSource struct {
	mu     sync.Mutex
	Values []int
	pos    int
}

// Intn returns the next scripted value modulo n.
//
// Precondition: n > 0 and len(Values) > 0.
func (f *FixedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.Values[f.pos%len(f.Values)]
	f.pos++
	return ((v % n) + n) % n
}
