package dice

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// entropySource draws from a ChaCha8 stream keyed from the OS entropy pool.
type entropySource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCryptoSource returns an unpredictable Source for live simulations.
// It panics if the OS entropy pool cannot be read.
func NewCryptoSource() Source {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("dice: reading entropy: " + err.Error())
	}
	return &entropySource{rng: rand.New(rand.NewChaCha8(seed))}
}

func (s *entropySource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	v := s.rng.IntN(n)
	s.mu.Unlock()
	return v
}
