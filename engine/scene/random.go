package scene

import "math/rand/v2"

// Random is the uniform random stream consumed by sphere generation and per-frame sampling.
// Implementations need not be safe for concurrent use.
type Random interface {
	// Float32 returns a uniformly distributed value in [0, 1).
	Float32() float32
}

// NewRandom returns a deterministic PCG stream seeded from a single value.
// Two streams created with the same seed yield the same sequence.
//
// Parameters:
//   - seed: the stream seed
//
// Returns:
//   - Random: the seeded stream
func NewRandom(seed uint64) Random {
	return rand.New(rand.NewPCG(seed, seed))
}
