package rng

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// NewRandom returns an RNG seeded from the runtime's global source.
func NewRandom() *RNG {
	return &RNG{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Split derives an independent generator from r. Workers use it so that they
// never share a source.
func (r *RNG) Split() *RNG {
	return &RNG{r: rand.New(rand.NewPCG(r.r.Uint64(), r.r.Uint64()))}
}

// Bool returns a random boolean value.
func (r *RNG) Bool() bool {
	return r.r.IntN(2) == 1
}

// Float32 returns a uniform value in [0, 1).
func (r *RNG) Float32() float32 {
	return r.r.Float32()
}

// IntN returns a uniform value in [0, n). It returns 0 when n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Uint8n returns a random uint8 in [0, n).
func (r *RNG) Uint8n(n uint8) uint8 {
	if n == 0 {
		return 0
	}
	return uint8(r.r.IntN(int(n)))
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
