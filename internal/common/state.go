package common

import (
	"math/rand/v2"
	"sync"
)

// streamSalt separates the two PCG words derived from one seed.
const streamSalt = 0x9e3779b97f4a7c15

// RNG is a seeded PCG stream that satisfies rand.Source, so it can be handed
// to distuv distributions as Src. Calls are serialized; a fixed seed gives the
// same sequence as long as one session owns the stream.
type RNG struct {
	pcg *rand.PCG
	mu  sync.Mutex
}

func NewRNG(seed uint64) *RNG {
	return &RNG{pcg: rand.NewPCG(seed, seed^streamSalt)}
}

/* потокобезопасные обёртки */

func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	v := r.pcg.Uint64()
	r.mu.Unlock()
	return v
}

// Float64 returns a value in [0, 1) with 53 random bits.
func (r *RNG) Float64() float64 {
	return float64(r.Uint64()<<11>>11) / (1 << 53)
}

func (r *RNG) Seed(seed uint64) {
	r.mu.Lock()
	r.pcg.Seed(seed, seed^streamSalt)
	r.mu.Unlock()
}

// Split derives an independent stream, e.g. for a reference sampler that must
// not disturb the main sequence.
func (r *RNG) Split() *RNG {
	return NewRNG(r.Uint64())
}
