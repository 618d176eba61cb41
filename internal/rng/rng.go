// Package rng is the seeded random source behind grid generation.
//
// The stream is PCG-DXSM (math/rand/v2.PCG) seeded with
// (uint64(seed), uint64(seed) ^ 0x9E3779B97F4A7C15). Every derived value
// (bounded integers, floats, samples) is computed here rather than by the
// math/rand/v2 helpers, so a seed maps to the same sequence on every platform
// and Go release:
//
//   - IntN(n) discards raw outputs below 2^64 mod n, then returns v % n.
//   - Float64 uses the top 53 bits of one output.
//   - Sample is a partial Fisher-Yates over a copy, Shuffle a full one
//     walking from the last index down.
//
// Changing any of the above changes every replayed grid.
package rng

import (
	"math"
	"math/rand/v2"

	"github.com/valyala/fastrand"
)

const (
	streamSalt = 0x9E3779B97F4A7C15

	// MaxRandomSeed bounds seeds picked by NewRandom.
	MaxRandomSeed = 1_000_000
)

type Rand struct {
	seed int64
	src  *rand.PCG
}

func New(seed int64) *Rand {
	return &Rand{
		seed: seed,
		src:  rand.NewPCG(uint64(seed), uint64(seed)^streamSalt),
	}
}

// NewRandom picks a fresh seed in [0, MaxRandomSeed).
func NewRandom() *Rand {
	return New(int64(fastrand.Uint32n(MaxRandomSeed)))
}

func (r *Rand) Seed() int64 {
	return r.seed
}

func (r *Rand) Uint64() uint64 {
	return r.src.Uint64()
}

// IntN returns a uniform integer in [0, n). It panics if n <= 0.
func (r *Rand) IntN(n int) int {
	if n <= 0 {
		panic("rng: IntN with non-positive bound")
	}

	un := uint64(n)
	skip := (math.MaxUint64%un + 1) % un
	for {
		if v := r.src.Uint64(); v >= skip {
			return int(v % un)
		}
	}
}

// Float64 returns a uniform float in [0, 1).
func (r *Rand) Float64() float64 {
	return float64(r.src.Uint64()>>11) / (1 << 53)
}

// Shuffle permutes n elements in place through swap.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, r.IntN(i+1))
	}
}

// Choice returns a uniformly chosen element of items, which must be non-empty.
func Choice[T any](r *Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// Weighted expands candidates into a list where each one appears weights[i]
// times, so that Choice over the result is a weighted pick.
func Weighted[T any](candidates []T, weights []int) []T {
	var out []T
	for i, c := range candidates {
		for n := 0; n < weights[i]; n++ {
			out = append(out, c)
		}
	}

	return out
}

// Sample returns k distinct elements of items, in draw order. k is clamped to
// len(items); items is not modified.
func Sample[T any](r *Rand, items []T, k int) []T {
	if k > len(items) {
		k = len(items)
	}
	if k <= 0 {
		return nil
	}

	cp := make([]T, len(items))
	copy(cp, items)
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}

	return cp[:k]
}
