package game

import (
	mathrand "math/rand"

	"github.com/cespare/xxhash/v2"
)

// Rand is the randomness every stochastic formula draws from. *math/rand.Rand satisfies it;
// tests pass a seeded one.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

func NewRand(seed int64) *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(seed))
}

func chance(r Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}

func uniform(r Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// intBetween returns an int in [lo, hi].
func intBetween(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

func pick[T any](r Rand, items []T) T {
	return items[r.Intn(len(items))]
}

// stableHash32 folds xxhash64 of the key parts into 32 bits. Parts are NUL separated so
// ("ab","c") and ("a","bc") differ.
func stableHash32(parts ...string) uint32 {
	d := xxhash.New()
	for i, p := range parts {
		if i > 0 {
			_, _ = d.Write([]byte{0})
		}
		_, _ = d.WriteString(p)
	}
	h := d.Sum64()
	return uint32(h) ^ uint32(h>>32)
}

// platformBias is the fixed over/under-performance factor of artist on platform, in
// [0.75, 1.25). It depends only on the two names.
func platformBias(artist, platform string) float64 {
	r := NewRand(int64(stableHash32(artist, platform)))
	return 0.75 + 0.5*r.Float64()
}
