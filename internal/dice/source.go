package dice

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// Source is the randomness provider for rolls and random choices.
// *rand.Rand satisfies it. A Source is owned by one caller at a time.
type Source interface {
	// IntN returns a random int in [0, n). n must be > 0.
	IntN(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// NewSource returns a PCG-backed source.
// The same non-zero seed always yields the same sequence; seed 0 picks a
// random seed.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seedWord(seed, "hi"), seedWord(seed, "lo")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d:%s", seed, salt)
	return h.Sum64()
}

// Choose returns a random element of items. items must not be empty.
func Choose[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}

// Chance reports true with probability p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}
