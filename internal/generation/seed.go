package generation

import (
	"math/rand/v2"
)

const seedRange = 1_000_000

// SeedSource yields the first seed of a run; the second is always first+1.
type SeedSource interface {
	Seed() int
}

type RandomSeeds struct{}

func (RandomSeeds) Seed() int {
	return rand.IntN(seedRange)
}

// FixedSeed always returns the same value. Useful for reproducible runs.
type FixedSeed int

func (f FixedSeed) Seed() int {
	return int(f)
}

func seedPair(src SeedSource) (int, int) {
	a := src.Seed()
	if a < 0 {
		a = -a
	}
	a %= seedRange
	return a, a + 1
}
