package dataset

import (
	"fmt"
	"math/rand/v2"
)

// Generation patterns.
const (
	PatternSequential = "sequential"
	PatternRandom     = "random"
	PatternConstant   = "constant"
)

// Generate builds a synthetic dataset of the given size.
//
//   - sequential: 0, 1, ..., size-1
//   - random: uniform in [0, 2*size), reproducible for a given seed
//   - constant: every element is 0
func Generate(pattern string, size int, seed int64) ([]int64, error) {
	if size < 0 {
		return nil, fmt.Errorf("dataset size must not be negative, got %d", size)
	}
	values := make([]int64, size)
	switch pattern {
	case PatternSequential:
		for i := range values {
			values[i] = int64(i)
		}
	case PatternRandom:
		rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
		bound := int64(2 * size)
		for i := range values {
			values[i] = rng.Int64N(bound)
		}
	case PatternConstant:
	default:
		return nil, fmt.Errorf("unknown dataset pattern %q", pattern)
	}
	return values, nil
}
