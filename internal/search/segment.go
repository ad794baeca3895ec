package search

import (
	"fmt"

	apperrors "github.com/agbru/parsearch/internal/errors"
)

// Segment is the half-open index range [Begin, End) owned by one worker.
type Segment struct {
	Index int
	Begin int
	End   int
}

// Len returns the number of indices in the segment.
func (s Segment) Len() int { return s.End - s.Begin }

// String renders the segment as "#i[begin,end)".
func (s Segment) String() string {
	return fmt.Sprintf("#%d[%d,%d)", s.Index, s.Begin, s.End)
}

// Partition splits [0, length) into workers contiguous segments of
// length/workers indices each. It fails with a ConfigError when workers is
// not positive or does not evenly divide length, so that no index is ever
// left without an owner.
func Partition(length, workers int) ([]Segment, error) {
	if workers <= 0 {
		return nil, apperrors.NewConfigError("worker count must be positive, got %d", workers)
	}
	if length < 0 {
		return nil, apperrors.NewConfigError("sequence length must not be negative, got %d", length)
	}
	if length%workers != 0 {
		return nil, apperrors.NewConfigError(
			"sequence length %d is not evenly divisible by worker count %d", length, workers)
	}

	increment := length / workers
	segments := make([]Segment, workers)
	for i := range segments {
		segments[i] = Segment{Index: i, Begin: i * increment, End: (i + 1) * increment}
	}
	return segments, nil
}

// Divisors returns the worker counts in [1, limit] that evenly divide length,
// in increasing order. A zero length accepts every count up to limit.
func Divisors(length, limit int) []int {
	var out []int
	for k := 1; k <= limit; k++ {
		if length%k == 0 {
			out = append(out, k)
		}
	}
	return out
}
