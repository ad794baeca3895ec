package search

import (
	"fmt"

	apperrors "github.com/agbru/parsearch/internal/errors"
)

// Outcome describes how a worker left its segment.
type Outcome int

const (
	// OutcomeExhausted means the worker scanned its whole segment without a match.
	OutcomeExhausted Outcome = iota
	// OutcomeMatched means the worker found the target and set the flag.
	OutcomeMatched
	// OutcomeEarlyExit means the worker saw the flag set by another worker.
	OutcomeEarlyExit
	// OutcomeFaulted means the worker stopped on a panic.
	OutcomeFaulted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeMatched:
		return "matched"
	case OutcomeEarlyExit:
		return "early-exit"
	case OutcomeFaulted:
		return "faulted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// SegmentStats is what one worker reports about its segment.
type SegmentStats struct {
	Segment Segment
	// Scanned counts the elements actually compared against the target.
	Scanned int
	Outcome Outcome
}

// task is the immutable descriptor handed to one worker.
type task[T any] struct {
	target  T
	seq     Sequence[T]
	segment Segment
	flag    *FoundFlag
	equal   EqualFunc[T]
}

// scan walks the task's segment in index order. Before every comparison it
// polls the shared flag and leaves as soon as it is set. A panic from the
// sequence or the equality function is recovered and returned as a
// WorkerFault carrying the offending index.
func (t task[T]) scan() (stats SegmentStats, err error) {
	stats.Segment = t.segment
	i := t.segment.Begin
	defer func() {
		if r := recover(); r != nil {
			stats.Outcome = OutcomeFaulted
			err = apperrors.WorkerFault{Segment: t.segment.Index, Index: i, Cause: panicError(r)}
		}
	}()

	for ; i < t.segment.End; i++ {
		if t.flag.Load() {
			stats.Outcome = OutcomeEarlyExit
			return stats, nil
		}
		stats.Scanned++
		if t.equal(t.seq.At(i), t.target) {
			t.flag.Set(t.segment.Index)
			stats.Outcome = OutcomeMatched
			return stats, nil
		}
	}
	stats.Outcome = OutcomeExhausted
	return stats, nil
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
