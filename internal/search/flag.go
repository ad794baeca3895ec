package search

import (
	"sync"
	"sync/atomic"
)

// FoundFlag is the shared termination signal of one search. It starts unset
// and moves to set at most once; there is no way back. The zero value is an
// unset flag.
//
// Load is the hot path polled by every worker before each comparison and
// takes no lock. A Load racing with a Set may still observe the flag unset,
// which only costs a few extra comparisons; it can never observe a set flag
// that was not set. Set is serialized by a mutex so that exactly one caller
// wins and the winning segment is recorded consistently.
//
// Adding a reset would break the argument above: Load would then need the
// same exclusion as Set.
type FoundFlag struct {
	set atomic.Bool

	mu     sync.Mutex
	winner int // segment index + 1 of the first setter, 0 while unset
}

// Load reports whether the flag has been set.
func (f *FoundFlag) Load() bool {
	return f.set.Load()
}

// Set marks the flag as set on behalf of the given segment. It returns true
// for the first caller only; later calls leave the flag untouched.
func (f *FoundFlag) Set(segment int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set.Load() {
		return false
	}
	f.winner = segment + 1
	f.set.Store(true)
	return true
}

// Winner returns the index of the segment whose worker set the flag, or -1
// if the flag is unset.
func (f *FoundFlag) Winner() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.winner - 1
}
