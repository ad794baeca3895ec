// Package search implements a parallel linear search over a fixed-size
// sequence.
//
// A search partitions the sequence into equally sized contiguous segments and
// runs one worker goroutine per segment. Workers share a single FoundFlag:
// the first worker to see a match sets it, and every worker polls it before
// each comparison so that the others can stop early. The coordinator joins
// every worker before it reads the flag, so the result it reports is never
// racing with a worker's write.
//
// The sequence length must be evenly divisible by the worker count. Callers
// that violate this get a configuration error before any worker starts; the
// remainder is never silently dropped.
package search
