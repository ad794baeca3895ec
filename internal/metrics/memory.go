package metrics

import (
	"runtime"
	"time"
)

// MemorySnapshot is a point-in-time reading of the Go runtime memory stats.
type MemorySnapshot struct {
	HeapAlloc    uint64 // live heap bytes
	HeapSys      uint64
	Sys          uint64 // total bytes obtained from the OS
	NumGC        uint32
	PauseTotalNs uint64
	HeapObjects  uint64
	Goroutines   int
}

// MemoryDelta is the change between two snapshots taken around a search.
type MemoryDelta struct {
	HeapAlloc  int64
	GCCycles   uint32
	GCPause    time.Duration
	Goroutines int
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
		HeapObjects:  m.HeapObjects,
		Goroutines:   runtime.NumGoroutine(),
	}
}

// Since returns the difference between s and an earlier snapshot.
func (s MemorySnapshot) Since(before MemorySnapshot) MemoryDelta {
	return MemoryDelta{
		HeapAlloc:  int64(s.HeapAlloc) - int64(before.HeapAlloc),
		GCCycles:   s.NumGC - before.NumGC,
		GCPause:    time.Duration(s.PauseTotalNs - before.PauseTotalNs),
		Goroutines: s.Goroutines - before.Goroutines,
	}
}
