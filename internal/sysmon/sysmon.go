// Package sysmon samples host CPU and memory usage so that search timings
// can be read against the load of the machine they ran on.
package sysmon

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of host resource usage.
type Stats struct {
	CPUPercent   float64 // 0.0 .. 100.0
	MemPercent   float64 // 0.0 .. 100.0
	LogicalCPUs  int
	PhysicalCPUs int
}

// Sample collects a snapshot with a background context.
func Sample() Stats {
	return SampleContext(context.Background())
}

// SampleContext collects a host snapshot. CPU usage is the delta since the
// previous call (interval 0). Fields that cannot be read stay zero.
func SampleContext(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.LogicalCPUs = n
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		s.PhysicalCPUs = n
	}
	return s
}
