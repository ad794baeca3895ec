package config

import "runtime"

// Worker count resolution chain (highest priority first):
//   1. CLI flag (--workers)
//   2. Environment variable (PARSEARCH_WORKERS)
//   3. Cached calibration profile, if the dataset size still divides
//   4. Adaptive hardware estimation (this file)

// EstimateOptimalWorkers returns the largest worker count that divides size
// and does not exceed the number of CPUs.
func EstimateOptimalWorkers(size int) int {
	return LargestDivisorAtMost(size, runtime.NumCPU())
}

// LargestDivisorAtMost returns the largest k in [1, limit] that evenly
// divides size. It returns 1 when limit < 1 and limit when size is 0.
func LargestDivisorAtMost(size, limit int) int {
	if limit < 1 {
		return 1
	}
	if size == 0 {
		return limit
	}
	for k := limit; k > 1; k-- {
		if size%k == 0 {
			return k
		}
	}
	return 1
}

// ApplyAdaptiveWorkers fills in Workers for a dataset of the given size when
// it was left at 0.
func ApplyAdaptiveWorkers(cfg AppConfig, size int) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = EstimateOptimalWorkers(size)
	}
	return cfg
}
