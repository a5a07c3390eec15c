package config

import "runtime"

// Parallelism resolution chain (highest priority first):
//   1. CLI flag (--parallel)
//   2. Environment variable (FIBFILL_PARALLEL)
//   3. Config file (parallel:)
//   4. Adaptive hardware estimation (this file)

// ApplyAdaptiveDefaults fills the settings left at their zero default with
// values derived from the host. User-specified values are preserved.
func ApplyAdaptiveDefaults(cfg AppConfig) AppConfig {
	if cfg.Parallel == 0 {
		cfg.Parallel = EstimateParallelism(cfg.Split, cfg.Stop)
	}
	return cfg
}

// EstimateParallelism returns how many destinations to generate at once.
// Under stop semantics it returns 1 so every destination is budgeted against
// the bytes actually written by its predecessors.
func EstimateParallelism(split int, stop bool) int {
	if stop {
		return 1
	}
	numCPU := runtime.NumCPU()

	var n int
	switch {
	case numCPU <= 2:
		n = 1
	case numCPU <= 8:
		n = 2
	default:
		n = 4
	}
	if split > 0 && n > split {
		n = split
	}
	return max(n, 1)
}
