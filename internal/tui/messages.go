package tui

import (
	"time"

	"github.com/agbru/fibfill/internal/orchestration"
)

// ProgressMsg carries one aggregated progress update.
type ProgressMsg struct {
	DestinationIndex int
	Value            float64
	BytesWritten     int64
	AverageProgress  float64
	TotalBytes       int64
	ETA              time.Duration
}

// ProgressDoneMsg is sent when the progress channel is closed.
type ProgressDoneMsg struct{}

// ReportMsg carries the final report of the run.
type ReportMsg struct {
	Report orchestration.Report
}

// ErrorMsg carries a run-level error.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// TickMsg drives the periodic sampling.
type TickMsg time.Time

// MemStatsMsg carries Go runtime memory statistics.
type MemStatsMsg struct {
	Alloc        uint64
	HeapSys      uint64
	NumGC        uint32
	NumGoroutine int
}

// SysStatsMsg carries host resource usage.
type SysStatsMsg struct {
	CPUPercent  float64
	MemPercent  float64
	DiskPercent float64
	DiskFree    uint64
}

// RunCompleteMsg is sent when the run function returns.
type RunCompleteMsg struct {
	ExitCode int
}

// ContextCancelledMsg is sent when the parent context is done.
type ContextCancelledMsg struct {
	Err error
}
