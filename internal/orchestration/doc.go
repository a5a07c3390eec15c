// Package orchestration drives the engine over every destination of a plan.
// It owns the running byte total (Accumulator), applies the stop and skip
// rules, bounds concurrency and decouples presentation through the
// ProgressReporter and ResultPresenter interfaces.
package orchestration
