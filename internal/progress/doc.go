// Package progress carries per-destination progress from the generation
// engine to whatever displays it (CLI spinner, TUI, logs).
//
// The engine reports through a plain Callback. The orchestrator builds that
// callback from a Subject via Freeze, which snapshots the registered
// observers so that observers added later never see a running destination.
package progress
