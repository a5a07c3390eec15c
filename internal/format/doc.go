// Package format holds the presentation helpers shared by the CLI and the TUI:
// durations, byte counts, digit grouping, progress bars and ETA estimation.
package format
