// Package logging is the structured logger shared by the engine, the
// orchestrator and the sinks. Logger is backed by zerolog in production and
// by the standard log package or a no-op in tests and dashboard mode.
package logging
