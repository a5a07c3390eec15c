// Package metrics exposes run statistics: Prometheus collectors for bytes,
// terms and destination outcomes, an optional /metrics HTTP endpoint, and
// runtime memory snapshots for the summary and the dashboard.
package metrics
