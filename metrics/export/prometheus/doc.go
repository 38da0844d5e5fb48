// Package prometheus exposes engine metrics through prometheus/client_golang.
//
// [Exporter] is a prometheus.Collector that reads
// notesauth.Engine.MetricsSnapshot on each scrape. Counter names are prefixed
// notesauth_*_total; the single histogram is
// notesauth_resolve_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
