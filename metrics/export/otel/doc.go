// Package otel binds engine metrics to an OpenTelemetry Meter.
//
// [New] registers one Int64ObservableCounter per notesauth counter and one
// Int64ObservableGauge per resolve latency bucket. A single callback reads
// notesauth.Engine.MetricsSnapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
