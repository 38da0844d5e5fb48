// Package metrics provides lock-free counters and a resolve latency histogram
// for the authentication engine.
//
// Counters live in cache-line-padded uint64 slots incremented with
// [sync/atomic.AddUint64]. The histogram has 8 fixed buckets (<=5ms … +Inf).
// The write path never allocates.
//
// Export (Prometheus, OTel) lives in metrics/export/ and reads Snapshot
// values through the engine.
package metrics
