package internaldefs

import (
	"github.com/ancorit/notesauth"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   notesauth.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for export.
type HistogramDef struct {
	ID   notesauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the exported name of the audit backpressure counter.
const (
	AuditDroppedName = "notesauth_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

// CounterDefs lists every engine counter in export order.
var CounterDefs = []CounterDef{
	{ID: notesauth.MetricLoginSuccess, Name: "notesauth_login_success_total", Help: "Successful login attempts."},
	{ID: notesauth.MetricLoginFailure, Name: "notesauth_login_failure_total", Help: "Failed login attempts."},
	{ID: notesauth.MetricRefreshSuccess, Name: "notesauth_refresh_success_total", Help: "Successful refresh token rotations."},
	{ID: notesauth.MetricRefreshFailure, Name: "notesauth_refresh_failure_total", Help: "Rejected refresh attempts."},
	{ID: notesauth.MetricRefreshRevoked, Name: "notesauth_refresh_revoked_total", Help: "Refresh attempts presenting a superseded or revoked token."},
	{ID: notesauth.MetricResolveSuccess, Name: "notesauth_resolve_success_total", Help: "Access tokens resolved to a user."},
	{ID: notesauth.MetricResolveFailure, Name: "notesauth_resolve_failure_total", Help: "Access tokens that did not resolve to a user."},
	{ID: notesauth.MetricLogout, Name: "notesauth_logout_total", Help: "Refresh token revocations."},
	{ID: notesauth.MetricStoreError, Name: "notesauth_store_error_total", Help: "Directory or refresh store failures."},
}

// HistogramDefs lists every engine histogram.
var HistogramDefs = []HistogramDef{
	{ID: notesauth.MetricResolveLatency, Name: "notesauth_resolve_latency_seconds", Help: "Access token resolve latency."},
}

// HistogramUpperBounds are the bucket bounds in seconds, excluding +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf last, for exporters that
// publish buckets as separate instruments.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals. The last
// element is the sample count.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
