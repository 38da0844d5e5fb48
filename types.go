package notesauth

import (
	"context"
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/ancorit/notesauth/internal/audit"
	internalmetrics "github.com/ancorit/notesauth/internal/metrics"
)

// User is an authenticated principal. ID and Email are unique within a
// Directory; all three fields are non-empty for a stored user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// IsZero reports whether u is the empty user.
func (u User) IsZero() bool {
	return u == User{}
}

// TokenPair is returned by [Engine.Login] and [Engine.Refresh].
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Directory resolves users and checks their credentials. Implementations
// must be safe for concurrent use.
//
// Create returns an error wrapping [ErrConflict] when the id or email is
// already taken. VerifyPassword returns false for unknown emails.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (User, bool, error)
	FindByID(ctx context.Context, id string) (User, bool, error)
	Create(ctx context.Context, user User, password string) error
	VerifyPassword(ctx context.Context, email, password string) (bool, error)
}

// RefreshStore holds the single live refresh token for each user.
//
// Validate compares exactly, byte for byte. Revoke of an absent record
// succeeds. Rotate replaces current with next only while current is still
// the stored token; otherwise it returns an error.
type RefreshStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, bool, error)
	Revoke(ctx context.Context, userID string) error
	Validate(ctx context.Context, userID, token string) (bool, error)
	Rotate(ctx context.Context, userID, current, next string, ttl time.Duration) error
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes JSON-encoded events to an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink logs events through a [slog.Logger].
type SlogSink = internalaudit.SlogSink

// MultiSink fans events out to several sinks.
type MultiSink = internalaudit.MultiSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink creates a [SlogSink]. A nil logger selects slog.Default().
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}

// MetricID identifies a counter or histogram in the in-process metrics.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected logins.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricRefreshSuccess counts successful rotations.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refreshes of any kind.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshRevoked counts refreshes presenting a superseded or revoked token.
	MetricRefreshRevoked = internalmetrics.MetricRefreshRevoked
	// MetricResolveSuccess counts access tokens resolved to a user.
	MetricResolveSuccess = internalmetrics.MetricResolveSuccess
	// MetricResolveFailure counts access tokens that did not resolve.
	MetricResolveFailure = internalmetrics.MetricResolveFailure
	// MetricLogout counts refresh token revocations.
	MetricLogout = internalmetrics.MetricLogout
	// MetricStoreError counts directory or refresh store failures.
	MetricStoreError = internalmetrics.MetricStoreError
	// MetricResolveLatency is the resolve latency histogram.
	MetricResolveLatency = internalmetrics.MetricResolveLatency
)

// Metrics holds atomic counters and the optional latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] configured by cfg. When Enabled is false,
// all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
