package notesauth

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type captureSink struct {
	events chan AuditEvent
}

func newCaptureSink(buffer int) *captureSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &captureSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *captureSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func buildAuditTestEngine(t *testing.T, cfg Config, sink AuditSink) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithDirectory(newStubDirectory()).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func collectEvents(sink *captureSink, max int) []AuditEvent {
	events := make([]AuditEvent, 0, max)
	timeout := time.After(2 * time.Second)
	for len(events) < max {
		select {
		case ev := <-sink.events:
			events = append(events, ev)
		case <-timeout:
			return events
		}
	}
	return events
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	cfg := validTestConfig()
	cfg.Audit.Enabled = false

	sink := &countingSink{}
	engine := buildAuditTestEngine(t, cfg, sink)

	_, _ = engine.Login(WithClientIP(context.Background(), "203.0.113.1"), testUserEmail, "wrong-password")
	engine.Close()

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditEnabledSinkReceivesEventWithFields(t *testing.T) {
	cfg := validTestConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16

	sink := newCaptureSink(8)
	engine := buildAuditTestEngine(t, cfg, sink)

	ctx := WithRequestID(WithClientIP(context.Background(), "198.51.100.33"), "req-42")
	_, _ = engine.Login(ctx, testUserEmail, "super-secret-password")

	select {
	case ev := <-sink.events:
		if ev.EventType != auditEventLoginFailure {
			t.Fatalf("expected %s, got %q", auditEventLoginFailure, ev.EventType)
		}
		if ev.Success {
			t.Fatal("expected failed event")
		}
		if ev.IP != "198.51.100.33" {
			t.Fatalf("expected IP 198.51.100.33, got %q", ev.IP)
		}
		if ev.RequestID != "req-42" {
			t.Fatalf("expected request id req-42, got %q", ev.RequestID)
		}
		if ev.UserID != testUserID {
			t.Fatalf("expected user id %s, got %q", testUserID, ev.UserID)
		}
		if ev.Error != string(auditErrInvalidCredentials) {
			t.Fatalf("expected invalid_credentials code, got %q", ev.Error)
		}
		if ev.Metadata["reason"] != "password_mismatch" {
			t.Fatalf("expected password_mismatch reason, got %q", ev.Metadata["reason"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected audit event to be received")
	}
}

func TestAuditRefreshLifecycleEvents(t *testing.T) {
	cfg := validTestConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16
	cfg.Audit.DropIfFull = false

	sink := newCaptureSink(16)
	engine := buildAuditTestEngine(t, cfg, sink)
	ctx := context.Background()

	pair, err := engine.Login(ctx, testUserEmail, testPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	_, _ = engine.Refresh(ctx, pair.RefreshToken)
	_, _ = engine.Refresh(ctx, "garbage")
	if err := engine.Revoke(ctx, testUserID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	events := collectEvents(sink, 5)
	want := []string{
		auditEventLoginSuccess,
		auditEventRefreshSuccess,
		auditEventRefreshRevoked,
		auditEventRefreshInvalid,
		auditEventLogout,
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, ev := range events {
		if ev.EventType != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], ev.EventType)
		}
	}
}

func TestAuditNoSecretsInEvents(t *testing.T) {
	cfg := validTestConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 32
	cfg.Audit.DropIfFull = false

	sink := newCaptureSink(32)
	engine := buildAuditTestEngine(t, cfg, sink)

	pair, err := engine.Login(context.Background(), testUserEmail, testPassword)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	next, err := engine.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	secretNeedles := []string{
		testPassword,
		pair.AccessToken,
		pair.RefreshToken,
		next.RefreshToken,
		string(cfg.JWT.Secret),
	}

	events := collectEvents(sink, 2)
	if len(events) == 0 {
		t.Fatal("expected at least one audit event")
	}

	for _, ev := range events {
		for _, needle := range secretNeedles {
			if strings.Contains(ev.Error, needle) {
				t.Fatalf("sensitive value leaked in audit error field: %q", needle)
			}
			for k, v := range ev.Metadata {
				if strings.Contains(k, needle) || strings.Contains(v, needle) {
					t.Fatalf("sensitive value leaked in audit metadata: %q", needle)
				}
			}
		}
	}
}

func TestAuditErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrInvalidCredentials, auditErrInvalidCredentials},
		{ErrInvalidToken, auditErrInvalidToken},
		{ErrTokenRevoked, auditErrTokenRevoked},
		{ErrUserNotFound, auditErrUserNotFound},
		{ErrStoreUnavailable, auditErrUnavailable},
		{context.Canceled, auditErrInternal},
	}
	for _, tt := range tests {
		if got := auditErrorCode(tt.err); got != tt.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
