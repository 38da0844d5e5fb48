package notesauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	internalaudit "github.com/ancorit/notesauth/internal/audit"
	"github.com/ancorit/notesauth/jwt"
	"github.com/ancorit/notesauth/refresh"
)

// Engine issues, refreshes, and resolves tokens for users held in a
// [Directory]. It is safe for concurrent use once returned by [Builder.Build].
type Engine struct {
	config    Config
	tokens    *jwt.Manager
	directory Directory
	refresh   RefreshStore
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	logger    *slog.Logger
}

// Close drains pending audit events. The Engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AccessTTL returns the configured access-token lifetime.
func (e *Engine) AccessTTL() time.Duration {
	return e.config.JWT.AccessTTL
}

// RefreshTTL returns the configured refresh-token lifetime.
func (e *Engine) RefreshTTL() time.Duration {
	return e.config.JWT.RefreshTTL
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.tokens != nil && e.directory != nil && e.refresh != nil
}

// Login checks email and password against the directory and, on success,
// issues a fresh token pair. The new refresh token replaces any previously
// stored for the user.
//
// Unknown email and wrong password both return [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, email, password string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}
	if email == "" || password == "" {
		e.loginFailed(ctx, "", ErrInvalidCredentials, "empty_credentials")
		return TokenPair{}, ErrInvalidCredentials
	}

	user, found, err := e.directory.FindByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, e.loginBackendFailure(ctx, "", "find_by_email", err)
	}
	if !found {
		e.loginFailed(ctx, "", ErrInvalidCredentials, "unknown_email")
		return TokenPair{}, ErrInvalidCredentials
	}

	ok, err := e.directory.VerifyPassword(ctx, email, password)
	if err != nil {
		return TokenPair{}, e.loginBackendFailure(ctx, user.ID, "verify_password", err)
	}
	if !ok {
		e.loginFailed(ctx, user.ID, ErrInvalidCredentials, "password_mismatch")
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := e.issuePair(user)
	if err != nil {
		e.loginFailed(ctx, user.ID, err, "issue_failed")
		return TokenPair{}, err
	}

	if err := e.refresh.Save(ctx, user.ID, pair.RefreshToken, e.config.JWT.RefreshTTL); err != nil {
		return TokenPair{}, e.loginBackendFailure(ctx, user.ID, "save_refresh", err)
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)
	return pair, nil
}

func (e *Engine) loginFailed(ctx context.Context, userID string, err error, reason string) {
	e.metricInc(MetricLoginFailure)
	e.logger.DebugContext(ctx, "login rejected", slog.String("reason", reason))
	e.emitAudit(ctx, auditEventLoginFailure, false, userID, err, func() map[string]string {
		return map[string]string{
			"reason": reason,
		}
	})
}

func (e *Engine) loginBackendFailure(ctx context.Context, userID, step string, err error) error {
	e.metricInc(MetricStoreError)
	e.logger.WarnContext(ctx, "login backend failure", slog.String("step", step), slog.Any("error", err))
	wrapped := fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	e.loginFailed(ctx, userID, wrapped, step)
	return wrapped
}

// Refresh exchanges a live refresh token for a new pair and retires the
// presented token.
//
// Refresh returns [ErrInvalidToken] when the token fails verification, is
// not a refresh token, or has no subject; [ErrTokenRevoked] when it is not
// the user's stored token, including when a concurrent refresh with the same
// token won; and [ErrUserNotFound] when its subject no longer exists.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}

	claims, ok := e.tokens.Verify(refreshToken)
	if !ok {
		e.refreshFailed(ctx, "", ErrInvalidToken, "verify_failed")
		return TokenPair{}, ErrInvalidToken
	}
	if claims.Type != jwt.TypeRefresh {
		e.refreshFailed(ctx, claims.Subject, ErrInvalidToken, "wrong_type")
		return TokenPair{}, ErrInvalidToken
	}
	userID := claims.Subject
	if userID == "" {
		e.refreshFailed(ctx, "", ErrInvalidToken, "missing_subject")
		return TokenPair{}, ErrInvalidToken
	}

	valid, err := e.refresh.Validate(ctx, userID, refreshToken)
	if err != nil {
		return TokenPair{}, e.refreshBackendFailure(ctx, userID, "validate_refresh", err)
	}
	if !valid {
		e.metricInc(MetricRefreshRevoked)
		e.refreshFailed(ctx, userID, ErrTokenRevoked, "not_current")
		return TokenPair{}, ErrTokenRevoked
	}

	user, found, err := e.directory.FindByID(ctx, userID)
	if err != nil {
		return TokenPair{}, e.refreshBackendFailure(ctx, userID, "find_by_id", err)
	}
	if !found {
		e.refreshFailed(ctx, userID, ErrUserNotFound, "user_missing")
		return TokenPair{}, ErrUserNotFound
	}

	pair, err := e.issuePair(user)
	if err != nil {
		e.refreshFailed(ctx, userID, err, "issue_failed")
		return TokenPair{}, err
	}

	err = e.refresh.Rotate(ctx, userID, refreshToken, pair.RefreshToken, e.config.JWT.RefreshTTL)
	if err != nil {
		switch {
		case errors.Is(err, refresh.ErrTokenMismatch), errors.Is(err, refresh.ErrRecordNotFound):
			e.metricInc(MetricRefreshRevoked)
			e.refreshFailed(ctx, userID, ErrTokenRevoked, "lost_rotation")
			return TokenPair{}, ErrTokenRevoked
		default:
			return TokenPair{}, e.refreshBackendFailure(ctx, userID, "rotate_refresh", err)
		}
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, userID, nil, nil)
	return pair, nil
}

func (e *Engine) refreshFailed(ctx context.Context, userID string, err error, reason string) {
	e.metricInc(MetricRefreshFailure)
	e.logger.DebugContext(ctx, "refresh rejected", slog.String("reason", reason))
	event := auditEventRefreshInvalid
	if errors.Is(err, ErrTokenRevoked) {
		event = auditEventRefreshRevoked
	}
	e.emitAudit(ctx, event, false, userID, err, func() map[string]string {
		return map[string]string{
			"reason": reason,
		}
	})
}

func (e *Engine) refreshBackendFailure(ctx context.Context, userID, step string, err error) error {
	e.metricInc(MetricStoreError)
	e.logger.WarnContext(ctx, "refresh backend failure", slog.String("step", step), slog.Any("error", err))
	wrapped := fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	e.refreshFailed(ctx, userID, wrapped, step)
	return wrapped
}

// ResolveCurrentUser returns the user an access token was issued to. It
// reports false for any token that fails verification, is not an access
// token, has no subject, or names a user the directory no longer holds.
// It never returns an error; directory failures are logged and treated as
// absent.
func (e *Engine) ResolveCurrentUser(ctx context.Context, accessToken string) (User, bool) {
	if !e.ready() {
		return User{}, false
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricResolveLatency, time.Since(start))
		}()
	}

	claims, ok := e.tokens.Verify(accessToken)
	if !ok {
		e.metricInc(MetricResolveFailure)
		return User{}, false
	}
	if claims.Type != jwt.TypeAccess || claims.Subject == "" {
		e.metricInc(MetricResolveFailure)
		return User{}, false
	}

	user, found, err := e.directory.FindByID(ctx, claims.Subject)
	if err != nil {
		e.metricInc(MetricStoreError)
		e.metricInc(MetricResolveFailure)
		e.logger.WarnContext(ctx, "resolve directory failure", slog.Any("error", err))
		return User{}, false
	}
	if !found {
		e.metricInc(MetricResolveFailure)
		return User{}, false
	}

	e.metricInc(MetricResolveSuccess)
	return user, true
}

// Revoke removes the stored refresh token for userID so no outstanding
// refresh token for that user can be exchanged. Access tokens already issued
// stay valid until they expire. Revoking a user with no stored token succeeds.
func (e *Engine) Revoke(ctx context.Context, userID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if err := e.refresh.Revoke(ctx, userID); err != nil {
		e.metricInc(MetricStoreError)
		e.logger.WarnContext(ctx, "revoke failed", slog.Any("error", err))
		wrapped := fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		e.emitAudit(ctx, auditEventLogout, false, userID, wrapped, nil)
		return wrapped
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, userID, nil, nil)
	return nil
}

func (e *Engine) issuePair(user User) (TokenPair, error) {
	access, err := e.tokens.IssueAccess(user.ID, user.Email, e.config.JWT.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := e.tokens.IssueRefresh(user.ID, e.config.JWT.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}
