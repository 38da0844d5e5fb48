package notesauth

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned by Refresh for a token that fails verification,
	// is not a refresh token, or carries no subject.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned by Refresh when the token is well formed but no
	// longer the stored refresh token for its user.
	ErrTokenRevoked = errors.New("refresh token revoked")
	// ErrUserNotFound is returned by Refresh when the token's subject no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrConflict is wrapped by Directory.Create on a duplicate id or email.
	ErrConflict = errors.New("user already exists")
	// ErrUnauthenticated is the uniform signal the HTTP boundary maps every
	// authentication failure to.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrStoreUnavailable wraps directory or refresh store failures surfaced by the engine.
	ErrStoreUnavailable = errors.New("auth backend unavailable")
	// ErrEngineNotReady is returned when an Engine was not built by [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")
)

// IsAuthFailure reports whether err is one of the authentication failures
// that callers must collapse into [ErrUnauthenticated].
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrUnauthenticated)
}
