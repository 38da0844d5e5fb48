package refresh

import "errors"

var (
	// ErrTokenMismatch is returned by Rotate when the stored token differs
	// from the presented one.
	ErrTokenMismatch = errors.New("refresh token mismatch")
	// ErrRecordNotFound is returned by Rotate when the user has no stored token.
	ErrRecordNotFound = errors.New("refresh record not found")
	// ErrStoreUnavailable wraps backend transport failures.
	ErrStoreUnavailable = errors.New("refresh store unavailable")
	// ErrInvalidRecord is returned when userID or token is empty.
	ErrInvalidRecord = errors.New("invalid refresh record")
)
