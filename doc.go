// Package notesauth is the authentication core of the notes service: it issues
// signed access and refresh tokens, rotates refresh tokens, and resolves
// access tokens back to users.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// notesauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [Directory] and [RefreshStore] ports, and value types. Token encoding
// lives in jwt, refresh storage in refresh, credential checks in password,
// and the HTTP boundary in middleware and internal/httpapi.
//
// # Token lifecycle
//
// Login stores the new refresh token as the user's only live one. Refresh
// accepts that token once: it is swapped for the next token atomically, so a
// second use of the same token, concurrent or later, fails with
// [ErrTokenRevoked]. A later Login replaces the stored token as well, which
// silently retires refresh tokens held by other clients of the same user.
//
// # What this package must NOT do
//
//   - Return internal failure distinctions to HTTP clients; the boundary
//     collapses them into [ErrUnauthenticated].
//   - Log token values or passwords.
//   - Import any sub-package that re-imports notesauth.
package notesauth
