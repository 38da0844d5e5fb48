// Package middleware exposes the HTTP guard that authenticates bearer
// credentials through a provider.Provider.
//
// # Guards
//
//   - [Guard] reads the Authorization header, calls Provider.Authenticate, and
//     injects the resolved user into the request context.
//   - [UserFromContext] retrieves it in downstream handlers.
//
// Every rejection produces the same 401 response with a
// "WWW-Authenticate: Bearer" header and the body
// {"detail":"Could not validate credentials"}.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the provider).
//   - Distinguish expired, revoked, or malformed credentials in responses.
package middleware
