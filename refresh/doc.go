// Package refresh stores the single active refresh token for each user.
//
// # Backends
//
// [MemoryStore] keeps records in a mutex-guarded map and is the default for
// single-process deployments. [RedisStore] keeps them under a key prefix in
// Redis so several service instances share one view of which token is live.
//
// # Rotation
//
// Both backends implement Rotate as a compare-and-swap: the stored token is
// replaced only when it still equals the token the caller presented. Of N
// concurrent refreshes with the same token, exactly one observes success.
//
// # What this package must NOT do
//
//   - Parse or verify token signatures.
//   - Import notesauth or jwt.
//   - Log or return stored token values in errors.
package refresh
