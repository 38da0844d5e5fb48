// Package directory provides the in-memory user directory used by the notes
// service.
//
// Memory keeps users keyed by id and by email behind a single RWMutex.
// Credentials are produced and checked by a password.Matcher; the default is
// plaintext comparison, argon2id is opt-in.
package directory
