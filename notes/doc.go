// Package notes holds the note model, its repository port with an in-memory
// implementation, and the validating service the HTTP layer calls.
package notes
