// Package audit dispatches authentication outcome events asynchronously.
//
// # Components
//
//   - [Sink] is the consumer interface (channel, JSON writer, slog, no-op, fan-out).
//   - [Dispatcher] is a buffered relay with drop-if-full or block-if-full semantics.
//   - [Event] is the record: timestamp, type, user, client IP, request id, metadata.
//
// # What this package must NOT do
//
//   - Decide which events to emit; the engine does that.
//   - Import notesauth or any sibling internal package.
package audit
