// Package session holds authenticated-session state and produces the
// session_signature appended to every request, plus Redis-backed session
// persistence and a compact binary session encoding.
//
// A [Session] is created from the key string returned by a successful
// handshake and is immutable afterwards. Signing reads a millisecond clock
// on every call; the clock is injectable so tests can pin or advance the
// tick window.
//
// # Binary encoding
//
// [Encode] and [Decode] serialize a session for the [Store] as a small
// versioned blob. The blob carries no credential material: only the session
// identifier, the opaque server key, the derived checksum seed, and the
// creation timestamp.
//
// # Architecture boundaries
//
// This package owns the [Session] model, the path signer, and the [Store]
// (Redis operations). The handshake itself and all HTTP transport belong to
// the client package.
//
// # What this package must NOT do
//
//   - Perform HTTP I/O.
//   - Store the password hash in [Session] fields or in Redis.
//   - Import the root mormotauth package (no upward imports).
package session
