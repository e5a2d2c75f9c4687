// Package mormotauth is a client for mORMot REST servers using the default
// signed-URI authentication scheme: a nonce-based challenge-response
// handshake followed by a time-windowed, CRC-32-chained signature on every
// request path.
//
// The package is designed for concurrent callers: Client methods are safe
// from multiple goroutines after initialization through [Builder.Build].
// At most one session is held at a time; Login replaces it, Invalidate
// drops it.
//
// # Architecture boundaries
//
// mormotauth is the public surface. It exposes [Client], [Builder],
// [Config], the error taxonomy, and value types (MetricsSnapshot,
// AuditEvent). Protocol byte work lives in the sign package, session state
// and persistence in the session package.
//
// # Wire compatibility
//
// The handshake hash and the per-request checksum reproduce the reference
// server's byte sequences exactly. The CRC-32 signature is not a
// cryptographic MAC; it is kept as-is because "strengthening" it would
// break interoperability with deployed servers.
//
// # What this package must NOT do
//
//   - Expose Redis clients, encoders, or other internals in its public API.
//   - Collapse transport failures into authentication rejections: a
//     [*NetworkError] always propagates, while a server rejection is the
//     documented nil-session outcome of [Client.Login].
//   - Retain or log plaintext passwords.
package mormotauth
