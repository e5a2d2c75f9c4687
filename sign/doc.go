// Package sign implements the wire-level primitives of the authentication
// protocol: fixed-width hexadecimal rendering, the chained CRC-32 request
// checksum, the SHA-256 login credential hash, and client nonce generation.
//
// Every function in this package must stay bit-for-bit compatible with the
// reference server. The CRC-32 chain is deliberately NOT a cryptographic
// MAC; it is kept only because the server verifies exactly this checksum.
//
// # Architecture boundaries
//
// This package owns byte-level encoding and checksum math only. Session
// state, clocks, and transport live elsewhere and must not leak in here.
//
// # What this package must NOT do
//
//   - Perform I/O other than reading the operating system CSPRNG.
//   - Import any other mormotauth package.
//   - Substitute a stronger hash or checksum for the protocol-mandated one.
package sign
