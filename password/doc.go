// Package password implements the server's stored password hash.
//
// # Output format
//
// The reference server keeps user passwords as the uppercase hexadecimal
// SHA-256 digest of a fixed salt prefix concatenated with the plaintext.
// That digest, never the plaintext, is what flows into the login hash and
// the per-request checksum seed, so it must be reproduced exactly.
//
// # Architecture boundaries
//
// This package owns hashing only. It does not validate password policy and
// does not talk to the server.
//
// # What this package must NOT do
//
//   - Store or log plaintext passwords.
//   - Import any other mormotauth package.
//   - Swap the digest for a slow KDF: the server compares this exact value.
package password
