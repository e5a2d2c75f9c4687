package password

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultSalt is the fixed prefix the reference server mixes into every
// stored password hash. It is a protocol constant, not a per-user salt.
const DefaultSalt = "salt"

// Hash returns the stored-password digest for plain using [DefaultSalt].
func Hash(plain string) string {
	return HashSalted(DefaultSalt, plain)
}

// HashSalted returns the uppercase hexadecimal SHA-256 digest of
// salt||plain for deployments that override the server-side salt constant.
func HashSalted(salt, plain string) string {
	digest := sha256.Sum256([]byte(salt + plain))
	return strings.ToUpper(hex.EncodeToString(digest[:]))
}
