package sign

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// LoginHash computes the credential submitted as the Password query
// parameter during the handshake: the uppercase hexadecimal SHA-256 digest
// of the delimiter-free concatenation
//
//	root || serverNonce || clientNonce || user || passwordHash
//
// in exactly that order. The function is pure; identical inputs always
// produce the identical digest.
func LoginHash(root, serverNonce, clientNonce, user, passwordHash string) string {
	h := sha256.New()
	h.Write([]byte(root))
	h.Write([]byte(serverNonce))
	h.Write([]byte(clientNonce))
	h.Write([]byte(user))
	h.Write([]byte(passwordHash))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}
