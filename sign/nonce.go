package sign

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const clientNonceBytes = 32

// ClientNonce draws 32 bytes from the operating system CSPRNG and returns
// their uppercase hexadecimal encoding (64 characters). A non-cryptographic
// source is not an acceptable substitute here: the nonce keys the login
// hash against replay.
func ClientNonce() (string, error) {
	var buf [clientNonceBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read client nonce: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf[:])), nil
}
