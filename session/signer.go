package session

import (
	"fmt"
	"net/url"

	"github.com/restforge/mormotauth/sign"
)

// SignatureParam is the query parameter that carries the session signature.
const SignatureParam = "session_signature"

// signatureLen is idHex8 + nonce8 + crc8.
const signatureLen = 24

// SignPath builds the signed request path for method and params:
//
//	root/method?params&session_signature=<idHex8><nonce8><crc8>
//
// The unsigned prefix omits the "?" segment when params is empty, and the
// signature is always the last query parameter so the server can strip it
// and recompute the checksum over the exact prefix bytes.
//
// nonce8 is the hex rendering of the clock reading shifted right by 8 bits,
// so the signature stays valid for roughly a 256 ms window and replaying a
// captured path outside that window fails. The caller-supplied params are
// never mutated.
func (s *Session) SignPath(root, method string, params url.Values) string {
	unsigned := root + "/" + method
	query := params.Encode()
	if query != "" {
		unsigned += "?" + query
	}

	nonce := sign.EncodeHex8(s.TickCount() >> 8)
	crc := sign.ChainCRC32(s.saltSeed, []byte(nonce), []byte(unsigned))
	signature := s.idHex + nonce + sign.EncodeHex8(crc)

	sep := "?"
	if query != "" {
		sep = "&"
	}
	return unsigned + sep + SignatureParam + "=" + signature
}

// Signature is the decomposed session_signature value.
type Signature struct {
	IDHex    string
	Nonce    string
	Checksum string
}

// ParseSignature splits a session_signature value into its three
// fixed-width hex runs, validating each. Useful for server stubs and
// diagnostics.
func ParseSignature(value string) (Signature, error) {
	if len(value) != signatureLen {
		return Signature{}, fmt.Errorf("%w: length %d, want %d", sign.ErrInvalidHex8, len(value), signatureLen)
	}
	parsed := Signature{
		IDHex:    value[0:8],
		Nonce:    value[8:16],
		Checksum: value[16:24],
	}
	for _, run := range []string{parsed.IDHex, parsed.Nonce, parsed.Checksum} {
		if _, err := sign.DecodeHex8(run); err != nil {
			return Signature{}, err
		}
	}
	return parsed, nil
}
