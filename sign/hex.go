package sign

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidHex8 is returned by [DecodeHex8] for input that is not exactly
// eight hexadecimal digits.
var ErrInvalidHex8 = errors.New("invalid hex8 value")

const upperHexDigits = "0123456789ABCDEF"

// EncodeHex8 renders v as exactly eight uppercase hexadecimal characters,
// left-padded with '0'. It is total over the uint32 domain and never fails.
func EncodeHex8(v uint32) string {
	var out [8]byte
	for i := 7; i >= 0; i-- {
		out[i] = upperHexDigits[v&0xF]
		v >>= 4
	}
	return string(out[:])
}

// DecodeHex8 is the inverse of [EncodeHex8]. It accepts both upper and
// lower case digits but insists on a width of exactly eight characters.
func DecodeHex8(s string) (uint32, error) {
	if len(s) != 8 {
		return 0, fmt.Errorf("%w: length %d, want 8", ErrInvalidHex8, len(s))
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex8, s)
	}
	return uint32(v), nil
}
