package session

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/restforge/mormotauth/sign"
)

// ErrInvalidKey is returned when the server's session key carries no usable
// numeric session identifier.
var ErrInvalidKey = errors.New("invalid session key")

// Clock yields elapsed milliseconds since a fixed epoch. Readings must be
// monotonically non-decreasing; the signer truncates them to 32 bits and
// drops the low 8 bits to form the signature validity window.
type Clock func() int64

// Option configures a Session at construction time.
type Option func(*Session)

// WithClock replaces the millisecond clock source. Intended for tests and
// for callers that need a shared, adjustable time base.
func WithClock(clock Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Session is the identity and secret state of one authenticated server
// session. It is immutable after construction and safe for concurrent use.
type Session struct {
	key       string
	id        uint32
	idHex     string
	saltSeed  uint32
	createdAt int64
	clock     Clock
}

// New builds a Session from the Auth response key and the hashed password
// that was submitted at login.
//
// The key has the form "<id>+<private key>"; a bare decimal identifier is
// also accepted. The checksum salt seed is the CRC-32 of the password-hash
// text with a zero initial register, so the raw credential never needs to
// be retained.
func New(key, passwordHash string, opts ...Option) (*Session, error) {
	id, err := parseID(key)
	if err != nil {
		return nil, err
	}

	s := &Session{
		key:       key,
		id:        id,
		idHex:     sign.EncodeHex8(id),
		saltSeed:  sign.ChainCRC32(0, []byte(passwordHash)),
		createdAt: time.Now().UnixMilli(),
		clock:     defaultClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Restore rebuilds a Session from previously encoded state. It trusts its
// inputs; use [Decode] for untrusted blobs.
func Restore(id uint32, key string, saltSeed uint32, createdAt int64, opts ...Option) *Session {
	s := &Session{
		key:       key,
		id:        id,
		idHex:     sign.EncodeHex8(id),
		saltSeed:  saltSeed,
		createdAt: createdAt,
		clock:     defaultClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the numeric session identifier assigned by the server.
func (s *Session) ID() uint32 { return s.id }

// IDHex returns the identifier as eight uppercase hex characters, the form
// embedded in every signature.
func (s *Session) IDHex() string { return s.idHex }

// Key returns the raw session key string as received from the server.
func (s *Session) Key() string { return s.key }

// SaltSeed returns the 32-bit initial register of the request checksum
// chain.
func (s *Session) SaltSeed() uint32 { return s.saltSeed }

// CreatedAt reports when this session was established (or first encoded).
func (s *Session) CreatedAt() time.Time { return time.UnixMilli(s.createdAt) }

// TickCount reads the clock source, truncated to 32 bits. Concurrent reads
// may race with time advancing; a stale reading only narrows the signature
// validity window.
func (s *Session) TickCount() uint32 { return uint32(s.clock()) }

func defaultClock() int64 { return time.Now().UnixMilli() }

func parseID(key string) (uint32, error) {
	digits := key
	if i := strings.IndexByte(key, '+'); i >= 0 {
		digits = key[:i]
	}
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	var id uint64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		id = id*10 + uint64(c-'0')
		if id > math.MaxUint32 {
			return 0, fmt.Errorf("%w: identifier overflows 32 bits", ErrInvalidKey)
		}
	}
	return uint32(id), nil
}
