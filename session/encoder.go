package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const encodingVersion = 1

// blob layout: version(1) id(4) saltSeed(4) createdAt(8) keyLen(2) key.
const encodedHeaderLen = 19

// ErrCorruptBlob is returned by [Decode] for blobs that do not parse.
var ErrCorruptBlob = errors.New("corrupt session blob")

// Encode serializes s for the [Store]. The blob carries no credential
// material: the salt seed is already a one-way checksum of the password
// hash.
func Encode(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	if len(s.key) > math.MaxUint16 {
		return nil, errors.New("session key too long")
	}

	buf := make([]byte, 0, encodedHeaderLen+len(s.key))
	buf = append(buf, encodingVersion)
	buf = binary.BigEndian.AppendUint32(buf, s.id)
	buf = binary.BigEndian.AppendUint32(buf, s.saltSeed)
	buf = binary.BigEndian.AppendUint64(buf, uint64(s.createdAt))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s.key)))
	buf = append(buf, s.key...)
	return buf, nil
}

// Decode rebuilds a Session from an [Encode] blob.
func Decode(blob []byte, opts ...Option) (*Session, error) {
	if len(blob) < encodedHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptBlob, len(blob))
	}
	if blob[0] != encodingVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrCorruptBlob, blob[0])
	}

	id := binary.BigEndian.Uint32(blob[1:5])
	saltSeed := binary.BigEndian.Uint32(blob[5:9])
	createdAt := int64(binary.BigEndian.Uint64(blob[9:17]))
	keyLen := int(binary.BigEndian.Uint16(blob[17:19]))
	if len(blob) != encodedHeaderLen+keyLen {
		return nil, fmt.Errorf("%w: key length %d does not match blob", ErrCorruptBlob, keyLen)
	}

	return Restore(id, string(blob[encodedHeaderLen:]), saltSeed, createdAt, opts...), nil
}
