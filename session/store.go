package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport failures talking to Redis.
var ErrRedisUnavailable = errors.New("redis unavailable")

const defaultPrefix = "mauth"

// Store persists encoded sessions in Redis, keyed by user, so separate
// processes can reuse an authenticated session without a fresh handshake.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// NewStore creates a Store over rdb. An empty prefix falls back to "mauth".
func NewStore(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (st *Store) key(user string) string {
	return st.prefix + ":sess:" + user
}

// Save stores the encoded session for user with the given TTL.
func (st *Store) Save(ctx context.Context, user string, s *Session, ttl time.Duration) error {
	blob, err := Encode(s)
	if err != nil {
		return err
	}
	if err := st.rdb.Set(ctx, st.key(user), blob, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load returns the cached session for user, or nil when none is stored.
func (st *Store) Load(ctx context.Context, user string, opts ...Option) (*Session, error) {
	blob, err := st.rdb.Get(ctx, st.key(user)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return Decode(blob, opts...)
}

// Delete removes the cached session for user. Deleting a missing entry is
// not an error.
func (st *Store) Delete(ctx context.Context, user string) error {
	if err := st.rdb.Del(ctx, st.key(user)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
