package refresh

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 2
	rotateStatusRotated  int64 = 3
)

// KEYS[1] record key; ARGV[1] presented token; ARGV[2] next token; ARGV[3] ttl ms.
const rotateRefreshScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  return 2
end
local ttl = tonumber(ARGV[3])
if ttl and ttl > 0 then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ttl)
else
  redis.call("SET", KEYS[1], ARGV[2])
end
return 3
`

var rotateRefreshLua = redis.NewScript(rotateRefreshScript)

// DefaultRedisPrefix namespaces refresh records when no prefix is configured.
const DefaultRedisPrefix = "nrt"

// RedisStore keeps one refresh token per user under "<prefix>:<userID>".
// Records carry the refresh TTL so they disappear with their token.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a RedisStore over client. An empty prefix selects
// DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + ":" + userID
}

// Save overwrites the record for userID.
//
//	Performance: 1 Redis SET.
func (s *RedisStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if userID == "" || token == "" {
		return ErrInvalidRecord
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Set(ctx, s.key(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the stored token for userID.
//
//	Performance: 1 Redis GET.
func (s *RedisStore) Get(ctx context.Context, userID string) (string, bool, error) {
	token, err := s.redis.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return token, true, nil
}

// Revoke deletes the record for userID. Deleting a missing key succeeds.
func (s *RedisStore) Revoke(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Validate reports whether token is exactly the stored token for userID.
func (s *RedisStore) Validate(ctx context.Context, userID, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	stored, ok, err := s.Get(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	return tokensEqual(stored, token), nil
}

// Rotate swaps current for next in one Lua script so concurrent rotations
// of the same token cannot both succeed.
//
//	Performance: 1 Lua EVALSHA.
func (s *RedisStore) Rotate(ctx context.Context, userID, current, next string, ttl time.Duration) error {
	if userID == "" || next == "" {
		return ErrInvalidRecord
	}
	if ttl < 0 {
		ttl = 0
	}

	code, err := rotateRefreshLua.Run(
		ctx,
		s.redis,
		[]string{s.key(userID)},
		current,
		next,
		strconv.FormatInt(ttl.Milliseconds(), 10),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	switch code {
	case rotateStatusRotated:
		return nil
	case rotateStatusMismatch:
		return ErrTokenMismatch
	case rotateStatusNotFound:
		return ErrRecordNotFound
	default:
		return fmt.Errorf("%w: unknown rotate script status %d", ErrStoreUnavailable, code)
	}
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
