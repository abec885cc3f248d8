package lock

import (
	"context"
	"fmt"
	"time"

	"tasky/internal/schema/domain/repository"
	"tasky/internal/shared/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a single-instance Redis lock built on SET NX PX
type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

var _ repository.Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a locker whose leases expire after ttl
func NewRedisLocker(client redis.Cmdable, ttl time.Duration, log logger.Logger) *RedisLocker {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl, logger: log.WithComponent("redis-locker")}
}

// Acquire takes the lock or fails with repository.ErrLockHeld
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis SETNX %s: %w", key, err)
	}
	if !ok {
		return nil, repository.ErrLockHeld
	}

	l.logger.Debugf("Acquired lock %s for %s", key, l.ttl)
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}

// NoopLocker never blocks. Used when no Redis is configured.
type NoopLocker struct{}

// Acquire always succeeds
func (NoopLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
