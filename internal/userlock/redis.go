package userlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so a
// lock that expired and was taken by someone else is left alone.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions configures a RedisLocker.
type RedisOptions struct {
	// Prefix is prepended to every key.
	Prefix string
	// TTL bounds how long a crashed holder can block others.
	TTL time.Duration
	// RetryInterval is the pause between acquisition attempts.
	RetryInterval time.Duration
}

// RedisLocker is a Locker shared by every process talking to the same
// Redis. It uses SET NX PX with a random token per acquisition.
type RedisLocker struct {
	rdb  goredis.Cmdable
	opts RedisOptions
}

// NewRedisLocker wraps an existing client.
func NewRedisLocker(rdb goredis.Cmdable, opts RedisOptions) *RedisLocker {
	if opts.Prefix == "" {
		opts.Prefix = "skillforge:lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 50 * time.Millisecond
	}
	return &RedisLocker{rdb: rdb, opts: opts}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr string) (*goredis.Client, error) {
	if addr == "" {
		return nil, errors.New("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Lock retries until the key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	full := l.opts.Prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, full, token, l.opts.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		t := time.NewTimer(l.opts.RetryInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			// A failed release only delays the next holder until TTL.
			_ = releaseScript.Run(ctx, l.rdb, []string{full}, token).Err()
		})
	}, nil
}
