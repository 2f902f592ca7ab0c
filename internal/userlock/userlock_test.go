package userlock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseMutualExclusion(t *testing.T, l Locker) {
	t.Helper()
	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "user-1")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker()
	exerciseMutualExclusion(t, l)
	assert.Zero(t, l.size(), "entries should be released")
}

func TestLocalLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocalLocker()
	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLocalLocker_ContextCancel(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op
	assert.Zero(t, l.size())
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("SKILLFORGE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SKILLFORGE_TEST_REDIS_ADDR not set")
	}
	rdb, err := NewRedisClient(context.Background(), addr)
	require.NoError(t, err)
	defer rdb.Close()

	l := NewRedisLocker(rdb, RedisOptions{Prefix: "skillforge-test:" + t.Name() + ":", RetryInterval: 5 * time.Millisecond})
	exerciseMutualExclusion(t, l)

	unlock, err := l.Lock(context.Background(), "held")
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "held")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	unlock()
}
