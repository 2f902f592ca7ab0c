// Package userlock serializes work per learner. Recomputes for one user
// must not interleave; recomputes for different users never wait on each
// other.
package userlock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive lock on a key. The returned unlock func is
// safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LocalLocker is an in-process Locker backed by one channel per key.
// Entries are reference counted and dropped once nobody holds or waits
// for them.
type LocalLocker struct {
	mu   sync.Mutex
	keys map[string]*localEntry
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker returns an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: make(map[string]*localEntry)}
}

// Lock blocks until the key is free or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.keys[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.keys[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *LocalLocker) release(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.keys, key)
	}
}

// size returns the number of tracked keys.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
