package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotObtained is returned when another process holds the run lock.
var ErrLockNotObtained = errors.New("run lock held by another process")

// Lock is a held run lock.
type Lock interface {
	Release(ctx context.Context) error
}

// RunLocker serializes replenishment runs for the same week.
type RunLocker interface {
	Obtain(ctx context.Context, week int, ttl time.Duration) (Lock, error)
}

type redisRunLocker struct {
	client *redislock.Client
}

// NewRedisRunLocker locks across processes through redis.
func NewRedisRunLocker(client *redis.Client) RunLocker {
	return &redisRunLocker{client: redislock.New(client)}
}

func (l *redisRunLocker) Obtain(ctx context.Context, week int, ttl time.Duration) (Lock, error) {
	lock, err := l.client.Obtain(ctx, runLockKey(week), ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain run lock: %w", err)
	}
	return lock, nil
}

// localRunLocker locks within the process when redis is disabled.
type localRunLocker struct {
	mu   sync.Mutex
	held map[int]bool
}

func NewLocalRunLocker() RunLocker {
	return &localRunLocker{held: make(map[int]bool)}
}

func (l *localRunLocker) Obtain(ctx context.Context, week int, ttl time.Duration) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[week] {
		return nil, ErrLockNotObtained
	}
	l.held[week] = true
	return &localLock{locker: l, week: week}, nil
}

type localLock struct {
	locker *localRunLocker
	week   int
	once   sync.Once
}

func (k *localLock) Release(ctx context.Context) error {
	k.once.Do(func() {
		k.locker.mu.Lock()
		delete(k.locker.held, k.week)
		k.locker.mu.Unlock()
	})
	return nil
}

func runLockKey(week int) string {
	return fmt.Sprintf("replenishment:run-lock:w%d", week)
}
