package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SubmissionLock serializes RNDC traffic. Acquire blocks until the lock is
// held or ctx ends; the returned func releases it.
type SubmissionLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LocalLock serializes submissions inside one process.
type LocalLock struct {
	ch chan struct{}
}

func NewLocalLock() *LocalLock {
	return &LocalLock{ch: make(chan struct{}, 1)}
}

func (l *LocalLock) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.ch <- struct{}{}:
		return func() { <-l.ch }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire submission lock: %w", ctx.Err())
	}
}

const (
	lockKey        = "despachos:rndc:submission"
	lockRetry      = 250 * time.Millisecond
	DefaultLockTTL = 10 * time.Minute
)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

var extendScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLock serializes submissions across replicas with SET NX PX. The TTL
// bounds how long a crashed holder keeps the lock; a live holder renews it
// every ttl/3 until release.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisLock(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLock{client: client, key: lockKey, ttl: ttl, logger: logger}
}

// NewRedisLockFromURL parses a redis:// URL and checks the server answers.
func NewRedisLockFromURL(ctx context.Context, url string, ttl time.Duration, logger *zap.Logger) (*RedisLock, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisLock(client, ttl, logger), nil
}

func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("acquire submission lock: %w", err)
		}
		if ok {
			stopRenew := keepAlive(l.ttl/3, func() error { return l.extend(token) })
			return func() {
				stopRenew()
				// The request context may be gone by now.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
					l.logger.Error("release submission lock", zap.String("key", l.key), zap.Error(err))
				}
			}, nil
		}
		select {
		case <-time.After(lockRetry):
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire submission lock: %w", ctx.Err())
		}
	}
}

var errLockLost = errors.New("submission lock no longer held")

func (l *RedisLock) extend(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	n, err := extendScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
	if err != nil {
		l.logger.Warn("renew submission lock", zap.String("key", l.key), zap.Error(err))
		return nil
	}
	if n == 0 {
		l.logger.Error("submission lock lost before release", zap.String("key", l.key))
		return errLockLost
	}
	return nil
}

// keepAlive calls renew every interval until the returned stop func runs or
// renew returns an error. stop waits for the loop to exit.
func keepAlive(interval time.Duration, renew func() error) (stop func()) {
	if interval <= 0 {
		interval = time.Millisecond
	}
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := renew(); err != nil {
					return
				}
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-exited
		})
	}
}

func (l *RedisLock) Close() error {
	return l.client.Close()
}
