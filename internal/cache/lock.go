package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker guards background jobs so only one instance runs a given job at a time.
type Locker interface {
	// TryLock returns a release func when the lock was acquired, nil otherwise.
	TryLock(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

// RedisLocker is a SET NX PX lock with an owner token; release only deletes
// the key while this instance still owns it.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, prefix: "supportly:lock:"}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (l *RedisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := l.prefix + name
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return func() {
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}, nil
}

// LocalLocker serializes jobs inside one process; used when Redis is not configured.
type LocalLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	nowFn func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time), nowFn: time.Now}
}

func (l *LocalLocker) TryLock(_ context.Context, name string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowFn()
	if until, ok := l.held[name]; ok && now.Before(until) {
		return nil, nil
	}
	until := now.Add(ttl)
	l.held[name] = until
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[name].Equal(until) {
			delete(l.held, name)
		}
	}, nil
}
