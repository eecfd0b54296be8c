package chain

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrLockBusy means another chain run holds the per-order lock right now.
var ErrLockBusy = errors.New("order lock busy")

// Locker serializes chain execution per order id. Acquire either takes the
// lock immediately or fails with ErrLockBusy; chains never queue behind each
// other, the caller retries instead.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// KeyedMutex is the in-process locker used when Redis is not configured.
// It only protects against concurrent chains within one process.
type KeyedMutex struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{held: make(map[string]bool)}
}

func (m *KeyedMutex) Acquire(_ context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return nil, ErrLockBusy
	}
	m.held[key] = true
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, key)
	}, nil
}

// redisReleaseScript deletes the lock key only if it still carries our token,
// so an expired lock reacquired by another run is never released from here.
const redisReleaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// RedisLocker serializes chains across processes with SET NX PX. The TTL
// bounds how long a crashed run can block an order.
type RedisLocker struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *goredis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockBusy
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.client.Eval(releaseCtx, redisReleaseScript, []string{key}, token).Err()
	}, nil
}
