package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// BootstrapLockKey guards first-start provisioning across replicas.
	BootstrapLockKey = "postboard:lock:bootstrap"

	defaultLockTTL   = 30 * time.Second
	defaultLockRetry = 100 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Lock is a single-key mutex using SET NX with an expiry. It satisfies
// ports.Locker.
type Lock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	retry  time.Duration
}

// NewLock returns a lock on key. Zero ttl or retry pick the defaults.
func NewLock(client *redis.Client, key string, ttl, retry time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if retry <= 0 {
		retry = defaultLockRetry
	}
	return &Lock{client: client, key: key, ttl: ttl, retry: retry}
}

// Acquire polls until the key is set or ctx ends.
func (l *Lock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", l.key, err)
		}
		if ok {
			return func() { l.release(token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w", l.key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Lock) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	_ = releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
}
