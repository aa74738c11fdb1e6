package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/redis/go-redis/v9"
)

var (
	// Lua script for safe lock release (only owner can release)
	releaseLockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
)

// ChargeLock is a redis-backed lock taken around one installment charge so
// that two worker instances never double-charge the same installment.
type ChargeLock struct {
	client   *redis.Client
	key      string
	value    string
	ttl      time.Duration
	acquired bool
}

// NewChargeLock creates a lock for one installment id.
func NewChargeLock(client *redis.Client, installmentID string, ttl time.Duration) *ChargeLock {
	return &ChargeLock{
		client: client,
		key:    fmt.Sprintf("lock:installment:%s", installmentID),
		value:  uuid.New().String(),
		ttl:    ttl,
	}
}

// Acquire attempts to take the lock. Returns false without error when
// another worker holds it.
func (l *ChargeLock) Acquire(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.acquired = success
	return success, nil
}

// Release frees the lock if still owned by this holder.
func (l *ChargeLock) Release(ctx context.Context) error {
	if !l.acquired {
		return domainErrors.ErrLockNotHeld
	}
	res, err := releaseLockScript.Run(ctx, l.client, []string{l.key}, l.value).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if res == 0 {
		return domainErrors.ErrLockNotHeld
	}
	l.acquired = false
	return nil
}
