package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/oakhollow/banquet/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to the redis instance backing the booking event stream,
// flow-step keys, and installment charge locks. Startup retries cover the
// compose case where redis comes up after the service.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = 5
	}
	delay := cfg.ConnectRetryDelay
	if delay <= 0 {
		delay = 1 * time.Second
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		time.Sleep(time.Duration(i+1) * delay)
	}
	client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d retries: %w", attempts, lastErr)
}
