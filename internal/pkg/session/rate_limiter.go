// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckTokenAttempt rate limits token minting per IP + key prefix.
// Allows up to 10 attempts per 15 minutes.
func (r *RateLimiter) CheckTokenAttempt(ctx context.Context, ip, keyPrefix string) (bool, int64, error) {
	key := fmt.Sprintf("ratelimit:token:%s:%s", ip, keyPrefix)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment token attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		r.client.Expire(ctx, key, 15*time.Minute)
	}

	maxAttempts := int64(10)
	remaining := maxAttempts - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= maxAttempts, remaining, nil
}

// ResetTokenAttempts clears the counter after a successful mint.
func (r *RateLimiter) ResetTokenAttempts(ctx context.Context, ip, keyPrefix string) error {
	return r.client.Del(ctx, fmt.Sprintf("ratelimit:token:%s:%s", ip, keyPrefix)).Err()
}

// CheckImportAttempt rate limits CSV bulk imports per merchant.
// Allows up to 5 imports per hour.
func (r *RateLimiter) CheckImportAttempt(ctx context.Context, merchantID string) (bool, error) {
	key := fmt.Sprintf("ratelimit:import:%s", merchantID)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment import attempt: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, time.Hour)
	}

	return count <= 5, nil
}

// RemainingTokenAttempts returns how many token mints are still allowed.
func (r *RateLimiter) RemainingTokenAttempts(ctx context.Context, ip, keyPrefix string) (int64, error) {
	key := fmt.Sprintf("ratelimit:token:%s:%s", ip, keyPrefix)

	count, err := r.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 10, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get token attempts: %w", err)
	}

	remaining := int64(10) - count
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}
