package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisAllocator hands out per-year purchase order sequence numbers using a
// Redis counter. INCR is atomic, so concurrent creators never receive the
// same number.
type RedisAllocator struct {
	client *redis.Client
}

// NewRedisAllocator creates a new RedisAllocator
func NewRedisAllocator(client *redis.Client) *RedisAllocator {
	return &RedisAllocator{client: client}
}

// NextSequence returns the next sequence number for the given year
func (a *RedisAllocator) NextSequence(ctx context.Context, year int) (int64, error) {
	key := fmt.Sprintf("po:seq:%d", year)
	seq, err := a.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate po sequence: %w", err)
	}
	return seq, nil
}

// SeedSequence raises the counter to at least the given value
// Used at startup to fast-forward a fresh Redis past numbers already stored
// in the database
func (a *RedisAllocator) SeedSequence(ctx context.Context, year int, minimum int64) error {
	key := fmt.Sprintf("po:seq:%d", year)

	current, err := a.client.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read po sequence: %w", err)
	}
	if current >= minimum {
		return nil
	}
	if err := a.client.Set(ctx, key, minimum, 0).Err(); err != nil {
		return fmt.Errorf("failed to seed po sequence: %w", err)
	}
	return nil
}
