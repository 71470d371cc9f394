package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisCommands is the subset of redis.Cmdable the invalidator uses.
type redisCommands interface {
	FlushDB(ctx context.Context) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisInvalidator clears the read API's Redis cache directly, for
// deployments where the ELT job can reach the cache but not the API.
type RedisInvalidator struct {
	client redisCommands
	keys   []string
}

// NewRedisClient opens a client for addr. The connection is lazy; the first
// command dials.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

// NewRedisInvalidator deletes keys on Invalidate, or flushes the selected
// database when keys is empty.
func NewRedisInvalidator(client *redis.Client, keys ...string) *RedisInvalidator {
	return &RedisInvalidator{client: client, keys: keys}
}

func (r *RedisInvalidator) Invalidate(ctx context.Context) error {
	if len(r.keys) == 0 {
		if err := r.client.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("redis flushdb: %w", err)
		}
		return nil
	}
	if err := r.client.Del(ctx, r.keys...).Err(); err != nil {
		return fmt.Errorf("redis del %v: %w", r.keys, err)
	}
	return nil
}
