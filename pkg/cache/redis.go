package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// order_status:{order_code} -> JSON proyeksi status order
const KeyOrderStatus = "order_status:%s"

// StatusCache menyimpan proyeksi status order per order code.
// Get returns false when the key is absent.
type StatusCache interface {
	Get(ctx context.Context, orderCode string, dst any) (bool, error)
	Set(ctx context.Context, orderCode string, value any) error
	Delete(ctx context.Context, orderCode string) error
}

// NewRedisClient creates a pooled client and verifies the connection
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		// fallback: anggap url adalah host:port
		opts = &redis.Options{Addr: url}
	}

	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

type RedisStatusCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStatusCache(rdb redis.Cmdable, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{rdb: rdb, ttl: ttl}
}

func (c *RedisStatusCache) Get(ctx context.Context, orderCode string, dst any) (bool, error) {
	val, err := c.rdb.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderCode)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get order status %s: %w", orderCode, err)
	}

	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false, fmt.Errorf("decode order status %s: %w", orderCode, err)
	}
	return true, nil
}

func (c *RedisStatusCache) Set(ctx context.Context, orderCode string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode order status %s: %w", orderCode, err)
	}

	if err := c.rdb.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderCode), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("set order status %s: %w", orderCode, err)
	}
	return nil
}

func (c *RedisStatusCache) Delete(ctx context.Context, orderCode string) error {
	if err := c.rdb.Del(ctx, fmt.Sprintf(KeyOrderStatus, orderCode)).Err(); err != nil {
		return fmt.Errorf("delete order status %s: %w", orderCode, err)
	}
	return nil
}

// NopStatusCache dipakai kalau REDIS_URL kosong
type NopStatusCache struct{}

func (NopStatusCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NopStatusCache) Set(context.Context, string, any) error         { return nil }
func (NopStatusCache) Delete(context.Context, string) error           { return nil }
