package cache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Elmalamb/vdm/internal/domain/service"
)

const roleKeyPrefix = "vdm:role:"

// RedisRoleCache keeps resolved roles for ttl so the users collection is
// not read on every request.
type RedisRoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ service.RoleCache = (*RedisRoleCache)(nil)

func NewRedisRoleCache(url string, ttl time.Duration) (*RedisRoleCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &RedisRoleCache{client: c, ttl: ttl}, nil
}

func NewRedisRoleCacheFromClient(client *redis.Client, ttl time.Duration) *RedisRoleCache {
	return &RedisRoleCache{client: client, ttl: ttl}
}

func (r *RedisRoleCache) Get(ctx context.Context, uid string) (string, bool, error) {
	role, err := r.client.Get(ctx, roleKeyPrefix+uid).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

func (r *RedisRoleCache) Set(ctx context.Context, uid, role string) error {
	return r.client.Set(ctx, roleKeyPrefix+uid, role, r.ttl).Err()
}

func (r *RedisRoleCache) Close() error {
	return r.client.Close()
}
