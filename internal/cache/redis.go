package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache 基于 Redis 的缓存，过期由 Redis 负责
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get 读取正文
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put 写入正文
func (c *RedisCache) Put(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, body, ttl).Err()
}

// GetLastModified 读取 Last-Modified
func (c *RedisCache) GetLastModified(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, lastModifiedKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// PutLastModified 写入 Last-Modified
func (c *RedisCache) PutLastModified(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, lastModifiedKey(key), value, ttl).Err()
}

// Touch 刷新过期时间
func (c *RedisCache) Touch(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.Expire(ctx, key, ttl).Result()
	if err != nil || !ok {
		return false, err
	}
	if err := c.client.Expire(ctx, lastModifiedKey(key), ttl).Err(); err != nil {
		return true, err
	}
	return true, nil
}

// Delete 删除正文和 Last-Modified
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key, lastModifiedKey(key)).Err()
}
