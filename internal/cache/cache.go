// Package cache 缓存 Nextcloud 公告接口的原始响应
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss 键不存在或已过期
var ErrMiss = errors.New("cache miss")

// lastModifiedSuffix Last-Modified 值与正文共用同一个键前缀
const lastModifiedSuffix = ":last-modified"

// ResponseCache 原始响应缓存，所有实现都需可被多个请求并发使用
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte, ttl time.Duration) error
	GetLastModified(ctx context.Context, key string) (string, error)
	PutLastModified(ctx context.Context, key, value string, ttl time.Duration) error
	// Touch 刷新正文和 Last-Modified 的过期时间，正文不存在时返回 false
	Touch(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Delete 删除正文和 Last-Modified
	Delete(ctx context.Context, key string) error
}

func lastModifiedKey(key string) string {
	return key + lastModifiedSuffix
}
