package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache 进程内缓存，过期在读取时判断，不启动清理协程
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryCache 创建进程内缓存，now 为 nil 时使用 time.Now
func NewMemoryCache(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		items: make(map[string]memoryEntry),
		now:   now,
	}
}

func (c *MemoryCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// 期间可能已被重新写入
		if cur, ok := c.items[key]; ok && !c.now().Before(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.items[key] = memoryEntry{value: stored, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Get 读取正文
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.get(key)
	if !ok {
		return nil, ErrMiss
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put 写入正文
func (c *MemoryCache) Put(_ context.Context, key string, body []byte, ttl time.Duration) error {
	c.set(key, body, ttl)
	return nil
}

// GetLastModified 读取 Last-Modified
func (c *MemoryCache) GetLastModified(_ context.Context, key string) (string, error) {
	v, ok := c.get(lastModifiedKey(key))
	if !ok {
		return "", ErrMiss
	}
	return string(v), nil
}

// PutLastModified 写入 Last-Modified
func (c *MemoryCache) PutLastModified(_ context.Context, key, value string, ttl time.Duration) error {
	c.set(lastModifiedKey(key), []byte(value), ttl)
	return nil
}

// Touch 刷新过期时间
func (c *MemoryCache) Touch(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if _, ok := c.get(key); !ok {
		return false, nil
	}
	expiresAt := c.now().Add(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range []string{key, lastModifiedKey(key)} {
		if e, ok := c.items[k]; ok {
			e.expiresAt = expiresAt
			c.items[k] = e
		}
	}
	return true, nil
}

// Delete 删除正文和 Last-Modified
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	delete(c.items, lastModifiedKey(key))
	c.mu.Unlock()
	return nil
}
