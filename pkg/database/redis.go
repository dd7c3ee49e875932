package database

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"noticeboard/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient 创建远程响应缓存使用的 Redis 客户端，连接不可用时直接返回错误
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis失败 (%s, db %d): %w", client.Options().Addr, cfg.DB, err)
	}

	return client, nil
}
