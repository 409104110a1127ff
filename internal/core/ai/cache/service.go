package cache

import (
	"context"
	"errors"
	"fmt"

	"chuckle-chow/internal/infrastructure/config"
	"chuckle-chow/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "chow:generator:"

// RedisCache 以 Redis 保存生成結果，過期交給 Redis TTL
type RedisCache struct {
	client *redis.Client
	config config.CacheConfig
}

// NewRedisCache 連線並檢查 Redis
func NewRedisCache(cfg config.CacheConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cache redis url: %w", err)
	}
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisCacheWithClient(client, cfg), nil
}

// NewRedisCacheWithClient 使用既有連線
func NewRedisCacheWithClient(client *redis.Client, cfg config.CacheConfig) *RedisCache {
	return &RedisCache{client: client, config: cfg}
}

// Get 取得快取
func (s *RedisCache) Get(ctx context.Context, prompt string) (string, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+generateKey(prompt)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			common.LogCacheMiss("redis")
			return "", ErrMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	common.LogCacheHit("redis")
	return val, nil
}

// Set 寫入快取
func (s *RedisCache) Set(ctx context.Context, prompt, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+generateKey(prompt), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *RedisCache) Close() error {
	return s.client.Close()
}
