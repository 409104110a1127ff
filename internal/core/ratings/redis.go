package ratings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisPrefix = "chow:ratings:"

// RedisStore 評分存在 hash，留言存在 list
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore 連線並檢查 Redis
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid ratings redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient 使用既有連線
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func scoreKey(recipe string) string   { return redisPrefix + "score:" + recipe }
func commentKey(recipe string) string { return redisPrefix + "comments:" + recipe }

// Rate 實作 Store
func (s *RedisStore) Rate(ctx context.Context, recipe string, rating int, comment string) (Summary, error) {
	key, err := check(recipe, rating)
	if err != nil {
		return Summary{}, err
	}

	pipe := s.client.TxPipeline()
	sum := pipe.HIncrBy(ctx, scoreKey(key), "sum", int64(rating))
	count := pipe.HIncrBy(ctx, scoreKey(key), "count", 1)
	if c := strings.TrimSpace(comment); c != "" {
		data, err := json.Marshal(Comment{Comment: c, CreatedAt: stamp(s.now())})
		if err != nil {
			return Summary{}, err
		}
		pipe.RPush(ctx, commentKey(key), data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return Summary{}, fmt.Errorf("failed to record rating: %w", err)
	}
	return Summary{Average: float64(sum.Val()) / float64(count.Val()), Count: int(count.Val())}, nil
}

// Comments 實作 Store
func (s *RedisStore) Comments(ctx context.Context, recipe string) ([]Comment, error) {
	raw, err := s.client.LRange(ctx, commentKey(strings.TrimSpace(recipe)), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	out := make([]Comment, 0, len(raw))
	for _, item := range raw {
		var c Comment
		if err := json.Unmarshal([]byte(item), &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Close 實作 Store
func (s *RedisStore) Close() error {
	return s.client.Close()
}
