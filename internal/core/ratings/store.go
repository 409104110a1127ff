package ratings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chuckle-chow/internal/infrastructure/config"
)

// TimeLayout 留言時間格式，與 SQLite CURRENT_TIMESTAMP 相同
const TimeLayout = "2006-01-02 15:04:05"

var (
	// ErrInvalidRating 評分不在 1 到 5
	ErrInvalidRating = errors.New("ratings: rating must be an integer between 1 and 5")
	// ErrMissingRecipe 沒有食譜鍵
	ErrMissingRecipe = errors.New("ratings: recipe is required")
)

// Comment 一則留言
type Comment struct {
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// Summary 食譜的平均評分
type Summary struct {
	Average float64 `json:"rating"`
	Count   int     `json:"rating_count"`
}

// Store 評分與留言的儲存
type Store interface {
	// Rate 記一筆評分，comment 非空時一併存成留言
	Rate(ctx context.Context, recipe string, rating int, comment string) (Summary, error)
	// Comments 依時間先後回傳留言
	Comments(ctx context.Context, recipe string) ([]Comment, error)
	Close() error
}

// New 依設定建立儲存
func New(cfg config.RatingsConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		s, err := NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown ratings driver %q", cfg.Driver)
	}
}

// check 共用的輸入檢查，回傳正規化後的鍵
func check(recipe string, rating int) (string, error) {
	recipe = strings.TrimSpace(recipe)
	if recipe == "" {
		return "", ErrMissingRecipe
	}
	if rating < 1 || rating > 5 {
		return "", ErrInvalidRating
	}
	return recipe, nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
