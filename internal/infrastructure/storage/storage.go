package storage

import (
	"context"
	"errors"
	"fmt"

	"chuckle-chow/internal/infrastructure/config"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrNotFound 鍵不存在
var ErrNotFound = errors.New("storage: key not found")

// KV 本地持久化的鍵值介面，對應瀏覽器的 localStorage
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New 依設定建立儲存實作
func New(cfg config.StorageConfig) (KV, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "redis":
		return NewRedisStore(cfg.RedisURL, cfg.KeyPrefix)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Open 與 New 相同，但開啟失敗時退回記憶體儲存並回傳原本的錯誤，
// 呼叫端據此提示使用者本次的變更不會保存
func Open(cfg config.StorageConfig) (KV, error) {
	kv, err := New(cfg)
	if err == nil {
		return kv, nil
	}
	common.LogWarn("storage unavailable, falling back to memory",
		zap.String("driver", cfg.Driver),
		zap.Error(err),
	)
	return NewMemoryStore(), err
}
