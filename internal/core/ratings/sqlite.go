package ratings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ratingRow struct {
	Recipe      string  `gorm:"primaryKey;size:191"`
	Rating      float64 `gorm:"not null;default:0"`
	RatingCount int     `gorm:"not null;default:0"`
}

func (ratingRow) TableName() string { return "recipe_ratings" }

type commentRow struct {
	ID        uint   `gorm:"primaryKey"`
	Recipe    string `gorm:"index;size:191;not null"`
	Comment   string
	CreatedAt time.Time
}

func (commentRow) TableName() string { return "recipe_comments" }

// SQLiteStore 以 SQLite 保存評分，平均值逐筆累計
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore 開啟資料庫並建立資料表
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&ratingRow{}, &commentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Rate 實作 Store
func (s *SQLiteStore) Rate(ctx context.Context, recipe string, rating int, comment string) (Summary, error) {
	key, err := check(recipe, rating)
	if err != nil {
		return Summary{}, err
	}

	var out Summary
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row ratingRow
		err := tx.First(&row, "recipe = ?", key).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		row.Recipe = key
		newCount := row.RatingCount + 1
		row.Rating = (row.Rating*float64(row.RatingCount) + float64(rating)) / float64(newCount)
		row.RatingCount = newCount
		if err := tx.Save(&row).Error; err != nil {
			return err
		}

		if c := strings.TrimSpace(comment); c != "" {
			if err := tx.Create(&commentRow{Recipe: key, Comment: c}).Error; err != nil {
				return err
			}
		}
		out = Summary{Average: row.Rating, Count: row.RatingCount}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to record rating: %w", err)
	}
	return out, nil
}

// Comments 實作 Store
func (s *SQLiteStore) Comments(ctx context.Context, recipe string) ([]Comment, error) {
	var rows []commentRow
	if err := s.db.WithContext(ctx).
		Where("recipe = ?", strings.TrimSpace(recipe)).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	out := make([]Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, Comment{Comment: r.Comment, CreatedAt: stamp(r.CreatedAt)})
	}
	return out, nil
}

// Close 實作 Store
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
