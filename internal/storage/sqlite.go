package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/deusflow/newsflash/internal/logger"
)

const slowQueryThresholdSeconds = 3

// aiEntry is the gorm model behind SQLiteStore.
type aiEntry struct {
	CacheKey  string `gorm:"primaryKey;size:64"`
	Kind      string `gorm:"index;size:20"`
	Value     string
	Provider  string
	CreatedAt time.Time `gorm:"index"`
	UseCount  int
}

func (aiEntry) TableName() string { return "ai_cache" }

// SQLiteStore keeps entries in a local SQLite database file.
type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(
			log.New(os.Stderr, "\r\n", log.LstdFlags),
			gormlogger.Config{
				SlowThreshold:             slowQueryThresholdSeconds * time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				ParameterizedQueries:      true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&aiEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) (Entry, bool) {
	var row aiEntry
	err := s.db.Where("cache_key = ?", key).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Error reading AI cache", "error", err)
		}
		return Entry{}, false
	}
	return Entry{
		Key:       row.CacheKey,
		Kind:      row.Kind,
		Value:     row.Value,
		Provider:  row.Provider,
		CreatedAt: row.CreatedAt,
		UseCount:  row.UseCount,
	}, true
}

func (s *SQLiteStore) Put(e Entry) error {
	e = stamp(e)
	row := aiEntry{
		CacheKey:  e.Key,
		Kind:      e.Kind,
		Value:     e.Value,
		Provider:  e.Provider,
		CreatedAt: e.CreatedAt,
		UseCount:  1,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"kind":       e.Kind,
			"value":      e.Value,
			"provider":   e.Provider,
			"created_at": e.CreatedAt,
			"use_count":  gorm.Expr("use_count + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert AI result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Prune(olderThan time.Time) (int, error) {
	result := s.db.Where("created_at < ?", olderThan.UTC()).Delete(&aiEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old entries: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (s *SQLiteStore) Stats() map[string]int {
	var rows []struct {
		Kind  string
		Count int
	}
	stats := make(map[string]int)
	err := s.db.Model(&aiEntry{}).Select("kind, count(*) as count").Group("kind").Scan(&rows).Error
	if err != nil {
		logger.Warn("Error reading AI cache stats", "error", err)
		return stats
	}

	total := 0
	for _, r := range rows {
		stats["kind_"+r.Kind] = r.Count
		total += r.Count
	}
	stats["total_items"] = total
	return stats
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
