// Package storage persists users, rooms, messages, bans and refresh tokens
// in SQLite through GORM.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db   *gorm.DB
	path string
}

// Open connects to the SQLite database at path (":memory:" works) and
// migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database handle: %w", err)
	}
	// SQLite has a single writer; one connection also keeps ":memory:" a
	// single database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&userModel{}, &roomModel{}, &messageModel{}, &banModel{}, &refreshModel{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	log.Info().Str("module", "storage").Str("path", path).Msg("database ready")
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
