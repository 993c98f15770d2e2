package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewSQLiteService opens a local SQLite store with foreign keys enforced.
// path may be a file path or a "file:" URI.
func NewSQLiteService(logg *logger.Logger, path string) (*SQLiteService, error) {
	serviceLog := logg.With("service", "SQLiteService")

	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	serviceLog.Info("opened", "path", path)
	return &SQLiteService{db: db, log: serviceLog}, nil
}

func (s *SQLiteService) DB() *gorm.DB { return s.db }

func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		return nil, fmt.Errorf("missing sqlite path")
	}
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; one connection keeps in-memory databases alive
	// and avoids "database is locked" under concurrent requests.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
