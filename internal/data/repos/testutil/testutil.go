package testutil

import (
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/gcfisi/coursehub-backend/internal/data/db"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database. With TEST_POSTGRES_DSN set it is a shared
// Postgres connection; otherwise every call gets a fresh in-memory SQLite.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		return SQLite(tb)
	}

	pgOnce.Do(func() {
		var err error
		pgDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
			TranslateError: true,
		})
		if err != nil {
			pgErr = err
			return
		}
		pgErr = dbpkg.AutoMigrateAll(pgDB)
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgDB
}

// SQLite returns a fresh migrated in-memory database, regardless of TEST_POSTGRES_DSN.
func SQLite(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := dbpkg.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	db = db.Session(&gorm.Session{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	if err := dbpkg.AutoMigrateAll(db); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
