package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/data/db"
	"github.com/gcfisi/coursehub-backend/internal/http"
	"github.com/gcfisi/coursehub-backend/internal/observability"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	shutdownOtel func(context.Context) error
	cancel       context.CancelFunc
}

// New loads configuration, opens and migrates the store, and wires every layer.
func New() (*App, error) {
	LoadDotEnv(nil)
	cfg := LoadConfig(nil)

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading environment variables...")
	cfg = LoadConfig(log)

	a, err := NewWithConfig(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(log *logger.Logger, cfg Config) (*App, error) {
	theDB, err := openDB(log, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	shutdownOtel := observability.InitOTel(context.Background(), log, cfg.Otel)
	metrics := observability.Init(log, cfg.MetricsEnabled)

	bucket, err := resolveBucketService(log, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	locker := wireLocker(log, cfg.RedisAddr)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, locker, bucket)
	handlerset := wireHandlers(theDB, log, cfg, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server, router := wireServer(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		shutdownOtel: shutdownOtel,
	}, nil
}

func openDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case DBDriverSQLite:
		s, err := db.NewSQLiteService(log, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return s.DB(), nil
	default:
		pg, err := db.NewPostgresService(log, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return pg.DB(), nil
	}
}

// Start launches background collectors.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil && strings.TrimSpace(a.Cfg.RedisAddr) != "" {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr, 15*time.Second)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, ":"+a.Cfg.Port, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.shutdownOtel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownOtel(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
