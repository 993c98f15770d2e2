package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gcfisi/coursehub-backend/internal/data/db"
	"github.com/gcfisi/coursehub-backend/internal/observability"
	"github.com/gcfisi/coursehub-backend/internal/platform/envutil"
	"github.com/gcfisi/coursehub-backend/internal/platform/gcp"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

type Config struct {
	Port            string
	LogMode         string
	ShutdownTimeout time.Duration

	DBDriver   string
	Postgres   db.PostgresConfig
	SQLitePath string

	JWTSecretKey   string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	Reset                 services.ResetConfig
	StructureTemplatePath string

	MaxUploadBytes          int64
	ResourceVisibleOnUpload bool

	RedisAddr string
	Bucket    gcp.BucketConfig

	MetricsEnabled bool
	Otel           observability.OtelConfig
	CORSOrigins    []string
}

// LoadDotEnv pre-loads a .env file when present. Variables already set in the
// process environment win.
func LoadDotEnv(log *logger.Logger, paths ...string) {
	if err := godotenv.Load(paths...); err != nil && log != nil {
		log.Debug("no .env file loaded", "error", err)
	}
}

func LoadConfig(log *logger.Logger) Config {
	resetDefaults := services.DefaultResetConfig()
	maxUploadMB := envutil.Int("MAX_UPLOAD_MB", int(services.DefaultMaxUploadBytes>>20))
	if maxUploadMB <= 0 {
		maxUploadMB = int(services.DefaultMaxUploadBytes >> 20)
	}

	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		LogMode:         envutil.String("LOG_MODE", "development"),
		ShutdownTimeout: time.Duration(envutil.Int("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,

		DBDriver: strings.ToLower(envutil.String("DB_DRIVER", DBDriverPostgres)),
		Postgres: db.PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.String("POSTGRES_PORT", "5432"),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", "coursehub"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		},
		SQLitePath: envutil.String("SQLITE_PATH", "coursehub.db"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		JWTIssuer:      envutil.String("JWT_ISSUER", "coursehub"),
		AccessTokenTTL: time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,

		Reset: services.ResetConfig{
			SettleDelay:    envutil.Millis("STRUCTURE_RESET_SETTLE_MS", resetDefaults.SettleDelay),
			PollDelay:      envutil.Millis("STRUCTURE_RESET_POLL_MS", resetDefaults.PollDelay),
			VerifyAttempts: envutil.Int("STRUCTURE_RESET_ATTEMPTS", resetDefaults.VerifyAttempts),
			LockTTL:        resetDefaults.LockTTL,
		},
		StructureTemplatePath: envutil.String("STRUCTURE_TEMPLATE_PATH", ""),

		MaxUploadBytes:          int64(maxUploadMB) << 20,
		ResourceVisibleOnUpload: envutil.Bool("RESOURCE_VISIBLE_ON_UPLOAD", true),

		RedisAddr: envutil.String("REDIS_ADDR", ""),
		Bucket: gcp.BucketConfig{
			Name:            envutil.String("RESOURCE_BUCKET_NAME", ""),
			CDNDomain:       envutil.String("RESOURCE_CDN_DOMAIN", ""),
			Mode:            envutil.String("OBJECT_STORAGE_MODE", ""),
			EmulatorHost:    envutil.String("STORAGE_EMULATOR_HOST", ""),
			PublicBaseURL:   envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", ""),
			CredentialsJSON: envutil.String("GCP_CREDENTIALS_JSON", ""),
			CredentialsFile: envutil.String("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "coursehub-api"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		},
		CORSOrigins: splitList(envutil.String("CORS_ORIGINS", "")),
	}

	if cfg.Reset.VerifyAttempts <= 0 {
		cfg.Reset.VerifyAttempts = 1
	}
	if cfg.DBDriver != DBDriverSQLite {
		cfg.DBDriver = DBDriverPostgres
	}
	if log != nil {
		if cfg.JWTSecretKey == "defaultsecret" {
			log.Warn("JWT_SECRET_KEY not set; using the development default")
		}
		log.Info("config loaded",
			"db_driver", cfg.DBDriver,
			"port", cfg.Port,
			"reset_attempts", cfg.Reset.VerifyAttempts,
			"redis", cfg.RedisAddr != "",
			"bucket", cfg.Bucket.Name,
			"otel", cfg.Otel.Enabled,
		)
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
