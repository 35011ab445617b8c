package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/invoice-ingest-backend/internal/data/db"
	"github.com/yungbote/invoice-ingest-backend/internal/http/middleware"
	"github.com/yungbote/invoice-ingest-backend/internal/observability"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/envutil"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

const (
	AuthModeFirebase = "firebase"
	AuthModeHMAC     = "hmac"
)

type Config struct {
	Env     string
	Port    string
	LogMode string

	ProjectID                  string
	DocumentAILocation         string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	Bucket              string
	ObjectStorageMode   string
	StorageEmulatorHost string
	SignedURLTTL        time.Duration

	DB db.Config

	AuthMode          string
	FirebaseProjectID string
	JWTSecretKey      string
	JWTIssuer         string

	CORSOrigins []string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisChannel    string
	ProfileCacheTTL time.Duration

	Otel observability.OtelConfig

	ShutdownTimeout time.Duration
}

// LoadConfig reads the process environment, after merging an optional .env file.
func LoadConfig(log *logger.Logger) Config {
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded .env file")
	}

	env := envutil.String("APP_ENV", "dev")
	project := envutil.First("", "GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT")
	cfg := Config{
		Env:     env,
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),

		ProjectID:                  project,
		DocumentAILocation:         envutil.First("us", "DOCUMENTAI_LOCATION", "GOOGLE_CLOUD_REGION"),
		DocumentAIProcessorID:      envutil.String("DOCAI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: envutil.String("DOCAI_PROCESSOR_VERSION", ""),

		Bucket:              envutil.String("GCS_BUCKET", ""),
		ObjectStorageMode:   envutil.String("OBJECT_STORAGE_MODE", ""),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		SignedURLTTL:        envutil.Duration("SIGNED_URL_TTL", 10*time.Minute),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			DSN:              envutil.String("DATABASE_URL", ""),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "invoices"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "invoices.db"),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5),
			LogLevel:         envutil.String("DB_LOG_LEVEL", "warn"),
		},

		AuthMode:          strings.ToLower(envutil.String("AUTH_MODE", AuthModeFirebase)),
		FirebaseProjectID: envutil.String("FIREBASE_PROJECT_ID", project),
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", ""),
		JWTIssuer:         envutil.String("JWT_ISSUER", "invoice-ingest"),

		CORSOrigins: envutil.CSV("CORS_ORIGINS", middleware.DefaultOrigins),

		RedisAddr:       envutil.String("REDIS_ADDR", ""),
		RedisPassword:   envutil.String("REDIS_PASSWORD", ""),
		RedisDB:         envutil.Int("REDIS_DB", 0),
		RedisChannel:    envutil.String("REDIS_CHANNEL", "invoice-events"),
		ProfileCacheTTL: envutil.Duration("PROFILE_CACHE_TTL", 5*time.Minute),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", observability.DefaultServiceName),
			Environment: env,
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1.0),
		},

		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	return cfg
}

// Validate reports the first required value missing for the selected modes.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("missing GCS_BUCKET")
	}
	if strings.TrimSpace(c.ProjectID) == "" || strings.TrimSpace(c.DocumentAIProcessorID) == "" {
		return fmt.Errorf("missing GOOGLE_CLOUD_PROJECT or DOCAI_PROCESSOR_ID")
	}
	switch c.AuthMode {
	case AuthModeFirebase:
		if strings.TrimSpace(c.FirebaseProjectID) == "" {
			return fmt.Errorf("AUTH_MODE=firebase requires FIREBASE_PROJECT_ID")
		}
	case AuthModeHMAC:
		if len(c.JWTSecretKey) < 16 {
			return fmt.Errorf("AUTH_MODE=hmac requires JWT_SECRET_KEY of at least 16 bytes")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE=%q (allowed: %q, %q)", c.AuthMode, AuthModeFirebase, AuthModeHMAC)
	}
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER=%q", c.DB.Driver)
	}
	return nil
}

// EnvChecks exposes presence of required settings, never their values.
func (c Config) EnvChecks() map[string]bool {
	present := func(s string) bool { return strings.TrimSpace(s) != "" }
	return map[string]bool{
		"GOOGLE_CLOUD_PROJECT": present(c.ProjectID),
		"DOCAI_PROCESSOR_ID":   present(c.DocumentAIProcessorID),
		"GCS_BUCKET":           present(c.Bucket),
		"FIREBASE_PROJECT_ID":  present(c.FirebaseProjectID),
		"JWT_SECRET_KEY":       present(c.JWTSecretKey),
		"REDIS_ADDR":           present(c.RedisAddr),
	}
}
