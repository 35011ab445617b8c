package db

import (
	"fmt"
	stdlog "log"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string

	// DSN wins over the discrete postgres fields when set.
	DSN              string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string

	SQLitePath string

	MaxOpenConns int
	MaxIdleConns int
	LogLevel     string
}

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// Open connects to the configured driver. sqlite is meant for local runs and tests.
func Open(log *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := log.With("service", "DatabaseService")

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverPostgres
	}

	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(cfg.LogLevel),
	}

	var (
		theDB *gorm.DB
		err   error
	)
	switch driver {
	case DriverPostgres:
		theDB, err = gorm.Open(postgres.Open(postgresDSN(cfg)), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
	case DriverSQLite:
		path := strings.TrimSpace(cfg.SQLitePath)
		if path == "" {
			path = "file:invoices.db?_foreign_keys=on"
		}
		theDB, err = gorm.Open(sqlite.Open(path), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
		}
		// sqlite serializes writers; one connection keeps in-memory databases shared.
		cfg.MaxOpenConns = 1
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (allowed: %q, %q)", cfg.Driver, DriverPostgres, DriverSQLite)
	}

	sqlDB, err := theDB.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	serviceLog.Info("Database connected", "driver", driver)
	return &Service{db: theDB, driver: driver, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }

func (s *Service) AutoMigrateAll() error {
	if err := AutoMigrateAll(s.db); err != nil {
		return err
	}
	s.log.Info("Database schema migrated")
	return nil
}

func (s *Service) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func postgresDSN(cfg Config) string {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn
	}
	host := firstNonEmpty(cfg.PostgresHost, "localhost")
	port := firstNonEmpty(cfg.PostgresPort, "5432")
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(firstNonEmpty(cfg.PostgresUser, "postgres"), cfg.PostgresPassword),
		Host:   host + ":" + port,
		Path:   "/" + firstNonEmpty(cfg.PostgresName, "invoices"),
	}
	q := url.Values{}
	q.Set("sslmode", firstNonEmpty(cfg.PostgresSSLMode, "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

func newGormLogger(level string) gormLogger.Interface {
	lvl := gormLogger.Warn
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		lvl = gormLogger.Silent
	case "error":
		lvl = gormLogger.Error
	case "info":
		lvl = gormLogger.Info
	}
	return gormLogger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func firstNonEmpty(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
