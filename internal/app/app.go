package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/invoice-ingest-backend/internal/data/db"
	httpapi "github.com/yungbote/invoice-ingest-backend/internal/http"
	"github.com/yungbote/invoice-ingest-backend/internal/observability"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/envutil"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *httpapi.Server

	shutdownOtel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &App{Log: log, Cfg: cfg}
	a.shutdownOtel = observability.InitOTel(ctx, log, cfg.Otel)

	a.DB, err = db.Open(log, cfg.DB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := a.DB.AutoMigrateAll(); err != nil {
		a.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}

	a.Clients, err = wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repos = wireRepos(a.DB.DB(), log)
	a.Services = wireServices(log, cfg, a.Repos, a.Clients)

	handlers := wireHandlers(log, cfg, a.Services)
	middleware := wireMiddleware(log, a.Clients, a.Services)
	a.Server = wireServer(log, cfg, handlers, middleware)
	return a, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests for up to SHUTDOWN_TIMEOUT.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + a.Cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("Server listening", "addr", addr, "env", a.Cfg.Env)
		errCh <- a.Server.Run(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Log.Info("Shutting down", "timeout", a.Cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	var errs []error
	errs = append(errs, a.Clients.Close())
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.shutdownOtel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		errs = append(errs, a.shutdownOtel(ctx))
		cancel()
	}
	if err := errors.Join(errs...); err != nil && a.Log != nil {
		a.Log.Warn("Close reported errors", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
