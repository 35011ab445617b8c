package app

import (
	httpH "github.com/yungbote/invoice-ingest-backend/internal/http/handlers"
	httpMW "github.com/yungbote/invoice-ingest-backend/internal/http/middleware"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Event   *httpH.EventHandler
	User    *httpH.UserHandler
	Invoice *httpH.InvoiceHandler
	Storage *httpH.StorageHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(cfg.Env, cfg.EnvChecks()),
		Event:   httpH.NewEventHandler(log, services.Invoices),
		User:    httpH.NewUserHandler(),
		Invoice: httpH.NewInvoiceHandler(log, services.Invoices),
		Storage: httpH.NewStorageHandler(services.Invoices),
	}
}

func wireMiddleware(log *logger.Logger, clients Clients, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, clients.Verifier, services.Profiles),
	}
}
