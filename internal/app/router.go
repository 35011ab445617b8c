package app

import (
	httpapi "github.com/yungbote/invoice-ingest-backend/internal/http"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *httpapi.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		CORSOrigins:    cfg.CORSOrigins,
		AuthMiddleware: middleware.Auth,
		HealthHandler:  handlers.Health,
		EventHandler:   handlers.Event,
		UserHandler:    handlers.User,
		InvoiceHandler: handlers.Invoice,
		StorageHandler: handlers.Storage,
	})
}
