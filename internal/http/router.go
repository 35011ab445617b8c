package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/invoice-ingest-backend/internal/http/handlers"
	httpMW "github.com/yungbote/invoice-ingest-backend/internal/http/middleware"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler  *httpH.HealthHandler
	EventHandler   *httpH.EventHandler
	UserHandler    *httpH.UserHandler
	InvoiceHandler *httpH.InvoiceHandler
	StorageHandler *httpH.StorageHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	// Invoice ids derived from object names may carry an escaped "/".
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.Health)
		r.GET("/healthz", cfg.HealthHandler.Healthz)
		r.GET("/env-check", cfg.HealthHandler.EnvCheck)
	}

	// Storage push notifications
	if cfg.EventHandler != nil {
		r.POST("/", cfg.EventHandler.Push)
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		if cfg.InvoiceHandler != nil {
			protected.GET("/invoices", cfg.InvoiceHandler.List)
			protected.GET("/invoices/stats", cfg.InvoiceHandler.Stats)
			protected.POST("/invoices/from-upload", cfg.InvoiceHandler.FromUpload)
			protected.GET("/invoices/:ownerId/:invoiceId", cfg.InvoiceHandler.Get)
			protected.PATCH("/invoices/:ownerId/:invoiceId/status", cfg.InvoiceHandler.SetStatus)
			protected.POST("/invoices/:ownerId/:invoiceId/reprocess", cfg.InvoiceHandler.Reprocess)
		}

		if cfg.StorageHandler != nil {
			protected.GET("/storage/view-url/:ownerId/:invoiceId", cfg.StorageHandler.ViewURL)
			protected.POST("/storage/upload-url", cfg.StorageHandler.UploadURL)
		}
	}

	return r
}
