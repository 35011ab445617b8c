package app

import (
	"github.com/yungbote/invoice-ingest-backend/internal/modules/invoices"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
	"github.com/yungbote/invoice-ingest-backend/internal/services"
)

type Services struct {
	Profiles services.ProfileService
	Invoices invoices.Usecases
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	var cache services.ProfileCache
	if clients.ProfileCache != nil {
		cache = clients.ProfileCache
	}
	profiles := services.NewProfileService(log, repos.Profiles, cache)

	deps := invoices.UsecasesDeps{
		Log:          log.With("module", "invoices"),
		Ledger:       repos.Invoices,
		Blobs:        clients.Bucket,
		Extractor:    clients.Document,
		Profiles:     profiles,
		UploadBucket: cfg.Bucket,
		SignedURLTTL: cfg.SignedURLTTL,
	}
	if clients.EventBus != nil {
		deps.Notifier = clients.EventBus
	}
	return Services{
		Profiles: profiles,
		Invoices: invoices.New(deps),
	}
}
