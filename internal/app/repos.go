package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/invoice-ingest-backend/internal/data/repos"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

type Repos struct {
	Invoices repos.InvoiceRepo
	Profiles repos.ProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Invoices: repos.NewInvoiceRepo(db, log),
		Profiles: repos.NewProfileRepo(db, log),
	}
}
