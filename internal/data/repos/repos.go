package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/invoice-ingest-backend/internal/data/repos/invoices"
	"github.com/yungbote/invoice-ingest-backend/internal/data/repos/user"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

type InvoiceRepo = invoices.InvoiceRepo
type ProfileRepo = user.ProfileRepo

func NewInvoiceRepo(db *gorm.DB, baseLog *logger.Logger) InvoiceRepo {
	return invoices.NewInvoiceRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return user.NewProfileRepo(db, baseLog)
}
