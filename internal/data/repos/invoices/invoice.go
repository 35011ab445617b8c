package invoices

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

// InvoiceRepo is the ledger of invoice records and their event logs.
type InvoiceRepo interface {
	Exists(dbc dbctx.Context, ownerID, invoiceID string) (bool, error)
	// Upsert inserts inv unless its identity is already stored and reports whether a row was written.
	// An existing record is never overwritten.
	Upsert(dbc dbctx.Context, inv *types.Invoice) (bool, error)
	// Create is Upsert plus the record's first event in one transaction.
	Create(dbc dbctx.Context, inv *types.Invoice, first *types.InvoiceEvent) (bool, error)
	Get(dbc dbctx.Context, ownerID, invoiceID string) (*types.Invoice, error)
	Scan(dbc dbctx.Context, f types.ScanFilter) ([]*types.Invoice, error)
	Count(dbc dbctx.Context, f types.ScanFilter) (int64, error)
	SetStatus(dbc dbctx.Context, ownerID, invoiceID, status string, ev *types.InvoiceEvent) (bool, error)

	AppendEvent(dbc dbctx.Context, ev *types.InvoiceEvent) error
	ListEvents(dbc dbctx.Context, ownerID, invoiceID string) ([]*types.InvoiceEvent, error)
}

type invoiceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInvoiceRepo(db *gorm.DB, baseLog *logger.Logger) InvoiceRepo {
	return &invoiceRepo{
		db:  db,
		log: baseLog.With("repo", "InvoiceRepo"),
	}
}

func (r *invoiceRepo) Exists(dbc dbctx.Context, ownerID, invoiceID string) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.Invoice{}).
		Where("owner_id = ? AND invoice_id = ?", ownerID, invoiceID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invoiceRepo) Upsert(dbc dbctx.Context, inv *types.Invoice) (bool, error) {
	if inv == nil {
		return false, errors.New("nil invoice")
	}
	if strings.TrimSpace(inv.OwnerID) == "" || inv.InvoiceID == "" {
		return false, errors.New("invoice identity required")
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(inv)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Debug("Invoice already present, create skipped", "owner_id", inv.OwnerID, "invoice_id", inv.InvoiceID)
		return false, nil
	}
	return true, nil
}

func (r *invoiceRepo) Create(dbc dbctx.Context, inv *types.Invoice, first *types.InvoiceEvent) (bool, error) {
	if first == nil {
		return false, errors.New("first event required")
	}
	created := false
	err := dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		ok, err := r.Upsert(txc, inv)
		if err != nil || !ok {
			return err
		}
		first.OwnerID, first.InvoiceID = inv.OwnerID, inv.InvoiceID
		if err := r.AppendEvent(txc, first); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *invoiceRepo) Get(dbc dbctx.Context, ownerID, invoiceID string) (*types.Invoice, error) {
	var out types.Invoice
	err := dbc.DB(r.db).
		Where("owner_id = ? AND invoice_id = ?", ownerID, invoiceID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *invoiceRepo) Scan(dbc dbctx.Context, f types.ScanFilter) ([]*types.Invoice, error) {
	q := scoped(dbc.DB(r.db).Model(&types.Invoice{}), f)
	if c := f.After; c != nil {
		q = q.Where(
			"(created_at < ?) OR (created_at = ? AND owner_id > ?) OR (created_at = ? AND owner_id = ? AND invoice_id > ?)",
			c.CreatedAt, c.CreatedAt, c.OwnerID, c.CreatedAt, c.OwnerID, c.InvoiceID,
		)
	}
	q = q.Order("created_at DESC").Order("owner_id ASC").Order("invoice_id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	out := []*types.Invoice{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *invoiceRepo) Count(dbc dbctx.Context, f types.ScanFilter) (int64, error) {
	var n int64
	if err := scoped(dbc.DB(r.db).Model(&types.Invoice{}), f).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// SetStatus moves a record to status and appends ev in one transaction.
// It reports false, writing nothing, when the record does not exist.
func (r *invoiceRepo) SetStatus(dbc dbctx.Context, ownerID, invoiceID, status string, ev *types.InvoiceEvent) (bool, error) {
	if ev == nil {
		return false, errors.New("status event required")
	}
	found := false
	err := dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&types.Invoice{}).
			Where("owner_id = ? AND invoice_id = ?", ownerID, invoiceID).
			Updates(map[string]interface{}{
				"status":     status,
				"updated_at": ev.At,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		found = true
		ev.OwnerID, ev.InvoiceID = ownerID, invoiceID
		return r.AppendEvent(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, ev)
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func scoped(q *gorm.DB, f types.ScanFilter) *gorm.DB {
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.UploaderUID != "" {
		q = q.Where("uploader_uid = ?", f.UploaderUID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}
