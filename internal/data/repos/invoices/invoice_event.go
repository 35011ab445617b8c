package invoices

import (
	"errors"

	"github.com/google/uuid"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
)

func (r *invoiceRepo) AppendEvent(dbc dbctx.Context, ev *types.InvoiceEvent) error {
	if ev == nil {
		return errors.New("nil event")
	}
	if ev.OwnerID == "" || ev.InvoiceID == "" || ev.Action == "" {
		return errors.New("event requires owner, invoice and action")
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(ev).Error
}

func (r *invoiceRepo) ListEvents(dbc dbctx.Context, ownerID, invoiceID string) ([]*types.InvoiceEvent, error) {
	out := []*types.InvoiceEvent{}
	if err := dbc.DB(r.db).
		Where("owner_id = ? AND invoice_id = ?", ownerID, invoiceID).
		Order("at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
