package steps

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/ctxutil"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

var statusPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

type StatusDeps struct {
	Log    *logger.Logger
	Ledger Ledger
	Clock  Clock

	Notifier Notifier
}

type SetStatusInput struct {
	RecordID string
	Status   string
	ByUID    string
}

type SetStatusOutput struct {
	OK       bool   `json:"ok"`
	RecordID string `json:"doc_id"`
	Status   string `json:"status"`
}

// SetStatus moves a record to a new status and appends STATUS_<UPPER> attributed to ByUID.
// Nothing is written for a missing record.
func SetStatus(ctx context.Context, deps StatusDeps, in SetStatusInput) (SetStatusOutput, error) {
	out := SetStatusOutput{RecordID: in.RecordID}
	if deps.Log == nil || deps.Ledger == nil || deps.Clock == nil {
		return out, fmt.Errorf("invoice_set_status: missing deps")
	}
	ownerID, invoiceID, ok := types.SplitRecordID(in.RecordID)
	if !ok {
		return out, fmt.Errorf("%w: malformed record id %q", ErrInvalidArgument, in.RecordID)
	}
	status := strings.TrimSpace(in.Status)
	if !statusPattern.MatchString(status) {
		return out, fmt.Errorf("%w: invalid status %q", ErrInvalidArgument, in.Status)
	}

	ev := &types.InvoiceEvent{
		Action: types.StatusAction(status),
		At:     deps.Clock.Now().UTC(),
	}
	if in.ByUID != "" {
		by := in.ByUID
		ev.ByUID = &by
	}
	found, err := deps.Ledger.SetStatus(dbctx.Context{Ctx: ctx}, ownerID, invoiceID, status, ev)
	if err != nil {
		return out, fmt.Errorf("%w: set status %s: %w", ErrQuery, in.RecordID, err)
	}
	if !found {
		return out, fmt.Errorf("%w: %s", ErrNotFound, in.RecordID)
	}

	log := deps.Log.With(append(ctxutil.LogFields(ctx), "owner_id", ownerID, "invoice_id", invoiceID)...)
	log.Info("Invoice status changed", "status", status, "by_uid", in.ByUID)
	notify(ctx, deps.Notifier, log, ev)

	out.OK = true
	out.Status = status
	return out, nil
}
