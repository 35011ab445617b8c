package steps

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type QueryDeps struct {
	Log    *logger.Logger
	Ledger Ledger
}

type ListInput struct {
	Principal types.Principal
	Status    string
	// OwnerID filters by supplier tax id. Honoured for admins only.
	OwnerID string
	Limit   int
	Cursor  string
}

type ListOutput struct {
	Items      []*types.Invoice `json:"items"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// ScopeFilter applies the caller's visibility to a requested filter. Non-admins are
// pinned to their own records and any requested owner is discarded.
func ScopeFilter(p types.Principal, status, ownerID string, limit int) types.ScanFilter {
	f := types.ScanFilter{
		Status: strings.TrimSpace(status),
		Limit:  limit,
	}
	if p.IsAdmin() {
		f.OwnerID = strings.TrimSpace(ownerID)
	} else {
		f.UploaderUID = p.UID
	}
	return f
}

func List(ctx context.Context, deps QueryDeps, in ListInput) (ListOutput, error) {
	out := ListOutput{Items: []*types.Invoice{}}
	if deps.Ledger == nil {
		return out, fmt.Errorf("invoice_list: missing deps")
	}
	if strings.TrimSpace(in.Principal.UID) == "" {
		return out, fmt.Errorf("%w: principal required", ErrForbidden)
	}
	limit := in.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return out, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidArgument, MaxListLimit)
	}

	f := ScopeFilter(in.Principal, in.Status, in.OwnerID, limit)
	if in.Cursor != "" {
		c, err := DecodeCursor(in.Cursor)
		if err != nil {
			return out, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		f.After = c
	}

	rows, err := deps.Ledger.Scan(dbctx.Context{Ctx: ctx}, f)
	if err != nil {
		return out, fmt.Errorf("%w: scan: %w", ErrQuery, err)
	}
	out.Items = rows
	if len(rows) == limit {
		last := rows[len(rows)-1]
		out.NextCursor = EncodeCursor(types.Cursor{CreatedAt: last.CreatedAt, OwnerID: last.OwnerID, InvoiceID: last.InvoiceID})
	}
	return out, nil
}

func EncodeCursor(c types.Cursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeCursor(raw string) (*types.Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("malformed cursor")
	}
	var c types.Cursor
	if err := json.Unmarshal(b, &c); err != nil || c.CreatedAt.IsZero() {
		return nil, fmt.Errorf("malformed cursor")
	}
	return &c, nil
}

type GetInput struct {
	Principal types.Principal
	RecordID  string
}

type GetOutput struct {
	Invoice *types.Invoice        `json:"invoice"`
	Events  []*types.InvoiceEvent `json:"events"`
}

// Get loads a record and its event log concurrently.
func Get(ctx context.Context, deps QueryDeps, in GetInput) (GetOutput, error) {
	var out GetOutput
	if deps.Ledger == nil {
		return out, fmt.Errorf("invoice_get: missing deps")
	}
	ownerID, invoiceID, ok := types.SplitRecordID(in.RecordID)
	if !ok {
		return out, fmt.Errorf("%w: malformed record id %q", ErrInvalidArgument, in.RecordID)
	}

	var (
		inv    *types.Invoice
		events []*types.InvoiceEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inv, err = deps.Ledger.Get(dbctx.Context{Ctx: gctx}, ownerID, invoiceID)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = deps.Ledger.ListEvents(dbctx.Context{Ctx: gctx}, ownerID, invoiceID)
		return err
	})
	if err := g.Wait(); err != nil {
		return out, fmt.Errorf("%w: get %s: %w", ErrQuery, in.RecordID, err)
	}
	if inv == nil {
		return out, fmt.Errorf("%w: %s", ErrNotFound, in.RecordID)
	}
	if !in.Principal.CanAccess(inv.UploaderUID) {
		return out, fmt.Errorf("%w: %s", ErrForbidden, in.RecordID)
	}
	if events == nil {
		events = []*types.InvoiceEvent{}
	}
	out.Invoice, out.Events = inv, events
	return out, nil
}

// Authorize loads a record and checks the caller may act on it.
func Authorize(ctx context.Context, ledger Ledger, p types.Principal, recordID string) (*types.Invoice, error) {
	ownerID, invoiceID, ok := types.SplitRecordID(recordID)
	if !ok {
		return nil, fmt.Errorf("%w: malformed record id %q", ErrInvalidArgument, recordID)
	}
	inv, err := ledger.Get(dbctx.Context{Ctx: ctx}, ownerID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrQuery, recordID, err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, recordID)
	}
	if !p.CanAccess(inv.UploaderUID) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, recordID)
	}
	return inv, nil
}
