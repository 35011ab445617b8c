package steps

import (
	"context"
	"time"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
)

// Extractor turns a local PDF into typed field observations.
type Extractor interface {
	Extract(ctx context.Context, localPath string) (types.Extraction, error)
}

// Blobs is the object store the pipeline reads from and signs URLs against.
// Download returns a local temp path owned by the caller.
type Blobs interface {
	Download(ctx context.Context, bucket, name string) (string, error)
	URI(bucket, name string) string
	SignedReadURL(bucket, name string, expires time.Time) (string, error)
	SignedUploadURL(bucket, name, contentType string, expires time.Time) (string, error)
}

type Ledger interface {
	Exists(dbc dbctx.Context, ownerID, invoiceID string) (bool, error)
	// Create stores inv together with its first event, or nothing at all. It reports false,
	// writing nothing, when the identity is already stored.
	Create(dbc dbctx.Context, inv *types.Invoice, first *types.InvoiceEvent) (bool, error)
	Get(dbc dbctx.Context, ownerID, invoiceID string) (*types.Invoice, error)
	Scan(dbc dbctx.Context, f types.ScanFilter) ([]*types.Invoice, error)
	Count(dbc dbctx.Context, f types.ScanFilter) (int64, error)
	SetStatus(dbc dbctx.Context, ownerID, invoiceID, status string, ev *types.InvoiceEvent) (bool, error)
	AppendEvent(dbc dbctx.Context, ev *types.InvoiceEvent) error
	ListEvents(dbc dbctx.Context, ownerID, invoiceID string) ([]*types.InvoiceEvent, error)
}

// Profiles looks up the uploader's profile. A nil profile with a nil error means none exists.
type Profiles interface {
	Lookup(ctx context.Context, uid string) (*types.Profile, error)
}

// Notifier fans appended events out to subscribers. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, ev *types.InvoiceEvent) error
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
