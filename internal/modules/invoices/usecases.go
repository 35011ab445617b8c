package invoices

import (
	"context"
	"time"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/modules/invoices/steps"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

type UsecasesDeps struct {
	Log *logger.Logger

	Ledger    steps.Ledger
	Blobs     steps.Blobs
	Extractor steps.Extractor
	Clock     steps.Clock

	// Optional: uploader enrichment and event fan-out.
	Profiles steps.Profiles
	Notifier steps.Notifier

	UploadBucket string
	SignedURLTTL time.Duration
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Clock == nil {
		deps.Clock = steps.SystemClock{}
	}
	return Usecases{deps: deps}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

type (
	Uploader        = steps.Uploader
	IngestInput     = steps.IngestInput
	IngestOutput    = steps.IngestOutput
	ReprocessInput  = steps.ReprocessInput
	ListInput       = steps.ListInput
	ListOutput      = steps.ListOutput
	GetInput        = steps.GetInput
	GetOutput       = steps.GetOutput
	StatsInput      = steps.StatsInput
	StatsOutput     = steps.StatsOutput
	SetStatusOutput = steps.SetStatusOutput
	ViewURLInput    = steps.ViewURLInput
	UploadURLInput  = steps.UploadURLInput
	SignedURLOutput = steps.SignedURLOutput
)

type SetStatusInput struct {
	Principal types.Principal
	RecordID  string
	Status    string
}

func (u Usecases) ingestDeps() steps.IngestDeps {
	return steps.IngestDeps{
		Log:       u.deps.Log,
		Blobs:     u.deps.Blobs,
		Extractor: u.deps.Extractor,
		Ledger:    u.deps.Ledger,
		Clock:     u.deps.Clock,
		Profiles:  u.deps.Profiles,
		Notifier:  u.deps.Notifier,
	}
}

func (u Usecases) queryDeps() steps.QueryDeps {
	return steps.QueryDeps{Log: u.deps.Log, Ledger: u.deps.Ledger}
}

func (u Usecases) urlDeps() steps.URLDeps {
	return steps.URLDeps{
		Ledger: u.deps.Ledger,
		Blobs:  u.deps.Blobs,
		Clock:  u.deps.Clock,
		Bucket: u.deps.UploadBucket,
		TTL:    u.deps.SignedURLTTL,
	}
}

func (u Usecases) Ingest(ctx context.Context, in IngestInput) (IngestOutput, error) {
	return steps.Ingest(ctx, u.ingestDeps(), in)
}

func (u Usecases) Reprocess(ctx context.Context, in ReprocessInput) (IngestOutput, error) {
	return steps.Reprocess(ctx, u.ingestDeps(), in)
}

func (u Usecases) List(ctx context.Context, in ListInput) (ListOutput, error) {
	return steps.List(ctx, u.queryDeps(), in)
}

func (u Usecases) Get(ctx context.Context, in GetInput) (GetOutput, error) {
	return steps.Get(ctx, u.queryDeps(), in)
}

func (u Usecases) Stats(ctx context.Context, in StatsInput) (StatsOutput, error) {
	return steps.Stats(ctx, u.queryDeps(), in)
}

// SetStatus checks the caller may act on the record before changing its status.
func (u Usecases) SetStatus(ctx context.Context, in SetStatusInput) (SetStatusOutput, error) {
	if _, err := steps.Authorize(ctx, u.deps.Ledger, in.Principal, in.RecordID); err != nil {
		return SetStatusOutput{RecordID: in.RecordID}, err
	}
	return steps.SetStatus(ctx, steps.StatusDeps{
		Log:      u.deps.Log,
		Ledger:   u.deps.Ledger,
		Clock:    u.deps.Clock,
		Notifier: u.deps.Notifier,
	}, steps.SetStatusInput{
		RecordID: in.RecordID,
		Status:   in.Status,
		ByUID:    in.Principal.UID,
	})
}

func (u Usecases) ViewURL(ctx context.Context, in ViewURLInput) (SignedURLOutput, error) {
	return steps.ViewURL(ctx, u.urlDeps(), in)
}

func (u Usecases) UploadURL(ctx context.Context, in UploadURLInput) (SignedURLOutput, error) {
	return steps.UploadURL(ctx, u.urlDeps(), in)
}
