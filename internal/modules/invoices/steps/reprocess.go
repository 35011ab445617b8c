package steps

import (
	"context"
	"fmt"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
)

type ReprocessInput struct {
	Principal types.Principal
	RecordID  string
}

// Reprocess reruns ingestion against a stored record's source object. The rerun goes
// through deduplication like any other, so it only appends a SKIPPED_DUPLICATE event
// unless extraction now yields a different identity.
func Reprocess(ctx context.Context, deps IngestDeps, in ReprocessInput) (IngestOutput, error) {
	if deps.Ledger == nil {
		return IngestOutput{}, fmt.Errorf("invoice_reprocess: missing deps")
	}
	inv, err := Authorize(ctx, deps.Ledger, in.Principal, in.RecordID)
	if err != nil {
		return IngestOutput{}, err
	}
	src, err := types.SourceFromURI(inv.FilePath)
	if err != nil {
		return IngestOutput{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if inv.FileName != "" {
		src.Name = inv.FileName
	}
	src.Generation = inv.Generation

	return Ingest(ctx, deps, IngestInput{
		Source:   src,
		Uploader: &Uploader{UID: in.Principal.UID, Email: in.Principal.Email},
	})
}
