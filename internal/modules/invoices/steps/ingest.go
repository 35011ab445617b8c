package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/ctxutil"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/dbctx"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/invoice-ingest-backend/internal/modules/invoices")

type IngestDeps struct {
	Log       *logger.Logger
	Blobs     Blobs
	Extractor Extractor
	Ledger    Ledger
	Clock     Clock

	// Optional.
	Profiles Profiles
	Notifier Notifier
}

// Uploader identifies who triggered a run. Nil for storage push events.
type Uploader struct {
	UID   string
	Email string
}

type IngestInput struct {
	Source   types.Source
	Uploader *Uploader
}

type IngestOutput struct {
	OK       bool   `json:"ok"`
	RecordID string `json:"doc_id"`
	Skipped  bool   `json:"skipped"`
}

// Ingest runs one object through download, extraction, normalization and deduplication.
// Nothing is written when download or extraction fails.
func Ingest(ctx context.Context, deps IngestDeps, in IngestInput) (out IngestOutput, err error) {
	if deps.Log == nil || deps.Blobs == nil || deps.Extractor == nil || deps.Ledger == nil || deps.Clock == nil {
		return out, fmt.Errorf("invoice_ingest: missing deps")
	}
	src := in.Source
	if strings.TrimSpace(src.Bucket) == "" || strings.TrimSpace(src.Name) == "" {
		return out, fmt.Errorf("%w: bucket and name are required", ErrInvalidArgument)
	}

	ctx, span := tracer.Start(ctx, "invoices.ingest")
	span.SetAttributes(
		attribute.String("gcs.bucket", src.Bucket),
		attribute.String("gcs.object", src.Name),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("invoice.record_id", out.RecordID), attribute.Bool("invoice.skipped", out.Skipped))
		}
		span.End()
	}()

	log := deps.Log.With(append(ctxutil.LogFields(ctx), "bucket", src.Bucket, "object", src.Name)...)

	localPath, err := deps.Blobs.Download(ctx, src.Bucket, src.Name)
	if err != nil {
		log.Warn("Invoice download failed", "error", err)
		return out, fmt.Errorf("%w: %s: %w", ErrFetch, src.URI(), err)
	}
	defer func() {
		if rmErr := os.Remove(localPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Debug("Temp file cleanup failed", "path", localPath, "error", rmErr)
		}
	}()
	span.AddEvent("downloaded")

	extraction, err := deps.Extractor.Extract(ctx, localPath)
	if err != nil {
		log.Warn("Invoice extraction failed", "error", err)
		return out, fmt.Errorf("%w: %s: %w", ErrExtraction, src.URI(), err)
	}
	span.AddEvent("extracted", trace.WithAttributes(attribute.Int("invoice.entities", len(extraction.Entities))))

	snapshot := ownerSnapshot(ctx, deps, log, in.Uploader)

	fields := Normalize(extraction.Entities)
	ownerID, invoiceID := IdentityOf(fields, src.Name)
	out.OK = true
	out.RecordID = types.RecordID(ownerID, invoiceID)
	log = log.With("owner_id", ownerID, "invoice_id", invoiceID)

	dbc := dbctx.Context{Ctx: ctx}
	exists, err := deps.Ledger.Exists(dbc, ownerID, invoiceID)
	if err != nil {
		return IngestOutput{}, fmt.Errorf("%w: exists %s: %w", ErrQuery, out.RecordID, err)
	}

	if Decide(exists) == DecisionSkipWithEvent {
		return skipDuplicate(ctx, deps, log, out, ownerID, invoiceID, src)
	}

	now := deps.Clock.Now().UTC()
	inv := &types.Invoice{
		OwnerID:         ownerID,
		InvoiceID:       invoiceID,
		FilePath:        deps.Blobs.URI(src.Bucket, src.Name),
		FileName:        src.Name,
		Generation:      src.Generation,
		Engine:          types.EngineDocAI,
		SchemaVersion:   extraction.SchemaVersion,
		Currency:        fields.Currency,
		Total:           fields.Total,
		TotalTax:        fields.TotalTax,
		NetAmount:       fields.NetAmount,
		IssueDate:       fields.IssueDate,
		DueDate:         fields.DueDate,
		SupplierName:    fields.SupplierName,
		SupplierAddress: fields.SupplierAddress,
		OwnerSnapshot:   snapshot,
		Status:          types.StatusParsed,
		RawEntities:     rawEntities(extraction.Entities),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.Uploader != nil {
		inv.UploaderUID = in.Uploader.UID
		inv.UploaderEmail = in.Uploader.Email
	}

	ev := &types.InvoiceEvent{
		OwnerID:   ownerID,
		InvoiceID: invoiceID,
		Action:    types.ActionExtracted,
		Note:      src.Note(),
		At:        deps.Clock.Now().UTC(),
	}
	created, err := deps.Ledger.Create(dbc, inv, ev)
	if err != nil {
		return IngestOutput{}, fmt.Errorf("%w: create %s: %w", ErrQuery, out.RecordID, err)
	}
	if !created {
		// A concurrent run stored the same identity between Exists and Create.
		log.Info("Invoice created concurrently, treating as duplicate")
		return skipDuplicate(ctx, deps, log, out, ownerID, invoiceID, src)
	}
	notify(ctx, deps.Notifier, log, ev)

	log.Info("Invoice ingested", "entities", len(extraction.Entities))
	return out, nil
}

func skipDuplicate(ctx context.Context, deps IngestDeps, log *logger.Logger, out IngestOutput, ownerID, invoiceID string, src types.Source) (IngestOutput, error) {
	ev := &types.InvoiceEvent{
		OwnerID:   ownerID,
		InvoiceID: invoiceID,
		Action:    types.ActionSkippedDuplicate,
		Note:      src.Note(),
		At:        deps.Clock.Now().UTC(),
	}
	if err := deps.Ledger.AppendEvent(dbctx.Context{Ctx: ctx}, ev); err != nil {
		return IngestOutput{}, fmt.Errorf("%w: append event %s: %w", ErrQuery, out.RecordID, err)
	}
	notify(ctx, deps.Notifier, log, ev)

	log.Info("Invoice already recorded, skipped", "note", ev.Note)
	out.Skipped = true
	return out, nil
}

// ownerSnapshot is best effort: any lookup failure yields an empty snapshot.
func ownerSnapshot(ctx context.Context, deps IngestDeps, log *logger.Logger, up *Uploader) datatypes.JSON {
	empty := datatypes.JSON("{}")
	if deps.Profiles == nil || up == nil || strings.TrimSpace(up.UID) == "" {
		return empty
	}
	p, err := deps.Profiles.Lookup(ctx, up.UID)
	if err != nil {
		log.Warn("Uploader profile lookup failed, continuing without snapshot", "error", fmt.Errorf("%w: %w", ErrIdentityLookup, err))
		return empty
	}
	if p == nil {
		return empty
	}
	return p.SupplierSnapshot()
}

func rawEntities(obs []types.FieldObservation) datatypes.JSON {
	if obs == nil {
		obs = []types.FieldObservation{}
	}
	b, err := json.Marshal(map[string]any{"entities": obs})
	if err != nil {
		return datatypes.JSON(`{"entities":[]}`)
	}
	return datatypes.JSON(b)
}

func notify(ctx context.Context, n Notifier, log *logger.Logger, ev *types.InvoiceEvent) {
	if n == nil || ev == nil {
		return
	}
	if err := n.Publish(ctx, ev); err != nil {
		log.Warn("Invoice event publish failed", "action", ev.Action, "error", err)
	}
}
