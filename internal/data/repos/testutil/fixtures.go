package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, uid, role string) *types.Profile {
	tb.Helper()
	now := time.Now().UTC()
	p := &types.Profile{UID: uid, Role: role, CreatedAt: now, UpdatedAt: now}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

// SeedInvoice writes a parsed record uploaded by uploaderUID, bypassing the pipeline.
func SeedInvoice(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID, invoiceID, uploaderUID string, at time.Time) *types.Invoice {
	tb.Helper()
	inv := &types.Invoice{
		OwnerID:       ownerID,
		InvoiceID:     invoiceID,
		Status:        types.StatusParsed,
		FilePath:      "gs://invoices-in/" + invoiceID + ".pdf",
		FileName:      invoiceID + ".pdf",
		Engine:        types.EngineDocAI,
		RawEntities:   datatypes.JSON(`{"entities":[]}`),
		OwnerSnapshot: datatypes.JSON(`{}`),
		UploaderUID:   uploaderUID,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	if err := tx.WithContext(ctx).Create(inv).Error; err != nil {
		tb.Fatalf("seed invoice: %v", err)
	}
	return inv
}
