package steps

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"":                     "invoice.pdf",
		"factura F001-99.pdf":  "factura_F001-99.pdf",
		"../../etc/passwd":     ".._.._etc_passwd",
		"ñandú  (copia).PDF":   "_and_copia_.PDF",
		"already_safe-1.0.pdf": "already_safe-1.0.pdf",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Fatalf("SanitizeFilename(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestUploadObjectName(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 5, 0, time.UTC)
	got := UploadObjectName("u1", "a b.pdf", at)
	if got != "uploads/u1/20250314-093005-a_b.pdf" {
		t.Fatalf("object name: got=%q", got)
	}
}

func TestUploadURL(t *testing.T) {
	deps := URLDeps{Blobs: newMemBlobs(t), Clock: newTickClock(), Bucket: "inbox"}
	out, err := UploadURL(context.Background(), deps, UploadURLInput{Principal: types.Principal{UID: "u1"}, Filename: "f.pdf"})
	if err != nil {
		t.Fatalf("UploadURL: %v", err)
	}
	if out.Bucket != "inbox" || !strings.HasPrefix(out.Name, "uploads/u1/") || !strings.HasSuffix(out.Name, "-f.pdf") {
		t.Fatalf("output: got=%+v", out)
	}
	if !strings.Contains(out.URL, "method=PUT") || !strings.Contains(out.URL, "ct=application/pdf") {
		t.Fatalf("url: got=%q", out.URL)
	}
	if out.ExpiresAt.Sub(time.Date(2025, 3, 14, 9, 30, 1, 0, time.UTC)) != DefaultSignedURLTTL {
		t.Fatalf("expiry: got=%v", out.ExpiresAt)
	}
}

func TestViewURL(t *testing.T) {
	l := newMemLedger()
	l.put(&types.Invoice{OwnerID: "X", InvoiceID: "1", FilePath: "gs://inbox/uploads/u1/a.pdf", UploaderUID: "u1"})
	l.put(&types.Invoice{OwnerID: "X", InvoiceID: "2", FilePath: "local/a.pdf", UploaderUID: "u1"})
	deps := URLDeps{Ledger: l, Blobs: newMemBlobs(t), Clock: newTickClock(), TTL: time.Minute}
	ctx := context.Background()

	out, err := ViewURL(ctx, deps, ViewURLInput{Principal: types.Principal{UID: "u1"}, RecordID: "X/1"})
	if err != nil {
		t.Fatalf("ViewURL: %v", err)
	}
	if !strings.HasPrefix(out.URL, "https://signed.test/inbox/uploads/u1/a.pdf?method=GET") {
		t.Fatalf("url: got=%q", out.URL)
	}
	if _, err := ViewURL(ctx, deps, ViewURLInput{Principal: types.Principal{UID: "u2"}, RecordID: "X/1"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign: want ErrForbidden got=%v", err)
	}
	if _, err := ViewURL(ctx, deps, ViewURLInput{Principal: types.Principal{UID: "a", Role: types.RoleAdmin}, RecordID: "X/1"}); err != nil {
		t.Fatalf("admin ViewURL: %v", err)
	}
	if _, err := ViewURL(ctx, deps, ViewURLInput{Principal: types.Principal{UID: "u1"}, RecordID: "X/2"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad path: want ErrInvalidArgument got=%v", err)
	}
	if _, err := ViewURL(ctx, deps, ViewURLInput{Principal: types.Principal{UID: "u1"}, RecordID: "X/3"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: want ErrNotFound got=%v", err)
	}
}
