package steps

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	types "github.com/yungbote/invoice-ingest-backend/internal/domain"
)

const (
	DefaultSignedURLTTL = 10 * time.Minute
	defaultUploadName   = "invoice.pdf"
	uploadContentType   = "application/pdf"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type URLDeps struct {
	Ledger Ledger
	Blobs  Blobs
	Clock  Clock
	// Bucket receives browser uploads.
	Bucket string
	TTL    time.Duration
}

func (d URLDeps) ttl() time.Duration {
	if d.TTL <= 0 {
		return DefaultSignedURLTTL
	}
	return d.TTL
}

type ViewURLInput struct {
	Principal types.Principal
	RecordID  string
}

type SignedURLOutput struct {
	URL       string    `json:"url"`
	Bucket    string    `json:"bucket,omitempty"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ViewURL signs a short-lived read URL for the record's stored PDF. Owner or admin only.
func ViewURL(ctx context.Context, deps URLDeps, in ViewURLInput) (SignedURLOutput, error) {
	var out SignedURLOutput
	if deps.Ledger == nil || deps.Blobs == nil || deps.Clock == nil {
		return out, fmt.Errorf("invoice_view_url: missing deps")
	}
	inv, err := Authorize(ctx, deps.Ledger, in.Principal, in.RecordID)
	if err != nil {
		return out, err
	}
	src, err := types.SourceFromURI(inv.FilePath)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	expires := deps.Clock.Now().UTC().Add(deps.ttl())
	url, err := deps.Blobs.SignedReadURL(src.Bucket, src.Name, expires)
	if err != nil {
		return out, fmt.Errorf("sign read url: %w", err)
	}
	return SignedURLOutput{URL: url, ExpiresAt: expires}, nil
}

type UploadURLInput struct {
	Principal types.Principal
	Filename  string
}

// UploadURL signs a PUT URL for a backend-chosen object path under the caller's upload prefix.
func UploadURL(ctx context.Context, deps URLDeps, in UploadURLInput) (SignedURLOutput, error) {
	var out SignedURLOutput
	if deps.Blobs == nil || deps.Clock == nil {
		return out, fmt.Errorf("invoice_upload_url: missing deps")
	}
	if strings.TrimSpace(in.Principal.UID) == "" {
		return out, fmt.Errorf("%w: principal required", ErrForbidden)
	}
	if strings.TrimSpace(deps.Bucket) == "" {
		return out, fmt.Errorf("invoice_upload_url: upload bucket not configured")
	}

	now := deps.Clock.Now().UTC()
	name := UploadObjectName(in.Principal.UID, in.Filename, now)
	expires := now.Add(deps.ttl())
	url, err := deps.Blobs.SignedUploadURL(deps.Bucket, name, uploadContentType, expires)
	if err != nil {
		return out, fmt.Errorf("sign upload url: %w", err)
	}
	return SignedURLOutput{URL: url, Bucket: deps.Bucket, Name: name, ExpiresAt: expires}, nil
}

// UploadObjectName builds uploads/<uid>/<YYYYMMDD-HHMMSS>-<safe filename>.
func UploadObjectName(uid, filename string, at time.Time) string {
	safe := SanitizeFilename(filename)
	return path.Join("uploads", uid, at.UTC().Format("20060102-150405")+"-"+safe)
}

func SanitizeFilename(filename string) string {
	if filename == "" {
		filename = defaultUploadName
	}
	return unsafeFilenameChars.ReplaceAllString(filename, "_")
}
