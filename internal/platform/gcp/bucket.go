package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

// BucketService is the blob store the ingestion pipeline reads invoices from.
type BucketService interface {
	// Download copies the object to a local temp file and returns its path. The caller removes it.
	Download(ctx context.Context, bucket, name string) (string, error)
	URI(bucket, name string) string
	SignedReadURL(bucket, name string, expires time.Time) (string, error)
	SignedUploadURL(bucket, name, contentType string, expires time.Time) (string, error)
	DefaultBucket() string
	Close() error
}

type bucketService struct {
	log           *logger.Logger
	client        *storage.Client
	cfg           StorageConfig
	downloadLimit time.Duration
}

func NewBucketService(log *logger.Logger, cfg StorageConfig) (BucketService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketService")

	client, err := newStorageClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"default_bucket", cfg.DefaultBucket,
	)
	return &bucketService{
		log:           serviceLog,
		client:        client,
		cfg:           cfg,
		downloadLimit: 2 * time.Minute,
	}, nil
}

func newStorageClient(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case StorageModeGCS:
		opts := append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case StorageModeEmulator:
		// the storage client reads the emulator endpoint from the environment
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &StorageConfigError{Code: StorageConfigInvalidMode, Mode: string(cfg.Mode)}
	}
}

func (bs *bucketService) DefaultBucket() string { return bs.cfg.DefaultBucket }

func (bs *bucketService) URI(bucket, name string) string {
	return "gs://" + bucket + "/" + name
}

func (bs *bucketService) Download(ctx context.Context, bucket, name string) (string, error) {
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(name) == "" {
		return "", errors.New("bucket and object name required")
	}
	ctx, cancel := context.WithTimeout(ctx, bs.downloadLimit)
	defer cancel()

	r, err := bs.client.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("open gs://%s/%s: %w", bucket, name, err)
	}
	defer r.Close()

	f, err := os.CreateTemp("", "invoice-*"+extOf(name))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("copy gs://%s/%s: %w", bucket, name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	bs.log.Debug("Object downloaded", "bucket", bucket, "name", name, "bytes", r.Attrs.Size)
	return f.Name(), nil
}

// In emulator mode nothing can be signed, so the emulator's JSON API endpoints are returned as-is.
func (bs *bucketService) SignedReadURL(bucket, name string, expires time.Time) (string, error) {
	if bs.cfg.Emulated() {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", bs.cfg.EmulatorHost, url.PathEscape(bucket), url.PathEscape(name)), nil
	}
	return bs.client.Bucket(bucket).SignedURL(name, &storage.SignedURLOptions{
		Scheme:          storage.SigningSchemeV4,
		Method:          "GET",
		Expires:         expires,
		QueryParameters: url.Values{"response-content-disposition": []string{"inline"}},
	})
}

func (bs *bucketService) SignedUploadURL(bucket, name, contentType string, expires time.Time) (string, error) {
	if bs.cfg.Emulated() {
		return fmt.Sprintf("%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s", bs.cfg.EmulatorHost, url.PathEscape(bucket), url.QueryEscape(name)), nil
	}
	return bs.client.Bucket(bucket).SignedURL(name, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      "PUT",
		Expires:     expires,
		ContentType: contentType,
	})
}

func (bs *bucketService) Close() error {
	if bs == nil || bs.client == nil {
		return nil
	}
	return bs.client.Close()
}

func extOf(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i < strings.LastIndex(name, "/") {
		return ""
	}
	ext := name[i:]
	if len(ext) > 8 || strings.ContainsAny(ext, `\/*?`) {
		return ""
	}
	return ext
}
