package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/invoice-ingest-backend/internal/platform/gcp"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/redis"
	"github.com/yungbote/invoice-ingest-backend/internal/services"
)

type Clients struct {
	Bucket   gcp.BucketService
	Document gcp.InvoiceParser
	Verifier services.TokenVerifier

	// Nil when REDIS_ADDR is unset.
	Redis        *goredis.Client
	EventBus     redis.EventBus
	ProfileCache redis.ProfileCache
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := resolveBucketService(log, cfg)
	if err != nil {
		return Clients{}, err
	}
	out := Clients{Bucket: bucket}

	document, err := gcp.NewInvoiceParser(log, gcp.DocumentConfig{
		ProjectID:        cfg.ProjectID,
		Location:         cfg.DocumentAILocation,
		ProcessorID:      cfg.DocumentAIProcessorID,
		ProcessorVersion: cfg.DocumentAIProcessorVersion,
	})
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init document ai: %w", err)
	}
	out.Document = document

	verifier, err := newVerifier(cfg)
	if err != nil {
		out.Close()
		return Clients{}, fmt.Errorf("init token verifier: %w", err)
	}
	out.Verifier = verifier

	rcfg := redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.RedisChannel,
		CacheTTL: cfg.ProfileCacheTTL,
	}
	if rcfg.Enabled() {
		rdb, err := redis.NewClient(ctx, rcfg)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
		bus, err := redis.NewEventBus(log, rdb, rcfg.Channel)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		out.EventBus = bus
		out.ProfileCache = redis.NewProfileCache(rdb, rcfg.CacheTTL)
	} else {
		log.Info("Redis disabled; invoice events are not published and profiles are not cached")
	}
	return out, nil
}

func newVerifier(cfg Config) (services.TokenVerifier, error) {
	switch cfg.AuthMode {
	case AuthModeHMAC:
		return services.NewHMACVerifier(cfg.JWTSecretKey, cfg.JWTIssuer)
	case AuthModeFirebase:
		return services.NewFirebaseVerifier(&http.Client{Timeout: 10 * time.Second}, cfg.FirebaseProjectID)
	default:
		return nil, fmt.Errorf("unsupported AUTH_MODE %q", cfg.AuthMode)
	}
}

func (c Clients) Close() error {
	var errs []error
	if c.Document != nil {
		errs = append(errs, c.Document.Close())
	}
	if c.Bucket != nil {
		errs = append(errs, c.Bucket.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	return errors.Join(errs...)
}
