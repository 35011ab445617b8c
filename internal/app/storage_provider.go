package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/invoice-ingest-backend/internal/platform/gcp"
	"github.com/yungbote/invoice-ingest-backend/internal/platform/logger"
)

var newBucketService = gcp.NewBucketService

type StorageBootstrapErrorCode string

const (
	StorageBootstrapInvalidMode         StorageBootstrapErrorCode = "invalid_mode"
	StorageBootstrapMissingEmulatorHost StorageBootstrapErrorCode = "missing_emulator_host"
	StorageBootstrapInvalidEmulatorHost StorageBootstrapErrorCode = "invalid_emulator_host"
	StorageBootstrapConnectFailed       StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code         StorageBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func resolveBucketService(log *logger.Logger, cfg Config) (gcp.BucketService, error) {
	storageCfg, err := gcp.ResolveStorageConfig(cfg.ObjectStorageMode, cfg.StorageEmulatorHost, cfg.Bucket)
	if err != nil {
		classified := classifyStorageBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
	)

	bucket, err := newBucketService(log, storageCfg)
	if err != nil {
		classified := classifyStorageBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func classifyStorageBootstrapError(storageCfg gcp.StorageConfig, err error) error {
	out := &StorageBootstrapError{
		Code:         StorageBootstrapConnectFailed,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
	var cfgErr *gcp.StorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.StorageConfigInvalidMode:
			out.Code = StorageBootstrapInvalidMode
		case gcp.StorageConfigMissingEmulatorHost:
			out.Code = StorageBootstrapMissingEmulatorHost
		case gcp.StorageConfigInvalidEmulatorHost:
			out.Code = StorageBootstrapInvalidEmulatorHost
		}
	}
	return out
}

func storageBootstrapErrorCode(err error) StorageBootstrapErrorCode {
	var bootstrapErr *StorageBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageBootstrapConnectFailed
}
