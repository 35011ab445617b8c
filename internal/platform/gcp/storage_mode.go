package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type StorageMode string

const (
	StorageModeGCS      StorageMode = "gcs"
	StorageModeEmulator StorageMode = "gcs_emulator"
)

func (m StorageMode) Supported() bool {
	return m == StorageModeGCS || m == StorageModeEmulator
}

type StorageConfig struct {
	Mode          StorageMode
	EmulatorHost  string
	DefaultBucket string
	// ModeInferred is set when no mode was given and the emulator host selected it.
	ModeInferred bool
}

func (c StorageConfig) Emulated() bool { return c.Mode == StorageModeEmulator }

func (c StorageConfig) ModeSource() string {
	if c.ModeInferred {
		return "inferred_from_emulator_host"
	}
	return "explicit_or_default"
}

type StorageConfigErrorCode string

const (
	StorageConfigInvalidMode         StorageConfigErrorCode = "invalid_mode"
	StorageConfigMissingEmulatorHost StorageConfigErrorCode = "missing_emulator_host"
	StorageConfigInvalidEmulatorHost StorageConfigErrorCode = "invalid_emulator_host"
)

type StorageConfigError struct {
	Code         StorageConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case StorageConfigInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", e.Mode, StorageModeGCS, StorageModeEmulator)
	case StorageConfigMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", StorageModeEmulator)
	case StorageConfigInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.EmulatorHost)
	default:
		return "invalid object storage config"
	}
}

func (e *StorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveStorageConfig turns raw settings into a validated config. An empty mode means
// gcs, unless an emulator host is present.
func ResolveStorageConfig(rawMode, emulatorHost, defaultBucket string) (StorageConfig, error) {
	cfg := StorageConfig{
		EmulatorHost:  strings.TrimRight(strings.TrimSpace(emulatorHost), "/"),
		DefaultBucket: strings.TrimSpace(defaultBucket),
	}
	mode := StorageMode(strings.ToLower(strings.TrimSpace(rawMode)))
	switch {
	case mode == "" && cfg.EmulatorHost != "":
		cfg.Mode = StorageModeEmulator
		cfg.ModeInferred = true
	case mode == "":
		cfg.Mode = StorageModeGCS
	default:
		cfg.Mode = mode
	}
	if err := cfg.Validate(); err != nil {
		if se, ok := err.(*StorageConfigError); ok && se.Code == StorageConfigInvalidMode {
			se.Mode = strings.TrimSpace(rawMode)
		}
		return cfg, err
	}
	return cfg, nil
}

func (c StorageConfig) Validate() error {
	if !c.Mode.Supported() {
		return &StorageConfigError{Code: StorageConfigInvalidMode, Mode: string(c.Mode)}
	}
	if !c.Emulated() {
		return nil
	}
	if c.EmulatorHost == "" {
		return &StorageConfigError{Code: StorageConfigMissingEmulatorHost, Mode: string(c.Mode)}
	}
	u, err := url.Parse(c.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &StorageConfigError{
			Code:         StorageConfigInvalidEmulatorHost,
			Mode:         string(c.Mode),
			EmulatorHost: c.EmulatorHost,
			Cause:        err,
		}
	}
	return nil
}
