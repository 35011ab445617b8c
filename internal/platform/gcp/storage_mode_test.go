package gcp

import (
	"errors"
	"testing"
)

func TestResolveStorageConfigDefaultGCS(t *testing.T) {
	cfg, err := ResolveStorageConfig("", "", "invoices-bucket")
	if err != nil {
		t.Fatalf("ResolveStorageConfig: %v", err)
	}
	if cfg.Mode != StorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", StorageModeGCS, cfg.Mode)
	}
	if cfg.ModeInferred {
		t.Fatalf("mode inferred: want=false got=true")
	}
	if cfg.DefaultBucket != "invoices-bucket" {
		t.Fatalf("bucket: want=%q got=%q", "invoices-bucket", cfg.DefaultBucket)
	}
}

func TestResolveStorageConfigExplicitGCSIgnoresEmulatorHost(t *testing.T) {
	cfg, err := ResolveStorageConfig("GCS", "http://fake-gcs:4443", "")
	if err != nil {
		t.Fatalf("ResolveStorageConfig: %v", err)
	}
	if cfg.Mode != StorageModeGCS || cfg.Emulated() {
		t.Fatalf("mode: want=%q got=%q", StorageModeGCS, cfg.Mode)
	}
}

func TestResolveStorageConfigInferredEmulator(t *testing.T) {
	cfg, err := ResolveStorageConfig("", "http://fake-gcs:4443/", "")
	if err != nil {
		t.Fatalf("ResolveStorageConfig: %v", err)
	}
	if !cfg.Emulated() {
		t.Fatalf("mode: want=%q got=%q", StorageModeEmulator, cfg.Mode)
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: want trailing slash trimmed, got=%q", cfg.EmulatorHost)
	}
	if cfg.ModeSource() != "inferred_from_emulator_host" {
		t.Fatalf("mode source: got=%q", cfg.ModeSource())
	}
}

func TestResolveStorageConfigErrors(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		emulator string
		code     StorageConfigErrorCode
	}{
		{"invalid mode", "local", "", StorageConfigInvalidMode},
		{"missing emulator host", "gcs_emulator", "", StorageConfigMissingEmulatorHost},
		{"relative emulator host", "gcs_emulator", "fake-gcs:4443", StorageConfigInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveStorageConfig(tc.mode, tc.emulator, "")
			var cfgErr *StorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected StorageConfigError, got=%T (%v)", err, err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, cfgErr.Code)
			}
		})
	}
}

func TestStorageConfigErrorKeepsRawMode(t *testing.T) {
	_, err := ResolveStorageConfig(" Local ", "", "")
	var cfgErr *StorageConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected StorageConfigError")
	}
	if cfgErr.Mode != "Local" {
		t.Fatalf("mode: want=%q got=%q", "Local", cfgErr.Mode)
	}
}
