package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != AppEnvDev {
		t.Fatalf("expected App.Env to default to development, got %q", cfg.App.Env)
	}
	if cfg.Store.Driver != "file" {
		t.Fatalf("expected file store driver, got %q", cfg.Store.Driver)
	}
	if cfg.Barcode.Timeout != 5*time.Second {
		t.Fatalf("expected 5s barcode timeout, got %v", cfg.Barcode.Timeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvStoreDriver, "sqlite")
	t.Setenv(EnvStorePath, "/var/lib/pantry/state.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsProd() {
		t.Fatalf("expected production env, got %q", cfg.App.Env)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "/var/lib/pantry/state.db" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv(EnvStoreDriver, "dynamo")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown store driver to return an error")
	}
}
