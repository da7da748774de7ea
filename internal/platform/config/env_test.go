package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Seed int64 `env:"BATTLEGRID_TEST_SEED" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Seed != 123 {
		t.Fatalf("seed = %d, want 123", cfg.Seed)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("BATTLEGRID_TEST_SEED", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestStoreDefaults(t *testing.T) {
	var cfg Store
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Backend != BackendBolt || cfg.Path != "data/battlegrid.db" {
		t.Fatalf("store = %+v", cfg)
	}
}

func TestStoreValidate(t *testing.T) {
	tests := []struct {
		name    string
		store   Store
		backend string
		wantErr bool
	}{
		{name: "sqlite mixed case", store: Store{Backend: " SQLite ", Path: "x.db"}, backend: BackendSQLite},
		{name: "unknown backend", store: Store{Backend: "redis", Path: "x.db"}, wantErr: true},
		{name: "missing path", store: Store{Backend: BackendBolt, Path: " "}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.store.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if tt.store.Backend != tt.backend {
				t.Fatalf("backend = %q, want %q", tt.store.Backend, tt.backend)
			}
		})
	}
}
