package battlegrid

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/battlegrid/internal/platform/config"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("battlegrid", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("transport = %q, want stdio", cfg.Transport)
	}
	if cfg.HTTPAddr != "localhost:8081" {
		t.Fatalf("http addr = %q, want localhost:8081", cfg.HTTPAddr)
	}
	if !cfg.Persist {
		t.Fatal("expected persistence to default to true")
	}
	if cfg.Store.Backend != config.BackendBolt || cfg.Store.Path == "" {
		t.Fatalf("store = %+v", cfg.Store)
	}
	if len(cfg.AllowedHosts) != 0 {
		t.Fatalf("allowed hosts = %v, want none", cfg.AllowedHosts)
	}
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("BATTLEGRID_MCP_TRANSPORT", "http")
	t.Setenv("BATTLEGRID_MCP_ALLOWED_HOSTS", "env.example.com")
	t.Setenv("BATTLEGRID_STORE_BACKEND", "sqlite")
	t.Setenv("BATTLEGRID_SEED", "9")

	fs := flag.NewFlagSet("battlegrid", flag.ContinueOnError)
	args := []string{"-http-addr", "0.0.0.0:9000", "-allowed-hosts", "a.example.com, b.example.com", "-locale", "pt-BR"}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Transport != "http" || cfg.HTTPAddr != "0.0.0.0:9000" || cfg.Seed != 9 || cfg.Locale != "pt-BR" {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.Store.Backend != config.BackendSQLite {
		t.Fatalf("store backend = %q, want sqlite", cfg.Store.Backend)
	}
	if strings.Join(cfg.AllowedHosts, "|") != "a.example.com|b.example.com" {
		t.Fatalf("allowed hosts = %v", cfg.AllowedHosts)
	}
}

func TestNewSession(t *testing.T) {
	var logs bytes.Buffer
	cfg := Config{
		Seed:    5,
		Locale:  "en-US",
		Persist: true,
		Store:   config.Store{Backend: config.BackendBolt, Path: filepath.Join(t.TempDir(), "store", "bg.db")},
	}
	session, closeStore, err := NewSession(cfg, &logs)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer closeStore()

	if !session.HasLibrary() || !session.HasMap() {
		t.Fatal("expected library and map")
	}
	if !strings.Contains(logs.String(), "seed 5") {
		t.Fatalf("logs = %q", logs.String())
	}
}

func TestNewSessionWithoutPersistence(t *testing.T) {
	session, closeStore, err := NewSession(Config{Seed: 1}, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := closeStore(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if session.HasLibrary() {
		t.Fatal("expected no library")
	}
}

func TestNewSessionRejectsBadStore(t *testing.T) {
	cfg := Config{Seed: 1, Persist: true, Store: config.Store{Backend: "redis", Path: "x.db"}}
	if _, _, err := NewSession(cfg, nil); err == nil {
		t.Fatal("expected store error")
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	err := Run(context.Background(), Config{Seed: 1, Transport: "carrier-pigeon"}, nil)
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("err = %v, want unsupported transport", err)
	}
}

func TestSplitHosts(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{" , ", 0},
		{"a.example.com", 1},
		{"a.example.com,b.example.com ,", 2},
	}
	for _, tc := range tests {
		if got := splitHosts(tc.in); len(got) != tc.want {
			t.Fatalf("splitHosts(%q) = %v, want %d hosts", tc.in, got, tc.want)
		}
	}
}
