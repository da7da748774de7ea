package export

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/library"
	"github.com/louisbranch/battlegrid/internal/platform/config"
	"github.com/louisbranch/battlegrid/internal/storage/backend"
)

// seedStore saves one encounter and closes the store so Run can reopen it.
func seedStore(t *testing.T) (config.Store, string) {
	t.Helper()
	cfg := config.Store{Backend: config.BackendBolt, Path: filepath.Join(t.TempDir(), "bg.db")}
	store, err := backend.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	engine := combat.New(combat.Config{})
	if _, err := engine.Registry.Add(combat.EntitySpec{Name: "Ogre", Type: combat.EntityEnemy,
		Stats: combat.Stats{MaxHP: 59, ArmorClass: 11, Speed: 40}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	meta, err := library.New(store, nil, nil).Save(context.Background(), "Bridge", "", engine)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	return cfg, meta.ID
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("BATTLEGRID_CLIPBOARD", "true")
	t.Setenv("BATTLEGRID_EXPORT_ID", "env-id")

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-id", "flag-id", "-png", "map.png"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.EncounterID != "flag-id" || cfg.PNG != "map.png" || !cfg.Clipboard {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.Store.Backend != config.BackendBolt {
		t.Fatalf("store backend = %q, want bolt", cfg.Store.Backend)
	}
}

func TestRunListsSaves(t *testing.T) {
	store, encounterID := seedStore(t)
	var out bytes.Buffer
	if err := Run(context.Background(), Config{Store: store}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), encounterID) || !strings.Contains(out.String(), "Bridge") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunStatsAndClear(t *testing.T) {
	store, _ := seedStore(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := Run(ctx, Config{Stats: true, Store: store}, &out); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.HasPrefix(out.String(), "1 encounters\t") {
		t.Fatalf("stats output = %q", out.String())
	}

	out.Reset()
	if err := Run(ctx, Config{Clear: true, Store: store}, &out); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if out.String() != "deleted 1 encounters\n" {
		t.Fatalf("clear output = %q", out.String())
	}

	out.Reset()
	if err := Run(ctx, Config{Stats: true, Store: store}, &out); err != nil {
		t.Fatalf("stats after clear: %v", err)
	}
	if out.String() != "0 encounters\t0 bytes\n" {
		t.Fatalf("stats after clear = %q", out.String())
	}
}

func TestRunExportsToClipboardAndPNG(t *testing.T) {
	store, encounterID := seedStore(t)
	var copied string
	orig := writeClipboard
	t.Cleanup(func() { writeClipboard = orig })
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}

	png := filepath.Join(t.TempDir(), "map.png")
	var out bytes.Buffer
	cfg := Config{EncounterID: encounterID, Clipboard: true, PNG: png, Store: store}
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `"Ogre"`) {
		t.Fatalf("output = %q", out.String())
	}
	if copied != out.String() {
		t.Fatal("expected clipboard to hold the export")
	}
	info, err := os.Stat(png)
	if err != nil || info.Size() == 0 {
		t.Fatalf("png missing: %v", err)
	}
}

func TestRunImportsExport(t *testing.T) {
	store, encounterID := seedStore(t)
	var exported bytes.Buffer
	if err := Run(context.Background(), Config{EncounterID: encounterID, Store: store}, &exported); err != nil {
		t.Fatalf("export: %v", err)
	}
	path := filepath.Join(t.TempDir(), "bridge.json")
	if err := os.WriteFile(path, exported.Bytes(), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	if err := Run(context.Background(), Config{Import: path, Store: store}, &out); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.HasPrefix(out.String(), "imported Bridge as ") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	store, _ := seedStore(t)
	tests := []struct {
		name string
		cfg  Config
	}{
		{"import and id", Config{Import: "x.json", EncounterID: "x", Store: store}},
		{"clear with id", Config{Clear: true, EncounterID: "x", Store: store}},
		{"missing encounter", Config{EncounterID: "nope", Store: store}},
		{"missing import file", Config{Import: filepath.Join(t.TempDir(), "nope.json"), Store: store}},
		{"bad backend", Config{Store: config.Store{Backend: "redis", Path: "x.db"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := Run(context.Background(), tc.cfg, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
