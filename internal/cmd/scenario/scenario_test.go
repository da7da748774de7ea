package scenario

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("locale = %q, want en-US", cfg.Locale)
	}
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("BATTLEGRID_SCENARIO_FILE", "env.lua")
	t.Setenv("BATTLEGRID_SCENARIO_ASSERT", "false")
	t.Setenv("BATTLEGRID_SEED", "42")

	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-scenario", "flag.lua", "-verbose"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Scenario != "flag.lua" || cfg.Assertions || !cfg.Verbose || cfg.Seed != 42 {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestRunRequiresScenario(t *testing.T) {
	if err := Run(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected missing scenario error")
	}
}

func TestRunScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duel.lua")
	script := `local s = Scenario.new("duel")
s:entity({name = "Fighter", hp = 12})
s:rolls(9)
s:start()
s:expect({current = "Fighter", round = 1})
return s
`
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	var errOut bytes.Buffer
	cfg := Config{Scenario: path, Assertions: true, Verbose: true, Timeout: time.Second, Seed: 7, Locale: "pt-BR"}
	if err := Run(context.Background(), cfg, nil, &errOut); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(errOut.String(), "seed 7") || !strings.Contains(errOut.String(), "scenario done: duel") {
		t.Fatalf("logs = %q", errOut.String())
	}
}
