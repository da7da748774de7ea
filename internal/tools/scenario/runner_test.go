package scenario

import (
	"bytes"
	"context"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunTestdataScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.lua"))
	if err != nil {
		t.Fatalf("glob testdata: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no scenarios in testdata")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			if err := RunFile(context.Background(), DefaultConfig(), path); err != nil {
				t.Fatalf("run %s: %v", path, err)
			}
		})
	}
}

func TestRunScenarioReturnsEngine(t *testing.T) {
	scenario := mustLoad(t, `
local s = Scenario.new("engine")
s:entity({name = "Fighter", hp = 20})
s:entity({name = "Goblin", type = "enemy", hp = 7})
s:rolls(10, 15)
s:start()
return s
`)
	engine, err := NewRunner(DefaultConfig()).RunScenario(context.Background(), scenario)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	current, ok := engine.Turns.Current()
	if !ok || current.Name != "Goblin" {
		t.Fatalf("current = %q, want Goblin", current.Name)
	}
	if engine.Turns.Round() != 1 {
		t.Fatalf("round = %d, want 1", engine.Turns.Round())
	}
}

func TestRunScenarioStrictFailure(t *testing.T) {
	scenario := mustLoad(t, `
local s = Scenario.new("strict")
s:entity({name = "Fighter", hp = 20})
s:expect({entity = "Fighter", hp = 19})
s:damage({target = "Fighter", amount = 5})
return s
`)
	engine, err := NewRunner(DefaultConfig()).RunScenario(context.Background(), scenario)
	if err == nil {
		t.Fatal("expected expectation failure")
	}
	if !strings.Contains(err.Error(), "step 2 (expect)") || !strings.Contains(err.Error(), "hp = 20, want 19") {
		t.Fatalf("error = %v", err)
	}
	if len(engine.History()) != 0 {
		t.Fatalf("history = %d, want the run to stop before damage", len(engine.History()))
	}
}

func TestRunScenarioLogOnlyKeepsGoing(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.Assertions = AssertionLogOnly
	cfg.Logger = log.New(&out, "", 0)

	scenario := mustLoad(t, `
local s = Scenario.new("log only")
s:entity({name = "Fighter", hp = 20})
s:expect({entity = "Fighter", hp = 19})
s:damage({target = "Fighter", amount = 5, expect_damage = 4})
s:expect({entity = "Fighter", hp = 15})
return s
`)
	engine, err := NewRunner(cfg).RunScenario(context.Background(), scenario)
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	if len(engine.History()) != 1 {
		t.Fatalf("history = %d, want 1", len(engine.History()))
	}
	logs := out.String()
	for _, want := range []string{
		"expectation failed: Fighter hp = 20, want 19",
		"expectation failed: damage = 5, want 4",
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("logs = %q, want %q", logs, want)
		}
	}
}

func TestRunScenarioExpectError(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name:   "matching code",
			source: `s:heal({target = "Fighter", amount = -1, expect_error = "AMOUNT_NEGATIVE"})`,
		},
		{
			name:    "success instead of error",
			source:  `s:heal({target = "Fighter", amount = 1, expect_error = "AMOUNT_NEGATIVE"})`,
			wantErr: "expected error AMOUNT_NEGATIVE, got success",
		},
		{
			name:    "other code",
			source:  `s:cast({caster = "Fighter", spell = "fireball", level = 1, expect_error = "AMOUNT_NEGATIVE"})`,
			wantErr: "error code = SPELL_LEVEL_INVALID, want AMOUNT_NEGATIVE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := mustLoad(t, "local s = Scenario.new(\"errors\")\n"+
				"s:entity({name = \"Fighter\", hp = 20})\n"+tt.source+"\nreturn s\n")
			_, err := NewRunner(DefaultConfig()).RunScenario(context.Background(), scenario)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("run scenario: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunScenarioScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "unknown entity", source: `s:dash("Ghost")`, want: `unknown entity "Ghost"`},
		{name: "duplicate entity", source: `s:entity({name = "Fighter", hp = 3})`, want: `entity "Fighter" already exists`},
		{name: "unknown weapon", source: `s:attack({attacker = "Fighter", target = "Fighter", weapon = "trebuchet"})`, want: "WEAPON_UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Assertions = AssertionLogOnly
			scenario := mustLoad(t, "local s = Scenario.new(\"script\")\n"+
				"s:entity({name = \"Fighter\", hp = 20})\n"+tt.source+"\nreturn s\n")
			_, err := NewRunner(cfg).RunScenario(context.Background(), scenario)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestRunScenarioVerboseLogs(t *testing.T) {
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.Verbose = true
	cfg.Logger = log.New(&out, "", 0)

	scenario := mustLoad(t, `
local s = Scenario.new("verbose")
s:entity({name = "Fighter", hp = 20})
s:rolls(12)
s:start()
return s
`)
	if _, err := NewRunner(cfg).RunScenario(context.Background(), scenario); err != nil {
		t.Fatalf("run scenario: %v", err)
	}
	logs := out.String()
	for _, want := range []string{
		"scenario start: verbose (3 steps)",
		"step 1/3 start: entity",
		"round 1: ",
		"scenario done: verbose",
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("logs = %q, want %q", logs, want)
		}
	}
}

func TestRunScenarioCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scenario := mustLoad(t, `local s = Scenario.new("cancel") s:start() return s`)
	if _, err := NewRunner(DefaultConfig()).RunScenario(ctx, scenario); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRunScenarioNil(t *testing.T) {
	if _, err := NewRunner(Config{Timeout: time.Second}).RunScenario(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil scenario")
	}
}

func mustLoad(t *testing.T, source string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(t.Name(), source)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	return scenario
}
