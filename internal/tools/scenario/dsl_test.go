package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadScenarioBuildsSteps(t *testing.T) {
	scenario, err := LoadScenario("inline", `
local scene = Scenario.new("duel")
scene:entity({name = "Fighter", hp = 20, ac = 16})
scene:rolls(16, 7)
scene:start()
scene:attack({attacker = "Fighter", target = "Goblin", weapon = "dagger", expect_hit = true})
scene:dash("Fighter")
scene:dodge({entity = "Fighter"})
scene:expect({order = {"Fighter"}, round = 1})
return scene
`)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "duel" {
		t.Fatalf("name = %q, want duel", scenario.Name)
	}

	kinds := make([]string, 0, len(scenario.Steps))
	for _, step := range scenario.Steps {
		kinds = append(kinds, step.Kind)
	}
	want := "entity,rolls,start,attack,dash,dodge,expect"
	if got := strings.Join(kinds, ","); got != want {
		t.Fatalf("kinds = %s, want %s", got, want)
	}

	entity := scenario.Steps[0].Args
	if entity["name"] != "Fighter" || entity["hp"] != 20 {
		t.Fatalf("entity args = %v", entity)
	}
	attack := scenario.Steps[3].Args
	if attack["expect_hit"] != true || attack["weapon"] != "dagger" {
		t.Fatalf("attack args = %v", attack)
	}
	if scenario.Steps[4].Args["entity"] != "Fighter" {
		t.Fatalf("dash entity = %v, want Fighter", scenario.Steps[4].Args["entity"])
	}
	if scenario.Steps[5].Args["entity"] != "Fighter" {
		t.Fatalf("dodge entity = %v, want Fighter", scenario.Steps[5].Args["entity"])
	}
	order, ok := scenario.Steps[6].Args["order"].([]any)
	if !ok || len(order) != 1 || order[0] != "Fighter" {
		t.Fatalf("expect order = %#v", scenario.Steps[6].Args["order"])
	}
}

func TestLoadScenarioRollForms(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "varargs", source: `local s = Scenario.new("r") s:rolls(4, 5, 6) return s`},
		{name: "list", source: `local s = Scenario.new("r") s:rolls({4, 5, 6}) return s`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := LoadScenario(tt.name, tt.source)
			if err != nil {
				t.Fatalf("load scenario: %v", err)
			}
			if len(scenario.Steps) != 1 {
				t.Fatalf("steps = %d, want 1", len(scenario.Steps))
			}
			faces := readIntSlice(scenario.Steps[0].Args, "faces")
			if len(faces) != 3 || faces[0] != 4 || faces[2] != 6 {
				t.Fatalf("faces = %v, want [4 5 6]", faces)
			}
		})
	}
}

func TestLoadScenarioRequiresArguments(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "entity name", source: `s:entity({hp = 3})`, want: "entity name is required"},
		{name: "attack weapon", source: `s:attack({attacker = "A", target = "B"})`, want: "attack weapon is required"},
		{name: "cast spell", source: `s:cast({caster = "A"})`, want: "cast spell is required"},
		{name: "damage amount", source: `s:damage({target = "A"})`, want: "damage amount is required"},
		{name: "swap second", source: `s:swap({first = 1})`, want: "swap second is required"},
		{name: "dash entity", source: `s:dash({})`, want: "dash entity is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := "local s = Scenario.new(\"bad\")\n" + tt.source + "\nreturn s\n"
			_, err := LoadScenario(tt.name, source)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoadScenarioRequiresScenarioReturn(t *testing.T) {
	_, err := LoadScenario("nothing", `return 42`)
	if err == nil || !strings.Contains(err.Error(), "must return Scenario") {
		t.Fatalf("error = %v, want missing Scenario", err)
	}
}

func TestLoadScenarioSyntaxError(t *testing.T) {
	if _, err := LoadScenario("broken", `local s = Scenario.new(`); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestLoadScenarioFromFileDefaultsName(t *testing.T) {
	path := writeScenarioFixture(t, `local scene = Scenario.new()
scene:start()
return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "scenario" {
		t.Fatalf("name = %q, want scenario", scenario.Name)
	}
}

func TestLoadScenarioFromFileMissing(t *testing.T) {
	if _, err := LoadScenarioFromFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadScenarioNestedTables(t *testing.T) {
	scenario, err := LoadScenario("nested", `
local s = Scenario.new("nested")
s:attack({attacker = "A", target = "B", weapon = {name = "Club", damage = "1d4", range = 5, bonus = 2.5}})
s:expect({entity = "A", effects = {}})
return s
`)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	weapon, ok := scenario.Steps[0].Args["weapon"].(map[string]any)
	if !ok {
		t.Fatalf("weapon = %#v, want table", scenario.Steps[0].Args["weapon"])
	}
	if weapon["range"] != 5 || weapon["bonus"] != 2.5 {
		t.Fatalf("weapon = %v", weapon)
	}
	effects, ok := readStringSlice(scenario.Steps[1].Args, "effects")
	if !ok || len(effects) != 0 {
		t.Fatalf("effects = %v (%v), want empty list", effects, ok)
	}
}

func writeScenarioFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.lua")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}
