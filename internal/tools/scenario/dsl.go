package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is an ordered list of steps built by a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one DSL call: a kind plus its table arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script that must return a Scenario.
// The scenario name defaults to the file name.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenario runs Lua source that must return a Scenario.
func LoadScenario(name, source string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = name
	}
	return scenario, nil
}

func newLuaState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)

	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
	return state
}

func runChunk(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func scenarioNew(state *lua.State) int {
	state.PushUserData(&Scenario{Name: lua.OptString(state, 1, "")})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

// Every method appends one step. Methods taking a table validate the keys a
// step cannot run without so script errors surface at load time.
var scenarioMethods = []lua.RegistryFunction{
	{Name: "rolls", Function: scenarioRolls},
	{Name: "entity", Function: tableStep("entity", "name")},
	{Name: "remove", Function: nameStep("remove")},
	{Name: "start", Function: bareStep("start")},
	{Name: "next", Function: bareStep("next")},
	{Name: "end_combat", Function: bareStep("end_combat")},
	{Name: "attack", Function: tableStep("attack", "attacker", "target", "weapon")},
	{Name: "cast", Function: tableStep("cast", "caster", "spell")},
	{Name: "move", Function: tableStep("move", "entity")},
	{Name: "dash", Function: nameStep("dash")},
	{Name: "dodge", Function: nameStep("dodge")},
	{Name: "damage", Function: tableStep("damage", "target", "amount")},
	{Name: "heal", Function: tableStep("heal", "target", "amount")},
	{Name: "status", Function: tableStep("status", "entity", "name")},
	{Name: "clear_status", Function: tableStep("clear_status", "entity", "name")},
	{Name: "condition", Function: tableStep("condition", "entity", "name")},
	{Name: "clear_condition", Function: tableStep("clear_condition", "entity", "name")},
	{Name: "initiative", Function: tableStep("initiative", "entity")},
	{Name: "swap", Function: tableStep("swap", "first", "second")},
	{Name: "fly", Function: tableStep("fly", "entity", "height")},
	{Name: "land", Function: nameStep("land")},
	{Name: "snapshot", Function: bareStep("snapshot")},
	{Name: "expect", Function: tableStep("expect")},
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

// scenarioRolls queues d20 and damage faces: scene:rolls(16, 7) or
// scene:rolls({16, 7}).
func scenarioRolls(state *lua.State) int {
	scenario := checkScenario(state)
	var faces []any
	if state.TypeOf(2) == lua.TypeTable {
		list, ok := tableToGo(state, 2).([]any)
		if !ok {
			lua.ArgumentError(state, 2, "list of faces expected")
		}
		faces = list
	} else {
		for i := 2; i <= state.Top(); i++ {
			faces = append(faces, lua.CheckInteger(state, i))
		}
	}
	appendStep(scenario, "rolls", map[string]any{"faces": faces})
	return 0
}

func bareStep(kind string) lua.Function {
	return func(state *lua.State) int {
		appendStep(checkScenario(state), kind, nil)
		return 0
	}
}

// nameStep accepts scene:dash("Fighter") or scene:dash({entity = "Fighter"}).
func nameStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		var data map[string]any
		if state.TypeOf(2) == lua.TypeTable {
			data = tableToMap(state, 2)
		} else {
			data = map[string]any{"entity": lua.CheckString(state, 2)}
		}
		if requiredString(data, "entity") == "" {
			lua.Errorf(state, "%s entity is required", kind)
		}
		appendStep(scenario, kind, data)
		return 0
	}
}

func tableStep(kind string, required ...string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		lua.CheckType(state, 2, lua.TypeTable)
		data := tableToMap(state, 2)
		for _, key := range required {
			if _, ok := data[key]; !ok {
				lua.Errorf(state, "%s %s is required", kind, key)
			}
		}
		appendStep(scenario, kind, data)
		return 0
	}
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		if math.Mod(value, 1) == 0 {
			return int(value)
		}
		return value
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo returns a []any for sequences and a map otherwise.
func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	length := lua.LengthEx(state, index)
	if length == 0 {
		return tableToMap(state, index)
	}
	out := make([]any, 0, length)
	for i := 1; i <= length; i++ {
		state.RawGetInt(index, i)
		out = append(out, luaToGo(state, -1))
		state.Pop(1)
	}
	return out
}
