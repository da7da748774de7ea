package scenario

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/encounter"
	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
)

// runStepExpectingError runs a step and, when the step names expect_error,
// requires it to fail with that code.
func (r *Runner) runStepExpectingError(ctx context.Context, state *scenarioState, step Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	want := requiredString(step.Args, "expect_error")
	err := r.runStep(state, step)
	if want == "" {
		return err
	}
	if err == nil {
		return r.assertf("expected error %s, got success", want)
	}
	if got := apperrors.CodeOf(err); string(got) != want {
		return r.assertf("error code = %s, want %s (%v)", got, want, err)
	}
	return nil
}

func (r *Runner) runStep(state *scenarioState, step Step) error {
	switch step.Kind {
	case "rolls":
		state.dice.Push(readIntSlice(step.Args, "faces")...)
		return nil
	case "entity":
		return r.runEntityStep(state, step)
	case "remove":
		return r.runRemoveStep(state, step)
	case "start":
		return r.runStartStep(state, step)
	case "next":
		return r.runNextStep(state, step)
	case "end_combat":
		state.engine.Turns.EndCombat()
		return nil
	case "attack":
		return r.runAttackStep(state, step)
	case "cast":
		return r.runCastStep(state, step)
	case "move":
		return r.runMoveStep(state, step)
	case "dash", "dodge", "land":
		return r.runEntityCommandStep(state, step)
	case "damage", "heal":
		return r.runAdjustStep(state, step)
	case "status":
		return r.runStatusStep(state, step)
	case "clear_status":
		return r.runClearStatusStep(state, step)
	case "condition":
		return r.runConditionStep(state, step)
	case "clear_condition":
		entityID, err := state.entityID(requiredString(step.Args, "entity"))
		if err != nil {
			return r.failf("%v", err)
		}
		return state.engine.Registry.RemoveCondition(entityID, requiredString(step.Args, "name"))
	case "initiative":
		return r.runInitiativeStep(state, step)
	case "swap":
		return r.runSwapStep(state, step)
	case "fly":
		return r.runFlyStep(state, step)
	case "snapshot":
		return r.runSnapshotStep(state)
	case "expect":
		return r.runExpectStep(state, step)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runEntityStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "name")
	if _, exists := state.entities[name]; exists {
		return r.failf("entity %q already exists", name)
	}
	x, _ := readFloat(step.Args, "x")
	z, _ := readFloat(step.Args, "z")
	spec := combat.EntitySpec{
		Name: name,
		Type: combat.EntityType(optionalString(step.Args, "type", string(combat.EntityPlayer))),
		Size: combat.Size(optionalString(step.Args, "size", "")),
		Stats: combat.Stats{
			MaxHP:      optionalInt(step.Args, "hp", 0),
			CurrentHP:  optionalInt(step.Args, "current_hp", 0),
			ArmorClass: optionalInt(step.Args, "ac", 10),
			Initiative: optionalInt(step.Args, "initiative", 0),
			Speed:      optionalInt(step.Args, "speed", 30),
		},
		Position: gridPosition(x, z),
	}
	if height, ok := readFloat(step.Args, "flying"); ok {
		spec.IsFlying = true
		spec.FlyingHeight = height
		spec.Position.Y = &height
	}
	entity, err := state.engine.Registry.Add(spec)
	if err != nil {
		return err
	}
	state.entities[name] = entity.ID
	return nil
}

func (r *Runner) runRemoveStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "entity")
	entityID, err := state.entityID(name)
	if err != nil {
		return r.failf("%v", err)
	}
	if err := state.engine.Registry.Remove(entityID); err != nil {
		return err
	}
	delete(state.entities, name)
	return nil
}

func (r *Runner) runStartStep(state *scenarioState, step Step) error {
	started := state.engine.Turns.StartCombat()
	if want := optionalBool(step.Args, "expect_started", true); started != want {
		return r.assertf("combat started = %t, want %t", started, want)
	}
	return nil
}

func (r *Runner) runNextStep(state *scenarioState, step Step) error {
	result := state.engine.Turns.NextTurn()
	if want := requiredString(step.Args, "expect_current"); want != "" {
		if got := state.name(result.CurrentID); got != want {
			return r.assertf("current = %q, want %q", got, want)
		}
	}
	return nil
}

func (r *Runner) runAttackStep(state *scenarioState, step Step) error {
	attackerID, err := state.entityID(requiredString(step.Args, "attacker"))
	if err != nil {
		return r.failf("%v", err)
	}
	targetID, err := state.entityID(requiredString(step.Args, "target"))
	if err != nil {
		return r.failf("%v", err)
	}
	weapon, err := readWeapon(step.Args)
	if err != nil {
		return err
	}
	action, err := state.engine.Resolver.Attack(combat.AttackRequest{
		AttackerID:   attackerID,
		TargetID:     targetID,
		Weapon:       weapon,
		Advantage:    optionalBool(step.Args, "advantage", false),
		Disadvantage: optionalBool(step.Args, "disadvantage", false),
	})
	if err != nil {
		return err
	}
	if want, ok := readBool(step.Args, "expect_hit"); ok && action.Success != want {
		return r.assertf("hit = %t, want %t (%s)", action.Success, want, action.Description)
	}
	if want, ok := readBool(step.Args, "expect_critical"); ok && action.CriticalHit != want {
		return r.assertf("critical = %t, want %t (%s)", action.CriticalHit, want, action.Description)
	}
	return r.assertAction(action, step.Args)
}

// readWeapon accepts a preset key or an inline table
// {name, damage, type, range, bonus}.
func readWeapon(args map[string]any) (combat.Weapon, error) {
	switch typed := args["weapon"].(type) {
	case string:
		return combat.LookupWeapon(typed)
	case map[string]any:
		return combat.Weapon{
			Name:        optionalString(typed, "name", "Weapon"),
			Damage:      requiredString(typed, "damage"),
			DamageType:  combat.DamageType(optionalString(typed, "type", "")),
			Range:       optionalInt(typed, "range", 5),
			AttackBonus: optionalInt(typed, "bonus", 0),
		}, nil
	}
	return combat.Weapon{}, fmt.Errorf("weapon must be a preset name or table")
}

func (r *Runner) runCastStep(state *scenarioState, step Step) error {
	casterID, err := state.entityID(requiredString(step.Args, "caster"))
	if err != nil {
		return r.failf("%v", err)
	}
	spell, err := combat.LookupSpell(requiredString(step.Args, "spell"))
	if err != nil {
		return err
	}
	req := combat.CastRequest{
		CasterID:   casterID,
		Spell:      spell,
		SpellLevel: optionalInt(step.Args, "level", 0),
	}
	if target := requiredString(step.Args, "target"); target != "" {
		if req.TargetID, err = state.entityID(target); err != nil {
			return r.failf("%v", err)
		}
	}
	if at, ok := step.Args["at"].(map[string]any); ok {
		x, _ := readFloat(at, "x")
		z, _ := readFloat(at, "z")
		position := gridPosition(x, z)
		req.TargetPosition = &position
	}
	action, err := state.engine.Resolver.CastSpell(req)
	if err != nil {
		return err
	}
	if want, ok := readInt(step.Args, "expect_heal"); ok && action.HealAmount != want {
		return r.assertf("heal = %d, want %d (%s)", action.HealAmount, want, action.Description)
	}
	return r.assertAction(action, step.Args)
}

func (r *Runner) runMoveStep(state *scenarioState, step Step) error {
	entityID, err := state.entityID(requiredString(step.Args, "entity"))
	if err != nil {
		return r.failf("%v", err)
	}
	x, _ := readFloat(step.Args, "x")
	z, _ := readFloat(step.Args, "z")
	action, err := state.engine.Resolver.Move(entityID, gridPosition(x, z))
	if err != nil {
		return err
	}
	return r.assertAction(action, step.Args)
}

func (r *Runner) runEntityCommandStep(state *scenarioState, step Step) error {
	entityID, err := state.entityID(requiredString(step.Args, "entity"))
	if err != nil {
		return r.failf("%v", err)
	}
	switch step.Kind {
	case "dash":
		_, err = state.engine.Resolver.Dash(entityID)
	case "dodge":
		_, err = state.engine.Resolver.Dodge(entityID)
	case "land":
		err = state.engine.Registry.Land(entityID)
	}
	return err
}

func (r *Runner) runAdjustStep(state *scenarioState, step Step) error {
	targetID, err := state.entityID(requiredString(step.Args, "target"))
	if err != nil {
		return r.failf("%v", err)
	}
	amount := optionalInt(step.Args, "amount", 0)
	var action combat.Action
	if step.Kind == "damage" {
		action, err = state.engine.Resolver.Damage(targetID, amount, combat.DamageType(optionalString(step.Args, "type", "")))
	} else {
		action, err = state.engine.Resolver.Heal(targetID, amount)
	}
	if err != nil {
		return err
	}
	return r.assertAction(action, step.Args)
}

// runStatusStep attaches a preset when the name matches one and no custom
// description is given. Custom effects without a duration are permanent.
func (r *Runner) runStatusStep(state *scenarioState, step Step) error {
	entityID, err := state.entityID(requiredString(step.Args, "entity"))
	if err != nil {
		return r.failf("%v", err)
	}
	name := requiredString(step.Args, "name")
	if _, preset := combat.StatusPreset(name); preset && requiredString(step.Args, "description") == "" {
		_, err = state.engine.Tracker.AddPreset(entityID, name, optionalInt(step.Args, "duration", 0))
		return err
	}
	_, err = state.engine.Tracker.Add(entityID, combat.StatusEffect{
		Name:        name,
		Description: requiredString(step.Args, "description"),
		Duration:    optionalInt(step.Args, "duration", -1),
		Color:       optionalString(step.Args, "color", "#666666"),
	})
	return err
}

func (r *Runner) runClearStatusStep(state *scenarioState, step Step) error {
	entityID, err := state.entityID(requiredString(step.Args, "entity"))
	if err != nil {
		return r.failf("%v", err)
	}
	return state.engine.Tracker.Remove(entityID, requiredString(step.Args, "name"))
}

// runConditionStep adds a bare condition. With stack set, repeats are kept
// under a numbered name that expect_name can check.
func (r *Runner) runConditionStep(state *scenarioState, step Step) error {
	entityID, err := state.entityID(requiredString(step.Args, "entity"))
	if err != nil {
		return r.failf("%v", err)
	}
	name := requiredString(step.Args, "name")
	if !optionalBool(step.Args, "stack", false) {
		return state.engine.Registry.AddCondition(entityID, name)
	}
	stored, err := state.engine.Registry.StackCondition(entityID, name)
	if err != nil {
		return err
	}
	if want := requiredString(step.Args, "expect_name"); want != "" && stored != want {
		return r.assertf("stacked condition = %q, want %q", stored, want)
	}
	return nil
}

func (r *Runner) runInitiativeStep(state *scenarioState, step Step) error {
	entityID, err := state.entityID(requiredString(step.Args, "entity"))
	if err != nil {
		return r.failf("%v", err)
	}
	if value, ok := readInt(step.Args, "value"); ok {
		return state.engine.Turns.SetInitiative(entityID, value)
	}
	value, err := state.engine.Turns.RollInitiative(entityID)
	if err != nil {
		return err
	}
	if want, ok := readInt(step.Args, "expect_value"); ok && value != want {
		return r.assertf("initiative = %d, want %d", value, want)
	}
	return nil
}

// runSwapStep swaps two turn slots numbered from 1, as Lua lists are.
func (r *Runner) runSwapStep(state *scenarioState, step Step) error {
	first := optionalInt(step.Args, "first", 0)
	second := optionalInt(step.Args, "second", 0)
	return state.engine.Turns.SwapInitiative(first-1, second-1)
}

func (r *Runner) runFlyStep(state *scenarioState, step Step) error {
	entityID, err := state.entityID(requiredString(step.Args, "entity"))
	if err != nil {
		return r.failf("%v", err)
	}
	height, _ := readFloat(step.Args, "height")
	return state.engine.Registry.SetFlying(entityID, height)
}

// runSnapshotStep saves the encounter to JSON and loads it back, failing when
// the reloaded encounter does not save to the same bytes.
func (r *Runner) runSnapshotStep(state *scenarioState) error {
	now := r.clock()
	meta := encounter.Meta{ID: "scenario", Name: "scenario snapshot"}
	save := func() ([]byte, error) {
		e := state.engine
		return encounter.Encode(encounter.Snapshot(e.State(), e.History(), e.StatusEffects(), meta, now))
	}

	before, err := save()
	if err != nil {
		return err
	}
	saved, err := encounter.Decode(before)
	if err != nil {
		return err
	}
	restored, history, effects := saved.Restore()
	if err := state.engine.Load(restored, history, effects); err != nil {
		return err
	}
	after, err := save()
	if err != nil {
		return err
	}
	if !bytes.Equal(before, after) {
		return r.assertf("snapshot round trip changed the encounter:\n%s\n%s", before, after)
	}
	return nil
}

func (r *Runner) assertAction(action combat.Action, args map[string]any) error {
	if want, ok := readInt(args, "expect_damage"); ok && action.Damage != want {
		return r.assertf("damage = %d, want %d (%s)", action.Damage, want, action.Description)
	}
	if want, ok := readInt(args, "expect_roll"); ok && action.Roll != want {
		return r.assertf("roll = %d, want %d (%s)", action.Roll, want, action.Description)
	}
	if want, ok := readInt(args, "expect_total"); ok && action.RollTotal != want {
		return r.assertf("roll total = %d, want %d (%s)", action.RollTotal, want, action.Description)
	}
	if want := requiredString(args, "expect_description"); want != "" && action.Description != want {
		return r.assertf("description = %q, want %q", action.Description, want)
	}
	return nil
}

func (r *Runner) runExpectStep(state *scenarioState, step Step) error {
	s := state.engine.State()
	if want, ok := readInt(step.Args, "round"); ok && s.Round != want {
		return r.assertf("round = %d, want %d", s.Round, want)
	}
	if want, ok := readBool(step.Args, "active"); ok && s.IsActive != want {
		return r.assertf("active = %t, want %t", s.IsActive, want)
	}
	if want := requiredString(step.Args, "current"); want != "" {
		current, ok := state.engine.Turns.Current()
		if !ok || current.Name != want {
			return r.assertf("current = %q, want %q", current.Name, want)
		}
	}
	if want, ok := readStringSlice(step.Args, "order"); ok {
		got := make([]string, 0, len(s.TurnOrder))
		for _, entry := range s.TurnOrder {
			got = append(got, state.name(entry.EntityID))
		}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			return r.assertf("order = %v, want %v", got, want)
		}
	}
	if want, ok := readInt(step.Args, "history"); ok && len(state.engine.History()) != want {
		return r.assertf("history length = %d, want %d", len(state.engine.History()), want)
	}
	if name := requiredString(step.Args, "entity"); name != "" {
		return r.expectEntity(state, name, step.Args)
	}
	return nil
}

func (r *Runner) expectEntity(state *scenarioState, name string, args map[string]any) error {
	entity, err := state.entity(name)
	if err != nil {
		return r.failf("%v", err)
	}
	ints := []struct {
		key string
		got int
	}{
		{"hp", entity.Stats.CurrentHP},
		{"max_hp", entity.Stats.MaxHP},
		{"ac", entity.Stats.ArmorClass},
		{"initiative", entity.Stats.Initiative},
		{"grid_x", entity.Position.GridX},
		{"grid_z", entity.Position.GridZ},
	}
	for _, field := range ints {
		if want, ok := readInt(args, field.key); ok && field.got != want {
			return r.assertf("%s %s = %d, want %d", name, field.key, field.got, want)
		}
	}
	bools := []struct {
		key string
		got bool
	}{
		{"alive", entity.Alive()},
		{"flying", entity.IsFlying},
		{"has_moved", entity.HasMoved},
		{"has_acted", entity.HasActed},
		{"has_dashed", entity.HasDashed},
	}
	for _, field := range bools {
		if want, ok := readBool(args, field.key); ok && field.got != want {
			return r.assertf("%s %s = %t, want %t", name, field.key, field.got, want)
		}
	}
	if want, ok := readStringSlice(args, "conditions"); ok {
		if strings.Join(entity.Conditions, ",") != strings.Join(want, ",") {
			return r.assertf("%s conditions = %v, want %v", name, entity.Conditions, want)
		}
	}
	if want, ok := readStringSlice(args, "effects"); ok {
		var got []string
		for _, effect := range state.engine.Tracker.Effects(entity.ID) {
			got = append(got, fmt.Sprintf("%s:%d", effect.Name, effect.Duration))
		}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			return r.assertf("%s effects = %v, want %v", name, got, want)
		}
	}
	return nil
}

// gridPosition places world coordinates on the nearest grid cell.
func gridPosition(x, z float64) combat.Position {
	return combat.Position{X: x, Z: z, GridX: int(math.Round(x)), GridZ: int(math.Round(z))}
}
