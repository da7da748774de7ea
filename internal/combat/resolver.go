package combat

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/louisbranch/battlegrid/internal/core/check"
	"github.com/louisbranch/battlegrid/internal/core/dice"
	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
)

// Fixed numbers of the simplified rules.
const (
	SaveModifier  = 2
	SaveDC        = 13
	MaxSpellLevel = 9

	// AreaLifetime is how long an instantaneous spell's area stays on the map.
	AreaLifetime = 3 * time.Second
)

// Resolver validates and resolves actions. Every resolved action is appended
// to the engine history. A failed precondition returns an error and leaves
// the state untouched.
type Resolver struct {
	e *Engine
}

// AttackRequest describes a weapon attack.
type AttackRequest struct {
	AttackerID   string
	TargetID     string
	Weapon       Weapon
	Advantage    bool
	Disadvantage bool
}

// Attack resolves a weapon attack. A natural 1 always misses; otherwise the
// attack hits when d20 + attack bonus reaches the target's armor class. A
// natural 20 that hits rolls the damage dice twice.
func (r *Resolver) Attack(req AttackRequest) (Action, error) {
	attacker, ok := r.e.entity(req.AttackerID)
	if !ok {
		return Action{}, entityNotFound(req.AttackerID)
	}
	target, ok := r.e.entity(req.TargetID)
	if !ok {
		return Action{}, entityNotFound(req.TargetID)
	}
	if distance := DistanceFeet(attacker.Position, target.Position); distance > float64(req.Weapon.Range) {
		return Action{}, outOfRange(distance, req.Weapon.Range)
	}
	expr, err := parseDamage(req.Weapon.Damage)
	if err != nil {
		return Action{}, err
	}
	actionID, err := r.e.newID()
	if err != nil {
		return Action{}, err
	}

	roll := dice.RollD20(r.e.dice, req.Advantage, req.Disadvantage)
	total := roll.Value + req.Weapon.AttackBonus
	outcome := check.Against(total, target.Stats.ArmorClass)
	hit := !roll.Natural1() && outcome.Success
	critical := hit && roll.Natural20()

	damage := 0
	if hit {
		damage = expr.Roll(r.e.dice, critical).Total
		r.e.Registry.applyDamage(&target, damage)
	}
	r.markActed(req.AttackerID, false)

	var description string
	switch {
	case roll.Natural1():
		description = fmt.Sprintf("%s critically misses with %s!", attacker.Name, req.Weapon.Name)
	case !hit:
		description = fmt.Sprintf("%s attacks %s with %s but misses (%d vs AC %d)",
			attacker.Name, target.Name, req.Weapon.Name, outcome.Total, outcome.Target)
	case critical:
		description = fmt.Sprintf("%s critically hits %s with %s for %d %s damage!",
			attacker.Name, target.Name, req.Weapon.Name, damage, req.Weapon.DamageType)
	default:
		description = fmt.Sprintf("%s hits %s with %s for %d %s damage",
			attacker.Name, target.Name, req.Weapon.Name, damage, req.Weapon.DamageType)
	}

	return r.e.record(Action{
		ID:          actionID,
		Type:        ActionAttack,
		ActorID:     req.AttackerID,
		TargetID:    req.TargetID,
		Weapon:      req.Weapon.Name,
		Damage:      damage,
		DamageType:  req.Weapon.DamageType,
		Roll:        roll.Value,
		RollTotal:   total,
		Success:     hit,
		CriticalHit: critical,
		Description: description,
	}), nil
}

// CastRequest describes a spell cast. TargetID and TargetPosition are
// optional; SpellLevel defaults to the spell's own level.
type CastRequest struct {
	CasterID       string
	Spell          Spell
	TargetID       string
	TargetPosition *Position
	SpellLevel     int
}

// CastSpell resolves a spell. A targeted damage spell with a saving throw lets
// the target roll d20 + SaveModifier against SaveDC and halves the damage on
// a success. Healing spells heal their dice once per spell level. Area spells
// cast at a position leave a SpellArea for the adapter.
func (r *Resolver) CastSpell(req CastRequest) (Action, error) {
	caster, ok := r.e.entity(req.CasterID)
	if !ok {
		return Action{}, entityNotFound(req.CasterID)
	}

	var target *Entity
	if req.TargetID != "" {
		found, ok := r.e.entity(req.TargetID)
		if !ok {
			return Action{}, entityNotFound(req.TargetID)
		}
		if distance := DistanceFeet(caster.Position, found.Position); distance > float64(req.Spell.Range) {
			return Action{}, outOfRange(distance, req.Spell.Range)
		}
		target = &found
	}

	level := req.SpellLevel
	if level == 0 {
		level = req.Spell.Level
	}
	if level < req.Spell.Level || level > MaxSpellLevel {
		return Action{}, apperrors.WithMetadata(apperrors.CodeSpellLevelInvalid,
			fmt.Sprintf("%s cannot be cast at level %d", req.Spell.Name, level),
			map[string]string{"Spell": req.Spell.Name, "Level": strconv.Itoa(level)})
	}

	var damageExpr, healExpr dice.Expression
	var err error
	if req.Spell.Damage != "" {
		if damageExpr, err = parseDamage(req.Spell.Damage); err != nil {
			return Action{}, err
		}
	}
	if req.Spell.Healing() {
		if healExpr, err = parseDamage(req.Spell.Heal); err != nil {
			return Action{}, err
		}
	}

	actionID, err := r.e.newID()
	if err != nil {
		return Action{}, err
	}
	var areaID string
	if req.Spell.Area != nil && req.TargetPosition != nil {
		if areaID, err = r.e.newID(); err != nil {
			return Action{}, err
		}
	}

	action := Action{
		ID:         actionID,
		Type:       ActionCastSpell,
		ActorID:    req.CasterID,
		TargetID:   req.TargetID,
		Spell:      req.Spell.Name,
		DamageType: req.Spell.DamageType,
		Success:    true,
	}
	if req.TargetPosition != nil {
		p := req.TargetPosition.Clone()
		action.TargetPosition = &p
	}

	switch {
	case target != nil && req.Spell.Healing():
		action.HealAmount = healExpr.Scale(level).Roll(r.e.dice, false).Total
		r.e.Registry.applyHealing(target, action.HealAmount)
		action.Description = fmt.Sprintf("%s casts %s on %s, healing %d HP",
			caster.Name, req.Spell.Name, target.Name, action.HealAmount)
	case target != nil && req.Spell.Damage != "":
		damage := damageExpr.Roll(r.e.dice, false).Total
		if req.Spell.Save != "" {
			save := dice.RollD20(r.e.dice, false, false)
			action.Roll = save.Value
			action.RollTotal = save.Value + SaveModifier
			damage = check.Halve(damage, check.Against(action.RollTotal, SaveDC).Success)
		}
		action.Damage = damage
		r.e.Registry.applyDamage(target, damage)
		action.Description = fmt.Sprintf("%s casts %s on %s for %d damage",
			caster.Name, req.Spell.Name, target.Name, damage)
	default:
		action.Description = fmt.Sprintf("%s casts %s", caster.Name, req.Spell.Name)
	}
	r.markActed(req.CasterID, false)

	if areaID != "" {
		r.openArea(areaID, req.Spell, *req.TargetPosition)
	}
	return r.e.record(action), nil
}

func (r *Resolver) openArea(areaID string, spell Spell, origin Position) {
	area := SpellArea{
		ID:     areaID,
		Spell:  spell.Name,
		Shape:  spell.Area.Shape,
		Size:   spell.Area.Size,
		Origin: origin.Clone(),
		Color:  SchoolColor(spell.School),
	}
	if area.Shape == AreaCone {
		area.Angle = ConeAngle
	}
	if spell.Instantaneous() {
		area.ExpiresAt = r.e.now().Add(AreaLifetime)
	}
	r.e.areas = append(r.e.areas, area)
	r.e.adapter.ShowArea(area)
	r.e.emit(Event{Kind: EventAreaCreated, Round: r.e.state.Round, Area: &area})
}

// Move moves an entity as its move action. A move longer than the entity's
// remaining allowance fails with MOVE_EXCEEDS_SPEED.
func (r *Resolver) Move(entityID string, to Position) (Action, error) {
	entity, ok := r.e.entity(entityID)
	if !ok {
		return Action{}, entityNotFound(entityID)
	}
	distance := DistanceFeet(entity.Position, to)
	actionID, err := r.e.newID()
	if err != nil {
		return Action{}, err
	}
	moved, err := r.e.Registry.Move(entityID, to)
	if err != nil {
		return Action{}, err
	}
	if !moved {
		feet := strconv.Itoa(int(math.Round(distance)))
		return Action{}, apperrors.WithMetadata(apperrors.CodeMoveExceedsSpeed,
			fmt.Sprintf("%s cannot move %s feet with speed %d", entity.Name, feet, movementAllowance(entity)),
			map[string]string{"Name": entity.Name, "Distance": feet, "Speed": strconv.Itoa(movementAllowance(entity))})
	}

	p := to.Clone()
	return r.e.record(Action{
		ID:             actionID,
		Type:           ActionMove,
		ActorID:        entityID,
		TargetPosition: &p,
		Success:        true,
		Description:    fmt.Sprintf("%s moved %d feet", entity.Name, int(math.Round(distance))),
	}), nil
}

// Dash spends the action to double the movement allowance for this turn.
func (r *Resolver) Dash(entityID string) (Action, error) {
	entity, ok := r.e.entity(entityID)
	if !ok {
		return Action{}, entityNotFound(entityID)
	}
	actionID, err := r.e.newID()
	if err != nil {
		return Action{}, err
	}
	r.markActed(entityID, true)
	r.e.adapter.ShowMovementRange(entityID, entity.Position.Clone(), entity.Stats.Speed*2)

	return r.e.record(Action{
		ID:          actionID,
		Type:        ActionDash,
		ActorID:     entityID,
		Success:     true,
		Description: fmt.Sprintf("%s takes the Dash action (movement speed doubled)", entity.Name),
	}), nil
}

// Dodge spends the action to gain the dodging condition until the entity's
// next turn starts.
func (r *Resolver) Dodge(entityID string) (Action, error) {
	entity, ok := r.e.entity(entityID)
	if !ok {
		return Action{}, entityNotFound(entityID)
	}
	actionID, err := r.e.newID()
	if err != nil {
		return Action{}, err
	}
	if err := r.e.Registry.AddCondition(entityID, ConditionDodging); err != nil {
		return Action{}, err
	}
	r.markActed(entityID, false)

	return r.e.record(Action{
		ID:          actionID,
		Type:        ActionDodge,
		ActorID:     entityID,
		Success:     true,
		Description: fmt.Sprintf("%s takes the Dodge action (advantage on Dex saves, attacks have disadvantage)", entity.Name),
	}), nil
}

// Damage applies GM-adjudicated damage and logs it.
func (r *Resolver) Damage(entityID string, amount int, damageType DamageType) (Action, error) {
	if amount < 0 {
		return Action{}, negativeAmount(amount)
	}
	entity, ok := r.e.entity(entityID)
	if !ok {
		return Action{}, entityNotFound(entityID)
	}
	actionID, err := r.e.newID()
	if err != nil {
		return Action{}, err
	}
	r.e.Registry.applyDamage(&entity, amount)

	description := fmt.Sprintf("%s takes %d damage", entity.Name, amount)
	if damageType != "" {
		description = fmt.Sprintf("%s takes %d %s damage", entity.Name, amount, damageType)
	}
	return r.e.record(Action{
		ID:          actionID,
		Type:        ActionDamage,
		ActorID:     entityID,
		TargetID:    entityID,
		Damage:      amount,
		DamageType:  damageType,
		Success:     true,
		Description: description,
	}), nil
}

// Heal applies GM-adjudicated healing and logs it.
func (r *Resolver) Heal(entityID string, amount int) (Action, error) {
	if amount < 0 {
		return Action{}, negativeAmount(amount)
	}
	entity, ok := r.e.entity(entityID)
	if !ok {
		return Action{}, entityNotFound(entityID)
	}
	actionID, err := r.e.newID()
	if err != nil {
		return Action{}, err
	}
	r.e.Registry.applyHealing(&entity, amount)

	return r.e.record(Action{
		ID:          actionID,
		Type:        ActionHeal,
		ActorID:     entityID,
		TargetID:    entityID,
		HealAmount:  amount,
		Success:     true,
		Description: fmt.Sprintf("%s heals %d HP", entity.Name, amount),
	}), nil
}

// markActed is the resolver's one direct write to entity fields.
func (r *Resolver) markActed(entityID string, dashed bool) {
	entity, ok := r.e.entity(entityID)
	if !ok {
		return
	}
	entity.HasActed = true
	if dashed {
		entity.HasDashed = true
	}
	r.e.put(entity)
}

func parseDamage(expression string) (dice.Expression, error) {
	expr, err := dice.ParseExpression(expression)
	if err != nil {
		if errors.Is(err, dice.ErrInvalidExpression) {
			return dice.Expression{}, apperrors.WrapWithMetadata(apperrors.CodeDiceInvalidExpression,
				fmt.Sprintf("invalid dice expression %q", expression),
				map[string]string{"Expression": expression}, err)
		}
		return dice.Expression{}, err
	}
	return expr, nil
}
