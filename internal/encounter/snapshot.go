package encounter

import (
	"time"

	"github.com/louisbranch/battlegrid/internal/combat"
)

// Snapshot captures an engine state, its action log and its status effects.
func Snapshot(state combat.State, history []combat.Action, effects map[string][]combat.StatusEffect, meta Meta, now time.Time) SavedEncounter {
	saved := SavedEncounter{
		ID:            meta.ID,
		Name:          meta.Name,
		Description:   meta.Description,
		Timestamp:     now.UnixMilli(),
		Version:       FormatVersion,
		ActionHistory: make([]Action, 0, len(history)),
		CombatState: CombatState{
			Entities:         make([]Entity, 0, len(state.Order)),
			TurnOrder:        make([]TurnEntry, 0, len(state.TurnOrder)),
			CurrentTurnIndex: state.CurrentTurnIndex,
			Round:            state.Round,
			IsActive:         state.IsActive,
			SelectedEntityID: state.SelectedEntityID,
		},
	}

	for _, entity := range state.EntityList() {
		saved.CombatState.Entities = append(saved.CombatState.Entities, fromEntity(entity))
	}
	for _, entry := range state.TurnOrder {
		saved.CombatState.TurnOrder = append(saved.CombatState.TurnOrder, TurnEntry{
			EntityID:   entry.EntityID,
			Initiative: entry.Initiative,
			HasGone:    entry.HasGone,
		})
	}
	for _, action := range history {
		saved.ActionHistory = append(saved.ActionHistory, fromAction(action))
	}
	for entityID, list := range effects {
		if len(list) == 0 {
			continue
		}
		if saved.StatusEffects == nil {
			saved.StatusEffects = map[string][]StatusEffect{}
		}
		for _, effect := range list {
			saved.StatusEffects[entityID] = append(saved.StatusEffects[entityID], StatusEffect{
				ID:          effect.ID,
				Name:        effect.Name,
				Description: effect.Description,
				Duration:    effect.Duration,
				Color:       effect.Color,
			})
		}
	}
	return saved
}

// Restore converts s back into engine values. It does not validate; Decode
// and combat.Engine.Load do.
func (s SavedEncounter) Restore() (combat.State, []combat.Action, map[string][]combat.StatusEffect) {
	state := combat.NewState()
	state.CurrentTurnIndex = s.CombatState.CurrentTurnIndex
	state.Round = s.CombatState.Round
	state.IsActive = s.CombatState.IsActive
	state.SelectedEntityID = s.CombatState.SelectedEntityID

	for _, entity := range s.CombatState.Entities {
		restored := entity.toCombat()
		restored.IsSelected = restored.ID != "" && restored.ID == state.SelectedEntityID
		state.Entities[restored.ID] = restored
		state.Order = append(state.Order, restored.ID)
	}
	for _, entry := range s.CombatState.TurnOrder {
		state.TurnOrder = append(state.TurnOrder, combat.TurnEntry{
			EntityID:   entry.EntityID,
			Initiative: entry.Initiative,
			HasGone:    entry.HasGone,
		})
	}

	history := make([]combat.Action, 0, len(s.ActionHistory))
	for _, action := range s.ActionHistory {
		history = append(history, action.toCombat())
	}

	effects := make(map[string][]combat.StatusEffect, len(s.StatusEffects))
	for entityID, list := range s.StatusEffects {
		for _, effect := range list {
			effects[entityID] = append(effects[entityID], combat.StatusEffect{
				ID:          effect.ID,
				Name:        effect.Name,
				Description: effect.Description,
				Duration:    effect.Duration,
				Color:       effect.Color,
			})
		}
	}
	return state, history, effects
}

// Template returns a reusable copy of s: hit points are restored, turn flags
// and conditions cleared, and combat reset to an inactive round 1 with no
// history.
func (s SavedEncounter) Template() SavedEncounter {
	out := s
	out.ActionHistory = []Action{}
	out.StatusEffects = nil
	out.CombatState = CombatState{
		Entities:  make([]Entity, 0, len(s.CombatState.Entities)),
		TurnOrder: []TurnEntry{},
		Round:     1,
	}
	for _, entity := range s.CombatState.Entities {
		entity.Stats.CurrentHP = entity.Stats.MaxHP
		entity.HasMoved = false
		entity.HasActed = false
		entity.HasDashed = false
		entity.Conditions = []string{}
		entity.Position = entity.Position.clone()
		out.CombatState.Entities = append(out.CombatState.Entities, entity)
	}
	return out
}

func fromEntity(entity combat.Entity) Entity {
	conditions := append([]string{}, entity.Conditions...)
	return Entity{
		ID:           entity.ID,
		Name:         entity.Name,
		Type:         string(entity.Type),
		Size:         string(entity.Size),
		Stats:        Stats(entity.Stats),
		Position:     fromPosition(entity.Position),
		IsFlying:     entity.IsFlying,
		FlyingHeight: entity.FlyingHeight,
		HasMoved:     entity.HasMoved,
		HasActed:     entity.HasActed,
		HasDashed:    entity.HasDashed,
		Conditions:   conditions,
	}
}

func (e Entity) toCombat() combat.Entity {
	var conditions []string
	if len(e.Conditions) > 0 {
		conditions = append(conditions, e.Conditions...)
	}
	return combat.Entity{
		ID:           e.ID,
		Name:         e.Name,
		Type:         combat.EntityType(e.Type),
		Size:         combat.Size(e.Size),
		Stats:        combat.Stats(e.Stats),
		Position:     e.Position.toCombat(),
		IsFlying:     e.IsFlying,
		FlyingHeight: e.FlyingHeight,
		HasMoved:     e.HasMoved,
		HasActed:     e.HasActed,
		HasDashed:    e.HasDashed,
		Conditions:   conditions,
	}
}

func fromPosition(p combat.Position) Position {
	out := Position{X: p.X, Z: p.Z, GridX: p.GridX, GridZ: p.GridZ}
	if p.Y != nil {
		y := *p.Y
		out.Y = &y
	}
	return out
}

func (p Position) clone() Position {
	if p.Y != nil {
		y := *p.Y
		p.Y = &y
	}
	return p
}

func (p Position) toCombat() combat.Position {
	out := combat.Position{X: p.X, Z: p.Z, GridX: p.GridX, GridZ: p.GridZ}
	if p.Y != nil {
		y := *p.Y
		out.Y = &y
	}
	return out
}

func fromAction(action combat.Action) Action {
	out := Action{
		ID:          action.ID,
		Type:        string(action.Type),
		ActorID:     action.ActorID,
		TargetID:    action.TargetID,
		Weapon:      action.Weapon,
		Spell:       action.Spell,
		Damage:      action.Damage,
		DamageType:  string(action.DamageType),
		HealAmount:  action.HealAmount,
		Roll:        action.Roll,
		RollTotal:   action.RollTotal,
		Success:     action.Success,
		CriticalHit: action.CriticalHit,
		Timestamp:   action.Timestamp.UnixMilli(),
		Description: action.Description,
	}
	if action.TargetPosition != nil {
		p := fromPosition(*action.TargetPosition)
		out.TargetPosition = &p
	}
	return out
}

func (a Action) toCombat() combat.Action {
	out := combat.Action{
		ID:          a.ID,
		Type:        combat.ActionType(a.Type),
		ActorID:     a.ActorID,
		TargetID:    a.TargetID,
		Weapon:      a.Weapon,
		Spell:       a.Spell,
		Damage:      a.Damage,
		DamageType:  combat.DamageType(a.DamageType),
		HealAmount:  a.HealAmount,
		Roll:        a.Roll,
		RollTotal:   a.RollTotal,
		Success:     a.Success,
		CriticalHit: a.CriticalHit,
		Timestamp:   time.UnixMilli(a.Timestamp).UTC(),
		Description: a.Description,
	}
	if a.TargetPosition != nil {
		p := a.TargetPosition.toCombat()
		out.TargetPosition = &p
	}
	return out
}
