package combat

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
)

// Tracker owns timed status effects. Each effect name exists at most once per
// entity and is mirrored into the entity's conditions.
type Tracker struct {
	e *Engine
}

var statusPresets = []StatusEffect{
	{Name: "poisoned", Description: "Disadvantage on attack rolls and ability checks", Duration: 10, Color: "#8BC34A"},
	{Name: "paralyzed", Description: "Incapacitated and cannot move or speak", Duration: 5, Color: "#9C27B0"},
	{Name: "stunned", Description: "Incapacitated and cannot move", Duration: 1, Color: "#FF9800"},
	{Name: "unconscious", Description: "Incapacitated and unaware of surroundings", Duration: -1, Color: "#607D8B"},
	{Name: "bleeding", Description: "Takes 1d4 damage at start of turn", Duration: 5, Color: "#F44336"},
	{Name: "blessed", Description: "+1d4 to attack rolls and saving throws", Duration: 10, Color: "#FFD700"},
	{Name: "hasted", Description: "Additional action and movement", Duration: 10, Color: "#00BCD4"},
	{Name: "frightened", Description: "Disadvantage on ability checks and attacks", Duration: 3, Color: "#795548"},
}

// StatusPresets returns the preset catalog.
func StatusPresets() []StatusEffect {
	return append([]StatusEffect(nil), statusPresets...)
}

// StatusPreset looks up a preset by name, ignoring case.
func StatusPreset(name string) (StatusEffect, bool) {
	for _, preset := range statusPresets {
		if strings.EqualFold(preset.Name, strings.TrimSpace(name)) {
			return preset, true
		}
	}
	return StatusEffect{}, false
}

// Add attaches effect to an entity, replacing any effect with the same name.
// Durations do not stack. A missing id is generated.
func (t *Tracker) Add(entityID string, effect StatusEffect) (StatusEffect, error) {
	effect.Name = strings.TrimSpace(effect.Name)
	if effect.Name == "" {
		return StatusEffect{}, apperrors.New(apperrors.CodeStatusNameEmpty, "status effect name is required")
	}
	if effect.Duration < -1 {
		effect.Duration = -1
	}
	entity, ok := t.e.entity(entityID)
	if !ok {
		return StatusEffect{}, entityNotFound(entityID)
	}
	if effect.ID == "" {
		effectID, err := t.e.newID()
		if err != nil {
			return StatusEffect{}, err
		}
		effect.ID = effectID
	}

	list := t.e.effects[entityID]
	replaced := false
	for i, existing := range list {
		if strings.EqualFold(existing.Name, effect.Name) {
			list[i] = effect
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, effect)
	}
	t.e.effects[entityID] = list

	if !entity.HasCondition(effect.Name) {
		entity = entity.Clone()
		entity.Conditions = append(entity.Conditions, effect.Name)
		t.e.put(entity)
		t.e.adapter.UpdateToken(entity.Clone())
	}
	added := effect
	t.e.emit(Event{Kind: EventStatusAdded, EntityID: entityID, Round: t.e.state.Round, Effect: &added})
	return effect, nil
}

// AddPreset attaches a preset effect. A duration of zero keeps the preset
// default.
func (t *Tracker) AddPreset(entityID, name string, duration int) (StatusEffect, error) {
	preset, ok := StatusPreset(name)
	if !ok {
		return StatusEffect{}, apperrors.WithMetadata(apperrors.CodeStatusPresetUnknown,
			fmt.Sprintf("unknown status preset %q", name), map[string]string{"Name": name})
	}
	if duration != 0 {
		preset.Duration = duration
	}
	return t.Add(entityID, preset)
}

// Remove detaches the named effect and its condition. A condition added
// without a tracked effect is removed too. Absent names are a no-op.
func (t *Tracker) Remove(entityID, name string) error {
	entity, ok := t.e.entity(entityID)
	if !ok {
		return entityNotFound(entityID)
	}
	removed, ok := t.drop(entityID, name)
	if !ok {
		i := conditionIndex(entity.Conditions, name)
		if i < 0 {
			return nil
		}
		removed = StatusEffect{Name: entity.Conditions[i]}
	}
	if entity.HasCondition(removed.Name) {
		entity = entity.Clone()
		entity.Conditions = removeCondition(entity.Conditions, removed.Name)
		t.e.put(entity)
		t.e.adapter.UpdateToken(entity.Clone())
	}
	t.e.emit(Event{Kind: EventStatusRemoved, EntityID: entityID, Round: t.e.state.Round, Effect: &removed})
	return nil
}

// ProcessTurnEnd ticks every timed effect on an entity down by one round and
// removes those reaching zero. Permanent effects never tick.
func (t *Tracker) ProcessTurnEnd(entityID string) []StatusEffect {
	list := t.e.effects[entityID]
	if len(list) == 0 {
		return nil
	}

	var expired []StatusEffect
	kept := make([]StatusEffect, 0, len(list))
	for _, effect := range list {
		if effect.Duration > 0 {
			effect.Duration--
			if effect.Duration == 0 {
				expired = append(expired, effect)
				continue
			}
		}
		kept = append(kept, effect)
	}
	if len(kept) == 0 {
		delete(t.e.effects, entityID)
	} else {
		t.e.effects[entityID] = kept
	}

	if len(expired) > 0 {
		if entity, ok := t.e.entity(entityID); ok {
			entity = entity.Clone()
			for _, effect := range expired {
				entity.Conditions = removeCondition(entity.Conditions, effect.Name)
			}
			t.e.put(entity)
			t.e.adapter.UpdateToken(entity.Clone())
		}
		for _, effect := range expired {
			effect := effect
			t.e.emit(Event{Kind: EventStatusExpired, EntityID: entityID, Round: t.e.state.Round, Effect: &effect})
		}
	}
	return expired
}

// Effects returns the effects on an entity.
func (t *Tracker) Effects(entityID string) []StatusEffect {
	return append([]StatusEffect(nil), t.e.effects[entityID]...)
}

// drop removes the named effect without touching conditions.
func (t *Tracker) drop(entityID, name string) (StatusEffect, bool) {
	list := t.e.effects[entityID]
	for i, effect := range list {
		if strings.EqualFold(effect.Name, strings.TrimSpace(name)) {
			list = append(list[:i], list[i+1:]...)
			if len(list) == 0 {
				delete(t.e.effects, entityID)
			} else {
				t.e.effects[entityID] = list
			}
			return effect, true
		}
	}
	return StatusEffect{}, false
}
