package combat

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
)

// Condition names the engine manages itself.
const (
	ConditionUnconscious = "unconscious"
	ConditionDodging     = "dodging"
)

// Registry owns the entity set and every entity field.
type Registry struct {
	e *Engine
}

// Add registers a new entity and returns it. While combat is active the
// entity joins the turn order with its spec initiative.
func (r *Registry) Add(spec EntitySpec) (Entity, error) {
	spec, err := spec.normalize()
	if err != nil {
		return Entity{}, err
	}
	entityID, err := r.e.newID()
	if err != nil {
		return Entity{}, err
	}

	entity := Entity{
		ID:           entityID,
		Name:         spec.Name,
		Type:         spec.Type,
		Size:         spec.Size,
		Stats:        spec.Stats,
		Position:     spec.Position.Clone(),
		IsFlying:     spec.IsFlying,
		FlyingHeight: spec.FlyingHeight,
	}
	if entity.IsFlying {
		height := entity.FlyingHeight
		entity.Position.Y = &height
	}

	s := &r.e.state
	s.Entities[entityID] = entity
	s.Order = append(s.Order, entityID)
	if s.IsActive {
		s.TurnOrder = append(s.TurnOrder, TurnEntry{EntityID: entityID, Initiative: entity.Stats.Initiative})
		r.e.Turns.resort()
	}

	r.e.adapter.PlaceToken(entity.Clone())
	r.e.emit(Event{Kind: EventEntityAdded, EntityID: entityID, Round: s.Round})
	return entity.Clone(), nil
}

// Remove deletes an entity and its turn slot. When the removed slot precedes
// the current one the index shifts down so the current entity keeps its turn.
// When the current entity itself is removed, the entity sliding into its slot
// starts its turn. Removing the last entity of an active encounter ends it.
func (r *Registry) Remove(entityID string) error {
	s := &r.e.state
	if _, ok := s.Entities[entityID]; !ok {
		return entityNotFound(entityID)
	}

	slot := -1
	for i, entry := range s.TurnOrder {
		if entry.EntityID == entityID {
			slot = i
			break
		}
	}
	wasCurrent := s.IsActive && slot >= 0 && slot == s.CurrentTurnIndex
	if slot >= 0 {
		s.TurnOrder = append(s.TurnOrder[:slot], s.TurnOrder[slot+1:]...)
		if slot < s.CurrentTurnIndex {
			s.CurrentTurnIndex--
		}
		if s.CurrentTurnIndex >= len(s.TurnOrder) {
			s.CurrentTurnIndex = 0
		}
	}

	delete(s.Entities, entityID)
	for i, id := range s.Order {
		if id == entityID {
			s.Order = append(s.Order[:i], s.Order[i+1:]...)
			break
		}
	}
	delete(r.e.effects, entityID)
	if s.SelectedEntityID == entityID {
		s.SelectedEntityID = ""
	}

	r.e.adapter.ClearIndicators(entityID)
	r.e.adapter.RemoveToken(entityID)
	r.e.emit(Event{Kind: EventEntityRemoved, EntityID: entityID, Round: s.Round})

	if s.IsActive && len(s.TurnOrder) == 0 {
		r.e.Turns.EndCombat()
		return nil
	}
	if wasCurrent {
		r.e.Turns.beginTurn(s.TurnOrder[s.CurrentTurnIndex].EntityID)
	}
	return nil
}

// Get returns a copy of an entity.
func (r *Registry) Get(entityID string) (Entity, bool) {
	entity, ok := r.e.entity(entityID)
	if !ok {
		return Entity{}, false
	}
	return entity.Clone(), true
}

// List returns every entity in insertion order.
func (r *Registry) List() []Entity {
	return r.e.state.EntityList()
}

// Move relocates an entity. While combat is active a move longer than the
// entity's speed (doubled after a dash) is refused with false and nothing
// changes; a successful move marks HasMoved.
func (r *Registry) Move(entityID string, to Position) (bool, error) {
	entity, ok := r.e.entity(entityID)
	if !ok {
		return false, entityNotFound(entityID)
	}
	if r.e.state.IsActive && DistanceFeet(entity.Position, to) > float64(movementAllowance(entity)) {
		return false, nil
	}

	to = to.Clone()
	if to.Y == nil && entity.Position.Y != nil {
		y := *entity.Position.Y
		to.Y = &y
	}
	entity.Position = to
	if r.e.state.IsActive {
		entity.HasMoved = true
	}
	r.e.put(entity)

	r.e.adapter.MoveToken(entityID, to.Clone())
	r.e.emit(Event{Kind: EventEntityMoved, EntityID: entityID, Round: r.e.state.Round})
	return true, nil
}

func movementAllowance(entity Entity) int {
	if entity.HasDashed {
		return entity.Stats.Speed * 2
	}
	return entity.Stats.Speed
}

// ApplyDamage lowers current HP, never below zero. An entity at zero HP is
// unconscious.
func (r *Registry) ApplyDamage(entityID string, amount int) (Entity, error) {
	if amount < 0 {
		return Entity{}, negativeAmount(amount)
	}
	entity, ok := r.e.entity(entityID)
	if !ok {
		return Entity{}, entityNotFound(entityID)
	}
	r.applyDamage(&entity, amount)
	return entity.Clone(), nil
}

func (r *Registry) applyDamage(entity *Entity, amount int) {
	entity.Stats.CurrentHP -= amount
	if entity.Stats.CurrentHP < 0 {
		entity.Stats.CurrentHP = 0
	}
	if entity.Stats.CurrentHP == 0 && !entity.HasCondition(ConditionUnconscious) {
		entity.Conditions = append(entity.Conditions, ConditionUnconscious)
	}
	r.e.put(*entity)

	r.e.adapter.UpdateToken(entity.Clone())
	r.e.emit(Event{Kind: EventEntityDamaged, EntityID: entity.ID, Round: r.e.state.Round, Amount: amount})
}

// ApplyHealing raises current HP, never above max HP. An entity above zero HP
// is no longer unconscious.
func (r *Registry) ApplyHealing(entityID string, amount int) (Entity, error) {
	if amount < 0 {
		return Entity{}, negativeAmount(amount)
	}
	entity, ok := r.e.entity(entityID)
	if !ok {
		return Entity{}, entityNotFound(entityID)
	}
	r.applyHealing(&entity, amount)
	return entity.Clone(), nil
}

func (r *Registry) applyHealing(entity *Entity, amount int) {
	entity.Stats.CurrentHP += amount
	if entity.Stats.CurrentHP > entity.Stats.MaxHP {
		entity.Stats.CurrentHP = entity.Stats.MaxHP
	}
	if entity.Stats.CurrentHP > 0 {
		entity.Conditions = removeCondition(entity.Conditions, ConditionUnconscious)
		r.e.Tracker.drop(entity.ID, ConditionUnconscious)
	}
	r.e.put(*entity)

	r.e.adapter.UpdateToken(entity.Clone())
	r.e.emit(Event{Kind: EventEntityHealed, EntityID: entity.ID, Round: r.e.state.Round, Amount: amount})
}

// Rename changes an entity's display name.
func (r *Registry) Rename(entityID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.CodeEntityNameEmpty, "entity name is required")
	}
	return r.update(entityID, func(entity *Entity) error {
		entity.Name = name
		return nil
	})
}

// UpdateStats replaces an entity's stats. HP changes toggle unconscious the
// same way damage and healing do, and an initiative change re-sorts an active
// turn order.
func (r *Registry) UpdateStats(entityID string, stats Stats) error {
	if err := stats.Validate(); err != nil {
		return err
	}
	entity, ok := r.e.entity(entityID)
	if !ok {
		return entityNotFound(entityID)
	}
	initiativeChanged := entity.Stats.Initiative != stats.Initiative

	entity.Stats = stats
	if stats.CurrentHP == 0 && !entity.HasCondition(ConditionUnconscious) {
		entity.Conditions = append(entity.Conditions, ConditionUnconscious)
	}
	if stats.CurrentHP > 0 {
		entity.Conditions = removeCondition(entity.Conditions, ConditionUnconscious)
		r.e.Tracker.drop(entityID, ConditionUnconscious)
	}
	r.e.put(entity)

	r.e.adapter.UpdateToken(entity.Clone())
	r.e.emit(Event{Kind: EventEntityUpdated, EntityID: entityID, Round: r.e.state.Round})
	if initiativeChanged {
		return r.e.Turns.SetInitiative(entityID, stats.Initiative)
	}
	return nil
}

// SetFlying lifts an entity to heightFeet above the grid.
func (r *Registry) SetFlying(entityID string, heightFeet float64) error {
	if heightFeet < 0 {
		return apperrors.WithMetadata(apperrors.CodeEntityInvalidStats, "flying height must not be negative",
			map[string]string{"Reason": "flying height must not be negative"})
	}
	return r.update(entityID, func(entity *Entity) error {
		entity.IsFlying = true
		entity.FlyingHeight = heightFeet
		height := heightFeet
		entity.Position.Y = &height
		return nil
	})
}

// Land returns a flying entity to the ground.
func (r *Registry) Land(entityID string) error {
	return r.update(entityID, func(entity *Entity) error {
		entity.IsFlying = false
		entity.FlyingHeight = 0
		entity.Position.Y = nil
		return nil
	})
}

// Select marks one entity as selected. An empty id clears the selection.
func (r *Registry) Select(entityID string) error {
	s := &r.e.state
	if entityID != "" {
		if _, ok := s.Entities[entityID]; !ok {
			return entityNotFound(entityID)
		}
	}
	for id, entity := range s.Entities {
		selected := id == entityID
		if entity.IsSelected != selected {
			entity.IsSelected = selected
			s.Entities[id] = entity
			r.e.adapter.UpdateToken(entity.Clone())
		}
	}
	s.SelectedEntityID = entityID
	return nil
}

// AddCondition adds name unless the entity already has it.
func (r *Registry) AddCondition(entityID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.CodeStatusNameEmpty, "condition name is required")
	}
	return r.update(entityID, func(entity *Entity) error {
		if !entity.HasCondition(name) {
			entity.Conditions = append(entity.Conditions, name)
		}
		return nil
	})
}

// StackCondition adds another instance of name. Repeats get a counter suffix,
// so a second "poisoned" is stored as "poisoned (2)". It returns the stored
// name.
func (r *Registry) StackCondition(entityID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.New(apperrors.CodeStatusNameEmpty, "condition name is required")
	}
	var stored string
	err := r.update(entityID, func(entity *Entity) error {
		stored = name
		for n := 2; entity.HasCondition(stored); n++ {
			stored = name + " (" + strconv.Itoa(n) + ")"
		}
		entity.Conditions = append(entity.Conditions, stored)
		return nil
	})
	return stored, err
}

// RemoveCondition removes name and any tracked effect of the same name.
// Removing an absent condition is a no-op.
func (r *Registry) RemoveCondition(entityID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.CodeStatusNameEmpty, "condition name is required")
	}
	if err := r.update(entityID, func(entity *Entity) error {
		entity.Conditions = removeCondition(entity.Conditions, name)
		return nil
	}); err != nil {
		return err
	}
	r.e.Tracker.drop(entityID, name)
	return nil
}

func (r *Registry) update(entityID string, mutate func(*Entity) error) error {
	entity, ok := r.e.entity(entityID)
	if !ok {
		return entityNotFound(entityID)
	}
	entity = entity.Clone()
	if err := mutate(&entity); err != nil {
		return err
	}
	r.e.put(entity)

	r.e.adapter.UpdateToken(entity.Clone())
	r.e.emit(Event{Kind: EventEntityUpdated, EntityID: entityID, Round: r.e.state.Round})
	return nil
}

func removeCondition(conditions []string, name string) []string {
	i := conditionIndex(conditions, name)
	if i < 0 {
		return conditions
	}
	out := make([]string, 0, len(conditions)-1)
	out = append(out, conditions[:i]...)
	return append(out, conditions[i+1:]...)
}

