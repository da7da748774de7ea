package combat

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/louisbranch/battlegrid/internal/core/dice"
	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
)

// InitiativeModifier is the flat bonus added to every initiative roll.
const InitiativeModifier = 2

// Turns owns the initiative order, the current turn, the round counter and
// whether combat is active.
type Turns struct {
	e *Engine
}

// TurnResult reports what a NextTurn call changed.
type TurnResult struct {
	PreviousID string
	CurrentID  string
	Round      int
	Wrapped    bool
	Expired    []StatusEffect
}

// StartCombat rolls initiative for every entity, orders them from highest to
// lowest (ties keep insertion order) and starts round 1. It returns false and
// changes nothing when there are no entities.
func (t *Turns) StartCombat() bool {
	s := &t.e.state
	if len(s.Order) == 0 {
		return false
	}

	order := make([]TurnEntry, 0, len(s.Order))
	for _, entityID := range s.Order {
		entity := s.Entities[entityID]
		entity.Stats.Initiative = dice.RollD20(t.e.dice, false, false).Value + InitiativeModifier
		entity.HasMoved = false
		entity.HasActed = false
		entity.HasDashed = false
		s.Entities[entityID] = entity
		order = append(order, TurnEntry{EntityID: entityID, Initiative: entity.Stats.Initiative})
	}
	sortTurnOrder(order)

	s.TurnOrder = order
	s.Round = 1
	s.CurrentTurnIndex = 0
	s.IsActive = true

	t.e.emit(Event{Kind: EventCombatStarted, Round: 1})
	t.beginTurn(order[0].EntityID)
	return true
}

// EndCombat deactivates combat and clears turn flags and selection. The turn
// order and round are kept until the next StartCombat.
func (t *Turns) EndCombat() {
	s := &t.e.state
	s.IsActive = false
	for entityID, entity := range s.Entities {
		entity.HasMoved = false
		entity.HasActed = false
		entity.HasDashed = false
		entity.IsSelected = false
		s.Entities[entityID] = entity
		t.e.adapter.ClearIndicators(entityID)
		t.e.adapter.UpdateToken(entity.Clone())
	}
	s.SelectedEntityID = ""
	t.e.emit(Event{Kind: EventCombatEnded, Round: s.Round})
}

// NextTurn ends the current entity's turn and starts the next one. Wrapping
// past the last slot starts a new round. It is a no-op while inactive.
func (t *Turns) NextTurn() TurnResult {
	s := &t.e.state
	if !s.IsActive || len(s.TurnOrder) == 0 {
		return TurnResult{}
	}

	previousID := s.TurnOrder[s.CurrentTurnIndex].EntityID
	expired := t.e.Tracker.ProcessTurnEnd(previousID)
	t.e.adapter.ClearIndicators(previousID)
	if entity, ok := s.Entities[previousID]; ok {
		resetTurnFlags(&entity)
		s.Entities[previousID] = entity
		t.e.adapter.UpdateToken(entity.Clone())
	}
	s.TurnOrder[s.CurrentTurnIndex].HasGone = true

	wrapped := false
	s.CurrentTurnIndex++
	if s.CurrentTurnIndex >= len(s.TurnOrder) {
		s.CurrentTurnIndex = 0
		s.Round++
		wrapped = true
		for i := range s.TurnOrder {
			s.TurnOrder[i].HasGone = false
		}
	}

	currentID := s.TurnOrder[s.CurrentTurnIndex].EntityID
	t.beginTurn(currentID)
	return TurnResult{
		PreviousID: previousID,
		CurrentID:  currentID,
		Round:      s.Round,
		Wrapped:    wrapped,
		Expired:    expired,
	}
}

// beginTurn resets the flags of the entity whose turn starts, ends its dodge
// and selects it.
func (t *Turns) beginTurn(entityID string) {
	s := &t.e.state
	entity, ok := s.Entities[entityID]
	if !ok {
		return
	}
	resetTurnFlags(&entity)
	entity.Conditions = removeCondition(entity.Conditions, ConditionDodging)
	s.Entities[entityID] = entity
	if err := t.e.Registry.Select(entityID); err != nil {
		return
	}
	t.e.adapter.UpdateToken(s.Entities[entityID].Clone())
	t.e.emit(Event{Kind: EventTurnStarted, EntityID: entityID, Round: s.Round})
}

func resetTurnFlags(entity *Entity) {
	entity.HasMoved = false
	entity.HasActed = false
	entity.HasDashed = false
}

// SetInitiative overwrites an entity's initiative and re-sorts the order.
// The entity whose turn it is stays current.
func (t *Turns) SetInitiative(entityID string, value int) error {
	s := &t.e.state
	entity, ok := s.Entities[entityID]
	if !ok {
		return entityNotFound(entityID)
	}
	entity.Stats.Initiative = value
	s.Entities[entityID] = entity
	t.resort()
	t.e.emit(Event{Kind: EventInitiativeChanged, EntityID: entityID, Round: s.Round, Amount: value})
	return nil
}

// RollInitiative rerolls one entity's initiative and re-sorts the order.
func (t *Turns) RollInitiative(entityID string) (int, error) {
	if _, ok := t.e.state.Entities[entityID]; !ok {
		return 0, entityNotFound(entityID)
	}
	value := dice.RollD20(t.e.dice, false, false).Value + InitiativeModifier
	if err := t.SetInitiative(entityID, value); err != nil {
		return 0, err
	}
	return value, nil
}

// SwapInitiative swaps two slots of the turn order as a manual override. The
// current index follows the entity it pointed at.
func (t *Turns) SwapInitiative(i, j int) error {
	s := &t.e.state
	for _, index := range []int{i, j} {
		if index < 0 || index >= len(s.TurnOrder) {
			return apperrors.WithMetadata(apperrors.CodeTurnSlotOutOfRange,
				fmt.Sprintf("turn slot %d out of range [0,%d)", index, len(s.TurnOrder)),
				map[string]string{"Index": strconv.Itoa(index)})
		}
	}
	if i == j {
		return nil
	}
	s.TurnOrder[i], s.TurnOrder[j] = s.TurnOrder[j], s.TurnOrder[i]
	switch s.CurrentTurnIndex {
	case i:
		s.CurrentTurnIndex = j
	case j:
		s.CurrentTurnIndex = i
	}
	t.e.emit(Event{Kind: EventInitiativeChanged, Round: s.Round})
	return nil
}

// Current returns the entity whose turn it is.
func (t *Turns) Current() (Entity, bool) {
	s := t.e.state
	if !s.IsActive || len(s.TurnOrder) == 0 {
		return Entity{}, false
	}
	return t.e.Registry.Get(s.TurnOrder[s.CurrentTurnIndex].EntityID)
}

// Order returns a copy of the turn order.
func (t *Turns) Order() []TurnEntry {
	return append([]TurnEntry(nil), t.e.state.TurnOrder...)
}

// Round returns the current round.
func (t *Turns) Round() int { return t.e.state.Round }

// Active reports whether combat is running.
func (t *Turns) Active() bool { return t.e.state.IsActive }

// resort refreshes entry initiatives from the entities and re-sorts the order,
// keeping the current entity current.
func (t *Turns) resort() {
	s := &t.e.state
	if len(s.TurnOrder) == 0 {
		return
	}
	currentID := s.TurnOrder[s.CurrentTurnIndex].EntityID
	for i, entry := range s.TurnOrder {
		s.TurnOrder[i].Initiative = s.Entities[entry.EntityID].Stats.Initiative
	}
	sortTurnOrder(s.TurnOrder)
	for i, entry := range s.TurnOrder {
		if entry.EntityID == currentID {
			s.CurrentTurnIndex = i
			break
		}
	}
}

func sortTurnOrder(order []TurnEntry) {
	sort.SliceStable(order, func(a, b int) bool {
		return order[a].Initiative > order[b].Initiative
	})
}
