package combat

import (
	"fmt"
	"time"

	"github.com/louisbranch/battlegrid/internal/core/dice"
	"github.com/louisbranch/battlegrid/internal/platform/id"
)

// Config holds the collaborators of an Engine. Zero values get defaults.
type Config struct {
	// Dice supplies every roll. Defaults to a source seeded with 1.
	Dice dice.Source
	// Adapter receives presentation commands. Defaults to NopAdapter.
	Adapter SceneAdapter
	// Observers are notified after each mutation.
	Observers []Observer
	// Clock stamps actions and area expiry. Defaults to time.Now.
	Clock func() time.Time
	// IDs generates entity, action, effect and area ids. Defaults to id.NewID.
	IDs id.Generator
}

// Engine is one encounter's state plus the components that mutate it.
type Engine struct {
	state   State
	effects map[string][]StatusEffect
	history []Action
	areas   []SpellArea

	dice      dice.Source
	adapter   SceneAdapter
	observers []Observer
	clock     func() time.Time
	ids       id.Generator

	Registry *Registry
	Turns    *Turns
	Resolver *Resolver
	Tracker  *Tracker
}

// New builds an empty engine.
func New(cfg Config) *Engine {
	if cfg.Dice == nil {
		cfg.Dice = dice.NewSource(1)
	}
	if cfg.Adapter == nil {
		cfg.Adapter = NopAdapter{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.IDs == nil {
		cfg.IDs = id.NewID
	}

	e := &Engine{
		state:     NewState(),
		effects:   map[string][]StatusEffect{},
		dice:      cfg.Dice,
		adapter:   cfg.Adapter,
		observers: append([]Observer(nil), cfg.Observers...),
		clock:     cfg.Clock,
		ids:       cfg.IDs,
	}
	e.Registry = &Registry{e: e}
	e.Turns = &Turns{e: e}
	e.Resolver = &Resolver{e: e}
	e.Tracker = &Tracker{e: e}
	return e
}

// Subscribe adds an observer.
func (e *Engine) Subscribe(o Observer) {
	if o != nil {
		e.observers = append(e.observers, o)
	}
}

// State returns a deep copy of the encounter state.
func (e *Engine) State() State {
	return e.state.Clone()
}

// History returns a copy of the action log, oldest first.
func (e *Engine) History() []Action {
	out := make([]Action, len(e.history))
	for i, a := range e.history {
		out[i] = a.Clone()
	}
	return out
}

// StatusEffects returns a copy of every tracked effect keyed by entity id.
func (e *Engine) StatusEffects() map[string][]StatusEffect {
	out := make(map[string][]StatusEffect, len(e.effects))
	for entityID, effects := range e.effects {
		if len(effects) == 0 {
			continue
		}
		out[entityID] = append([]StatusEffect(nil), effects...)
	}
	return out
}

// Areas returns the spell areas that have not been pruned.
func (e *Engine) Areas() []SpellArea {
	return append([]SpellArea(nil), e.areas...)
}

// PruneAreas removes areas expired at now and reports them.
func (e *Engine) PruneAreas(now time.Time) []SpellArea {
	var expired []SpellArea
	kept := e.areas[:0]
	for _, area := range e.areas {
		if area.Expired(now) {
			expired = append(expired, area)
			continue
		}
		kept = append(kept, area)
	}
	e.areas = kept
	for _, area := range expired {
		area := area
		e.adapter.RemoveArea(area.ID)
		e.emit(Event{Kind: EventAreaExpired, Area: &area})
	}
	return expired
}

// Load replaces the engine contents with a restored encounter and places a
// token for every entity. The caller is expected to have validated the data.
func (e *Engine) Load(state State, history []Action, effects map[string][]StatusEffect) error {
	if err := state.Validate(); err != nil {
		return err
	}
	for _, entity := range e.state.EntityList() {
		e.adapter.RemoveToken(entity.ID)
	}
	for _, area := range e.areas {
		e.adapter.RemoveArea(area.ID)
	}

	e.state = state.Clone()
	if e.state.Entities == nil {
		e.state.Entities = map[string]Entity{}
	}
	e.history = make([]Action, len(history))
	for i, a := range history {
		e.history[i] = a.Clone()
	}
	e.effects = map[string][]StatusEffect{}
	for entityID, list := range effects {
		if _, ok := e.state.Entities[entityID]; ok && len(list) > 0 {
			e.effects[entityID] = append([]StatusEffect(nil), list...)
		}
	}
	e.areas = nil

	for _, entity := range e.state.EntityList() {
		e.adapter.PlaceToken(entity)
	}
	e.emit(Event{Kind: EventEncounterLoaded, Round: e.state.Round})
	return nil
}

// Validate verifies the structural invariants of a state. Failures carry
// SNAPSHOT_MALFORMED since only restored states can break them.
func (s State) Validate() error {
	for entityID, entity := range s.Entities {
		if entity.ID != entityID {
			return malformed(fmt.Sprintf("entity keyed %q has id %q", entityID, entity.ID))
		}
		if _, err := entity.spec().normalize(); err != nil {
			return malformed(fmt.Sprintf("entity %q: %v", entityID, err))
		}
	}
	if len(s.Order) != len(s.Entities) {
		return malformed(fmt.Sprintf("entity order lists %d ids for %d entities", len(s.Order), len(s.Entities)))
	}
	for _, entityID := range s.Order {
		if _, ok := s.Entities[entityID]; !ok {
			return malformed(fmt.Sprintf("entity order references unknown id %q", entityID))
		}
	}
	seen := make(map[string]bool, len(s.TurnOrder))
	for _, entry := range s.TurnOrder {
		if _, ok := s.Entities[entry.EntityID]; !ok {
			return malformed(fmt.Sprintf("turn order references unknown id %q", entry.EntityID))
		}
		if seen[entry.EntityID] {
			return malformed(fmt.Sprintf("turn order lists %q twice", entry.EntityID))
		}
		seen[entry.EntityID] = true
	}
	if s.IsActive {
		if len(s.TurnOrder) != len(s.Entities) {
			return malformed("active turn order must list every entity")
		}
		if s.CurrentTurnIndex < 0 || s.CurrentTurnIndex >= len(s.TurnOrder) {
			return malformed(fmt.Sprintf("current turn index %d out of range", s.CurrentTurnIndex))
		}
	}
	if s.Round < 1 {
		return malformed("round must be at least 1")
	}
	if s.SelectedEntityID != "" {
		if _, ok := s.Entities[s.SelectedEntityID]; !ok {
			return malformed(fmt.Sprintf("selection references unknown id %q", s.SelectedEntityID))
		}
	}
	return nil
}

func (e *Engine) emit(event Event) {
	for _, o := range e.observers {
		o.Notify(event)
	}
}

func (e *Engine) now() time.Time {
	return time.UnixMilli(e.clock().UnixMilli()).UTC()
}

func (e *Engine) newID() (string, error) {
	value, err := e.ids()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return value, nil
}

// record stamps an action, appends it to the log and notifies observers.
// The action id must already be set so failures happen before any mutation.
func (e *Engine) record(action Action) Action {
	action.Timestamp = e.now()
	e.history = append(e.history, action.Clone())
	notified := action.Clone()
	e.emit(Event{Kind: EventActionResolved, EntityID: action.ActorID, Round: e.state.Round, Action: &notified})
	return action
}

func (e *Engine) entity(entityID string) (Entity, bool) {
	entity, ok := e.state.Entities[entityID]
	return entity, ok
}

func (e *Engine) put(entity Entity) {
	e.state.Entities[entity.ID] = entity
}
