package combat

// EventKind names an engine notification.
type EventKind string

const (
	EventEntityAdded       EventKind = "entity_added"
	EventEntityRemoved     EventKind = "entity_removed"
	EventEntityUpdated     EventKind = "entity_updated"
	EventEntityMoved       EventKind = "entity_moved"
	EventEntityDamaged     EventKind = "entity_damaged"
	EventEntityHealed      EventKind = "entity_healed"
	EventCombatStarted     EventKind = "combat_started"
	EventCombatEnded       EventKind = "combat_ended"
	EventTurnStarted       EventKind = "turn_started"
	EventInitiativeChanged EventKind = "initiative_changed"
	EventActionResolved    EventKind = "action_resolved"
	EventStatusAdded       EventKind = "status_added"
	EventStatusRemoved     EventKind = "status_removed"
	EventStatusExpired     EventKind = "status_expired"
	EventAreaCreated       EventKind = "area_created"
	EventAreaExpired       EventKind = "area_expired"
	EventEncounterLoaded   EventKind = "encounter_loaded"
)

// Event is delivered to observers after a mutation completes.
type Event struct {
	Kind     EventKind
	EntityID string
	Round    int
	Amount   int
	Action   *Action
	Effect   *StatusEffect
	Area     *SpellArea
}

// Observer receives engine events. Observers run synchronously on the
// caller's goroutine. They may read engine state but must not mutate it.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(Event)

// Notify calls f(event).
func (f ObserverFunc) Notify(event Event) {
	f(event)
}

// NopObserver discards events.
type NopObserver struct{}

// Notify implements Observer.
func (NopObserver) Notify(Event) {}
