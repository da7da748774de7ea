// Package narration renders actions and engine events as localized text.
//
// The engine records its own English description on every action. A Narrator
// for the base locale returns that text untouched; other locales rebuild the
// sentence from the action fields through an x/text printer.
package narration

import (
	"log"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/platform/i18n/catalog"
)

// Names resolves entity ids, usually a *combat.Registry.
type Names interface {
	Get(entityID string) (combat.Entity, bool)
}

// Narrator renders text for one locale.
type Narrator struct {
	locale  string
	bundle  *catalog.Bundle
	printer *message.Printer
}

// New returns a narrator for the supported locale closest to locale.
func New(locale string) *Narrator {
	bundle := catalog.Default()
	matched := bundle.Match(locale)
	return &Narrator{
		locale:  matched,
		bundle:  bundle,
		printer: message.NewPrinter(language.MustParse(matched)),
	}
}

// Locale returns the locale the narrator resolved to.
func (n *Narrator) Locale() string {
	return n.locale
}

// Action describes a resolved action.
func (n *Narrator) Action(action combat.Action, names Names) string {
	if n.locale == catalog.BaseLocale && action.Description != "" {
		return action.Description
	}

	actor := name(names, action.ActorID)
	target := name(names, action.TargetID)
	switch action.Type {
	case combat.ActionAttack:
		switch {
		case action.Roll == 1:
			return n.say("attack.fumble", actor, target, action.Weapon)
		case !action.Success:
			ac := 0
			if entity, ok := lookup(names, action.TargetID); ok {
				ac = entity.Stats.ArmorClass
			}
			return n.say("attack.miss", actor, target, action.Weapon, action.RollTotal, ac)
		case action.CriticalHit:
			return n.say("attack.critical", actor, target, action.Weapon, action.Damage, n.damageType(action.DamageType))
		default:
			return n.say("attack.hit", actor, target, action.Weapon, action.Damage, n.damageType(action.DamageType))
		}
	case combat.ActionCastSpell:
		switch {
		case action.TargetID != "" && action.HealAmount > 0:
			return n.say("cast.heal", actor, action.Spell, target, action.HealAmount)
		case action.TargetID != "" && action.DamageType != "":
			return n.say("cast.damage", actor, action.Spell, target, action.Damage)
		default:
			return n.say("cast.plain", actor, action.Spell)
		}
	case combat.ActionMove:
		var to combat.Position
		if action.TargetPosition != nil {
			to = *action.TargetPosition
		}
		return n.say("move", actor, to.GridX, to.GridZ)
	case combat.ActionDash:
		return n.say("dash", actor)
	case combat.ActionDodge:
		return n.say("dodge", actor)
	case combat.ActionDamage:
		if action.DamageType != "" {
			return n.say("damage.typed", target, action.Damage, n.damageType(action.DamageType))
		}
		return n.say("damage", target, action.Damage)
	case combat.ActionHeal:
		return n.say("heal", target, action.HealAmount)
	}
	return action.Description
}

// Event describes an engine event. Events with nothing worth telling return
// an empty string.
func (n *Narrator) Event(event combat.Event, names Names) string {
	who := name(names, event.EntityID)
	switch event.Kind {
	case combat.EventEntityAdded:
		return n.say("entity.added", who)
	case combat.EventEntityRemoved:
		return n.say("entity.removed", who)
	case combat.EventEntityUpdated:
		return n.say("entity.updated", who)
	case combat.EventEntityMoved:
		entity, _ := lookup(names, event.EntityID)
		return n.say("entity.moved", who, entity.Position.GridX, entity.Position.GridZ)
	case combat.EventEntityDamaged:
		entity, ok := lookup(names, event.EntityID)
		if ok && entity.Stats.CurrentHP == 0 {
			return n.say("entity.down", who)
		}
		return n.say("entity.damaged", who, entity.Stats.CurrentHP, event.Amount)
	case combat.EventEntityHealed:
		entity, _ := lookup(names, event.EntityID)
		return n.say("entity.healed", who, entity.Stats.CurrentHP, event.Amount)
	case combat.EventCombatStarted:
		return n.say("combat.started")
	case combat.EventCombatEnded:
		return n.say("combat.ended")
	case combat.EventTurnStarted:
		return n.say("turn.started", event.Round, who)
	case combat.EventInitiativeChanged:
		return n.say("initiative.changed")
	case combat.EventActionResolved:
		if event.Action != nil {
			return n.Action(*event.Action, names)
		}
	case combat.EventStatusAdded, combat.EventStatusRemoved, combat.EventStatusExpired:
		if event.Effect == nil {
			return ""
		}
		key := map[combat.EventKind]string{
			combat.EventStatusAdded:   "status.added",
			combat.EventStatusRemoved: "status.removed",
			combat.EventStatusExpired: "status.expired",
		}[event.Kind]
		return n.say(key, who, n.term("status", event.Effect.Name))
	case combat.EventAreaCreated:
		if event.Area != nil {
			return n.say("area.created", event.Area.Spell, n.term("shape", string(event.Area.Shape)))
		}
	case combat.EventAreaExpired:
		if event.Area != nil {
			return n.say("area.expired", event.Area.Spell)
		}
	case combat.EventEncounterLoaded:
		return n.say("encounter.loaded")
	}
	return ""
}

func (n *Narrator) say(key string, args ...any) string {
	return n.printer.Sprintf("narration."+key, args...)
}

func (n *Narrator) damageType(t combat.DamageType) string {
	return n.term("damage", string(t))
}

// term translates a catalog word, falling back to the word itself.
func (n *Narrator) term(group, word string) string {
	if value, ok := n.bundle.Message(n.locale, "terms."+group+"."+word); ok {
		return value
	}
	return word
}

func lookup(names Names, entityID string) (combat.Entity, bool) {
	if names == nil || entityID == "" {
		return combat.Entity{}, false
	}
	return names.Get(entityID)
}

func name(names Names, entityID string) string {
	if entity, ok := lookup(names, entityID); ok {
		return entity.Name
	}
	return entityID
}

// LogObserver returns an observer printing one narrated line per event.
// Names of removed entities are remembered from earlier events.
func LogObserver(logger *log.Logger, n *Narrator, names Names) combat.Observer {
	seen := &memo{names: names, known: map[string]combat.Entity{}}
	return combat.ObserverFunc(func(event combat.Event) {
		seen.remember(event.EntityID)
		if event.Action != nil {
			seen.remember(event.Action.TargetID)
		}
		if line := n.Event(event, seen); line != "" {
			logger.Printf("round %d: %s", event.Round, line)
		}
	})
}

// memo is a Names that keeps the last known copy of every entity it saw.
type memo struct {
	mu    sync.Mutex
	names Names
	known map[string]combat.Entity
}

func (m *memo) remember(entityID string) {
	if entity, ok := lookup(m.names, entityID); ok {
		m.mu.Lock()
		m.known[entityID] = entity
		m.mu.Unlock()
	}
}

func (m *memo) Get(entityID string) (combat.Entity, bool) {
	if entity, ok := lookup(m.names, entityID); ok {
		return entity, true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entity, ok := m.known[entityID]
	return entity, ok
}
