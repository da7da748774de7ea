package combat

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
)

// FeetPerUnit converts world units on the grid plane to feet.
const FeetPerUnit = 5.0

// EntityType classifies a combat participant.
type EntityType string

const (
	EntityPlayer EntityType = "player"
	EntityEnemy  EntityType = "enemy"
	EntityNPC    EntityType = "npc"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityPlayer, EntityEnemy, EntityNPC:
		return true
	}
	return false
}

// Size drives token scale and footprint. It has no effect on combat math.
type Size string

const (
	SizeTiny       Size = "tiny"
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeHuge       Size = "huge"
	SizeGargantuan Size = "gargantuan"
)

// Valid reports whether s is a known size.
func (s Size) Valid() bool {
	_, ok := sizeScale[s]
	return ok
}

// Stats are the mutable numbers of an entity.
type Stats struct {
	MaxHP      int
	CurrentHP  int
	ArmorClass int
	Initiative int
	Speed      int
}

// Validate checks stat ranges.
func (s Stats) Validate() error {
	var reason string
	switch {
	case s.MaxHP < 1:
		reason = "max HP must be at least 1"
	case s.CurrentHP < 0 || s.CurrentHP > s.MaxHP:
		reason = "current HP must be between 0 and max HP"
	case s.ArmorClass < 1:
		reason = "armor class must be at least 1"
	case s.Speed < 0:
		reason = "speed must not be negative"
	default:
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeEntityInvalidStats, "invalid stats: "+reason, map[string]string{"Reason": reason})
}

// Position places an entity on the grid. X and Z are world units; Y is the
// flying height in feet when set.
type Position struct {
	X     float64
	Z     float64
	GridX int
	GridZ int
	Y     *float64
}

// Clone returns a copy that shares no pointers with p.
func (p Position) Clone() Position {
	if p.Y != nil {
		y := *p.Y
		p.Y = &y
	}
	return p
}

// DistanceFeet returns the straight-line distance between a and b on the grid
// plane, in feet. Flying height is ignored.
func DistanceFeet(a, b Position) float64 {
	return math.Hypot(b.X-a.X, b.Z-a.Z) * FeetPerUnit
}

// Entity is a combat participant.
type Entity struct {
	ID           string
	Name         string
	Type         EntityType
	Size         Size
	Stats        Stats
	Position     Position
	IsFlying     bool
	FlyingHeight float64
	HasMoved     bool
	HasActed     bool
	HasDashed    bool
	IsSelected   bool
	Conditions   []string
}

// Clone returns a deep copy.
func (e Entity) Clone() Entity {
	e.Position = e.Position.Clone()
	e.Conditions = append([]string(nil), e.Conditions...)
	return e
}

// HasCondition reports whether name is present, ignoring case.
func (e Entity) HasCondition(name string) bool {
	return conditionIndex(e.Conditions, name) >= 0
}

// Alive reports whether the entity has hit points left.
func (e Entity) Alive() bool {
	return e.Stats.CurrentHP > 0
}

func conditionIndex(conditions []string, name string) int {
	for i, c := range conditions {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// EntitySpec describes an entity to add. Turn flags, selection and conditions
// always start empty.
type EntitySpec struct {
	Name         string
	Type         EntityType
	Size         Size
	Stats        Stats
	Position     Position
	IsFlying     bool
	FlyingHeight float64
}

func (e Entity) spec() EntitySpec {
	return EntitySpec{
		Name:         e.Name,
		Type:         e.Type,
		Size:         e.Size,
		Stats:        e.Stats,
		Position:     e.Position,
		IsFlying:     e.IsFlying,
		FlyingHeight: e.FlyingHeight,
	}
}

func (s EntitySpec) normalize() (EntitySpec, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return s, apperrors.New(apperrors.CodeEntityNameEmpty, "entity name is required")
	}
	if !s.Type.Valid() {
		return s, apperrors.WithMetadata(apperrors.CodeEntityInvalidType,
			fmt.Sprintf("invalid entity type %q", s.Type), map[string]string{"Type": string(s.Type)})
	}
	if s.Size == "" {
		s.Size = SizeMedium
	}
	if !s.Size.Valid() {
		return s, apperrors.WithMetadata(apperrors.CodeEntityInvalidSize,
			fmt.Sprintf("invalid entity size %q", s.Size), map[string]string{"Size": string(s.Size)})
	}
	if s.Stats.CurrentHP == 0 {
		s.Stats.CurrentHP = s.Stats.MaxHP
	}
	if err := s.Stats.Validate(); err != nil {
		return s, err
	}
	if s.FlyingHeight < 0 {
		return s, apperrors.WithMetadata(apperrors.CodeEntityInvalidStats, "flying height must not be negative",
			map[string]string{"Reason": "flying height must not be negative"})
	}
	return s, nil
}

// TurnEntry is one slot of the initiative order.
type TurnEntry struct {
	EntityID   string
	Initiative int
	HasGone    bool
}

// State is the full encounter state owned by an Engine.
type State struct {
	Entities         map[string]Entity
	Order            []string
	TurnOrder        []TurnEntry
	CurrentTurnIndex int
	Round            int
	IsActive         bool
	SelectedEntityID string
}

// NewState returns an empty, inactive state.
func NewState() State {
	return State{Entities: map[string]Entity{}, Round: 1}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Entities = make(map[string]Entity, len(s.Entities))
	for id, e := range s.Entities {
		out.Entities[id] = e.Clone()
	}
	out.Order = append([]string(nil), s.Order...)
	out.TurnOrder = append([]TurnEntry(nil), s.TurnOrder...)
	return out
}

// EntityList returns entities in insertion order.
func (s State) EntityList() []Entity {
	out := make([]Entity, 0, len(s.Order))
	for _, id := range s.Order {
		if e, ok := s.Entities[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out
}

// StatusEffect is a timed condition on one entity. A Duration of -1 never
// expires.
type StatusEffect struct {
	ID          string
	Name        string
	Description string
	Duration    int
	Color       string
}

// Permanent reports whether the effect never ticks down.
func (s StatusEffect) Permanent() bool { return s.Duration < 0 }

// Action is an immutable record of one resolved action.
type Action struct {
	ID             string
	Type           ActionType
	ActorID        string
	TargetID       string
	TargetPosition *Position
	Weapon         string
	Spell          string
	Damage         int
	DamageType     DamageType
	HealAmount     int
	Roll           int
	RollTotal      int
	Success        bool
	CriticalHit    bool
	Timestamp      time.Time
	Description    string
}

// Clone returns a deep copy.
func (a Action) Clone() Action {
	if a.TargetPosition != nil {
		p := a.TargetPosition.Clone()
		a.TargetPosition = &p
	}
	return a
}

// SpellArea is a transient area-of-effect marker handed to the scene adapter.
type SpellArea struct {
	ID        string
	Spell     string
	Shape     AreaShape
	Size      float64
	Angle     float64
	Origin    Position
	Color     string
	ExpiresAt time.Time
}

// Expired reports whether the area should be removed at now. Areas with a
// zero ExpiresAt persist until removed.
func (a SpellArea) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}
