// Package encounter converts engine state to and from the saved-encounter
// JSON format.
package encounter

// FormatVersion is the only save-format version Decode accepts.
const FormatVersion = "1.0.0"

// SavedEncounter is the persisted form of one encounter.
type SavedEncounter struct {
	ID            string                    `json:"id" jsonschema:"required"`
	Name          string                    `json:"name" jsonschema:"required"`
	Description   string                    `json:"description"`
	Timestamp     int64                     `json:"timestamp" jsonschema:"required"`
	Version       string                    `json:"version" jsonschema:"required"`
	CombatState   CombatState               `json:"combatState" jsonschema:"required"`
	ActionHistory []Action                  `json:"actionHistory" jsonschema:"required"`
	StatusEffects map[string][]StatusEffect `json:"statusEffects,omitempty"`
}

// CombatState is the persisted engine state.
type CombatState struct {
	Entities         []Entity    `json:"entities" jsonschema:"required"`
	TurnOrder        []TurnEntry `json:"turnOrder" jsonschema:"required"`
	CurrentTurnIndex int         `json:"currentTurnIndex" jsonschema:"required"`
	Round            int         `json:"round" jsonschema:"required"`
	IsActive         bool        `json:"isActive" jsonschema:"required"`
	SelectedEntityID string      `json:"selectedEntityId,omitempty"`
}

// Entity is a persisted combat participant.
type Entity struct {
	ID           string   `json:"id" jsonschema:"required"`
	Name         string   `json:"name" jsonschema:"required"`
	Type         string   `json:"type" jsonschema:"required,enum=player,enum=enemy,enum=npc"`
	Size         string   `json:"size" jsonschema:"required,enum=tiny,enum=small,enum=medium,enum=large,enum=huge,enum=gargantuan"`
	Stats        Stats    `json:"stats" jsonschema:"required"`
	Position     Position `json:"position" jsonschema:"required"`
	IsFlying     bool     `json:"isFlying,omitempty"`
	FlyingHeight float64  `json:"flyingHeight,omitempty"`
	HasMoved     bool     `json:"hasMoved"`
	HasActed     bool     `json:"hasActed"`
	HasDashed    bool     `json:"hasDashed,omitempty"`
	Conditions   []string `json:"conditions"`
}

// Stats are persisted entity numbers.
type Stats struct {
	MaxHP      int `json:"maxHP" jsonschema:"required,minimum=1"`
	CurrentHP  int `json:"currentHP" jsonschema:"required,minimum=0"`
	ArmorClass int `json:"armorClass" jsonschema:"required,minimum=1"`
	Initiative int `json:"initiative"`
	Speed      int `json:"speed" jsonschema:"minimum=0"`
}

// Position is a persisted grid position. Y is the flying height in feet.
type Position struct {
	X     float64  `json:"x"`
	Z     float64  `json:"z"`
	GridX int      `json:"gridX"`
	GridZ int      `json:"gridZ"`
	Y     *float64 `json:"y,omitempty"`
}

// TurnEntry is a persisted initiative slot.
type TurnEntry struct {
	EntityID   string `json:"entityId" jsonschema:"required"`
	Initiative int    `json:"initiative"`
	HasGone    bool   `json:"hasGone"`
}

// Action is a persisted action log record. Timestamp is epoch milliseconds.
type Action struct {
	ID             string    `json:"id" jsonschema:"required"`
	Type           string    `json:"type" jsonschema:"required"`
	ActorID        string    `json:"actorId" jsonschema:"required"`
	TargetID       string    `json:"targetId,omitempty"`
	TargetPosition *Position `json:"targetPosition,omitempty"`
	Weapon         string    `json:"weapon,omitempty"`
	Spell          string    `json:"spell,omitempty"`
	Damage         int       `json:"damage,omitempty"`
	DamageType     string    `json:"damageType,omitempty"`
	HealAmount     int       `json:"healAmount,omitempty"`
	Roll           int       `json:"roll,omitempty"`
	RollTotal      int       `json:"rollTotal,omitempty"`
	Success        bool      `json:"success"`
	CriticalHit    bool      `json:"criticalHit,omitempty"`
	Timestamp      int64     `json:"timestamp"`
	Description    string    `json:"description"`
}

// StatusEffect is a persisted timed effect.
type StatusEffect struct {
	ID          string `json:"id"`
	Name        string `json:"name" jsonschema:"required"`
	Description string `json:"description,omitempty"`
	Duration    int    `json:"duration"`
	Color       string `json:"color,omitempty"`
}

// Meta names a snapshot.
type Meta struct {
	ID          string
	Name        string
	Description string
}

// Metadata summarizes a saved encounter for listings.
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	EntityCount int    `json:"entityCount"`
}

// Metadata returns the listing summary of s.
func (s SavedEncounter) Metadata() Metadata {
	return Metadata{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Timestamp:   s.Timestamp,
		EntityCount: len(s.CombatState.Entities),
	}
}
