package domain

import (
	"strings"

	"github.com/louisbranch/battlegrid/internal/combat"
)

// PositionInput places an entity on the grid. Y is the flying height in feet.
type PositionInput struct {
	X     float64  `json:"x" jsonschema:"world X coordinate"`
	Z     float64  `json:"z" jsonschema:"world Z coordinate"`
	GridX int      `json:"grid_x,omitempty" jsonschema:"grid column"`
	GridZ int      `json:"grid_z,omitempty" jsonschema:"grid row"`
	Y     *float64 `json:"y,omitempty" jsonschema:"flying height in feet"`
}

func (p PositionInput) toCombat() combat.Position {
	return combat.Position{X: p.X, Z: p.Z, GridX: p.GridX, GridZ: p.GridZ, Y: p.Y}
}

// EntityAddInput is the input of entity_add.
type EntityAddInput struct {
	Name         string        `json:"name" jsonschema:"display name"`
	Type         string        `json:"type,omitempty" jsonschema:"player, enemy or npc (default player)"`
	Size         string        `json:"size,omitempty" jsonschema:"tiny through gargantuan (default medium)"`
	MaxHP        int           `json:"max_hp" jsonschema:"maximum hit points"`
	CurrentHP    int           `json:"current_hp,omitempty" jsonschema:"current hit points (default max_hp)"`
	ArmorClass   int           `json:"armor_class" jsonschema:"armor class"`
	Initiative   int           `json:"initiative,omitempty" jsonschema:"initiative used when joining active combat"`
	Speed        int           `json:"speed,omitempty" jsonschema:"speed in feet (default 30)"`
	Position     PositionInput `json:"position" jsonschema:"starting position"`
	FlyingHeight float64       `json:"flying_height,omitempty" jsonschema:"start flying at this height in feet"`
}

// EntityRemoveInput is the input of entity_remove.
type EntityRemoveInput struct {
	EntityID string `json:"entity_id" jsonschema:"entity to remove"`
}

// EntityUpdateInput is the input of entity_update. Omitted fields keep
// their value.
type EntityUpdateInput struct {
	EntityID   string  `json:"entity_id" jsonschema:"entity to update"`
	Name       *string `json:"name,omitempty" jsonschema:"new display name"`
	MaxHP      *int    `json:"max_hp,omitempty" jsonschema:"new maximum hit points"`
	CurrentHP  *int    `json:"current_hp,omitempty" jsonschema:"new current hit points"`
	ArmorClass *int    `json:"armor_class,omitempty" jsonschema:"new armor class"`
	Initiative *int    `json:"initiative,omitempty" jsonschema:"new initiative"`
	Speed      *int    `json:"speed,omitempty" jsonschema:"new speed in feet"`
	Selected   bool    `json:"selected,omitempty" jsonschema:"make this the selected entity"`
}

// EntityIDInput is the input of tools that act on a single entity.
type EntityIDInput struct {
	EntityID string `json:"entity_id" jsonschema:"acting entity"`
}

// EmptyInput is the input of tools without arguments.
type EmptyInput struct{}

// InitiativeSetInput is the input of initiative_set. Without a value the
// initiative is rolled.
type InitiativeSetInput struct {
	EntityID string `json:"entity_id" jsonschema:"entity whose initiative changes"`
	Value    *int   `json:"value,omitempty" jsonschema:"explicit initiative; omit to roll d20+2"`
}

// InitiativeSwapInput is the input of initiative_swap. Slots are 1-based.
type InitiativeSwapInput struct {
	First  int `json:"first" jsonschema:"first turn order slot (1-based)"`
	Second int `json:"second" jsonschema:"second turn order slot (1-based)"`
}

// AttackInput is the input of attack.
type AttackInput struct {
	AttackerID   string `json:"attacker_id" jsonschema:"attacking entity"`
	TargetID     string `json:"target_id" jsonschema:"target entity"`
	Weapon       string `json:"weapon" jsonschema:"weapon catalog key, e.g. longsword"`
	Advantage    bool   `json:"advantage,omitempty" jsonschema:"roll two d20 and keep the higher"`
	Disadvantage bool   `json:"disadvantage,omitempty" jsonschema:"roll two d20 and keep the lower"`
}

// CastSpellInput is the input of cast_spell.
type CastSpellInput struct {
	CasterID       string         `json:"caster_id" jsonschema:"casting entity"`
	Spell          string         `json:"spell" jsonschema:"spell catalog key, e.g. fireball"`
	TargetID       string         `json:"target_id,omitempty" jsonschema:"target entity"`
	TargetPosition *PositionInput `json:"target_position,omitempty" jsonschema:"area origin"`
	SpellLevel     int            `json:"spell_level,omitempty" jsonschema:"slot level (default the spell level)"`
}

// MoveInput is the input of move.
type MoveInput struct {
	EntityID string        `json:"entity_id" jsonschema:"moving entity"`
	To       PositionInput `json:"to" jsonschema:"destination"`
}

// AmountInput is the input of damage and heal.
type AmountInput struct {
	EntityID   string `json:"entity_id" jsonschema:"affected entity"`
	Amount     int    `json:"amount" jsonschema:"hit points"`
	DamageType string `json:"damage_type,omitempty" jsonschema:"damage type, ignored by heal"`
}

// StatusAddInput is the input of status_add. Without a description or
// color, a known preset name fills them in.
type StatusAddInput struct {
	EntityID    string `json:"entity_id" jsonschema:"affected entity"`
	Name        string `json:"name" jsonschema:"effect or preset name"`
	Description string `json:"description,omitempty" jsonschema:"custom description"`
	Duration    int    `json:"duration" jsonschema:"rounds, or -1 for permanent"`
	Color       string `json:"color,omitempty" jsonschema:"display color"`
}

// StatusRemoveInput is the input of status_remove.
type StatusRemoveInput struct {
	EntityID string `json:"entity_id" jsonschema:"affected entity"`
	Name     string `json:"name" jsonschema:"effect name"`
}

// ConditionInput is the input of condition_add and condition_remove.
type ConditionInput struct {
	EntityID string `json:"entity_id" jsonschema:"affected entity"`
	Name     string `json:"name" jsonschema:"condition name"`
	Stack    bool   `json:"stack,omitempty" jsonschema:"keep a numbered copy when the condition is already present"`
}

// FlyInput is the input of fly.
type FlyInput struct {
	EntityID string  `json:"entity_id" jsonschema:"flying entity"`
	Height   float64 `json:"height" jsonschema:"height in feet"`
}

// DiceRollInput is the input of dice_roll.
type DiceRollInput struct {
	Expression string          `json:"expression,omitempty" jsonschema:"dice expression such as 2d6+3"`
	Pool       []DiceSpecInput `json:"pool,omitempty" jsonschema:"extra dice of mixed sides added to the total"`
	Critical   bool            `json:"critical,omitempty" jsonschema:"double the dice count"`
}

// DiceSpecInput is one group of a dice pool.
type DiceSpecInput struct {
	Count int `json:"count" jsonschema:"number of dice"`
	Sides int `json:"sides" jsonschema:"faces per die"`
}

// EncounterSaveInput is the input of encounter_save.
type EncounterSaveInput struct {
	Name        string `json:"name" jsonschema:"encounter name"`
	Description string `json:"description,omitempty" jsonschema:"encounter description"`
	Template    bool   `json:"template,omitempty" jsonschema:"save a reset copy for reuse"`
}

// EncounterIDInput is the input of tools that address one saved encounter.
type EncounterIDInput struct {
	EncounterID string `json:"encounter_id" jsonschema:"saved encounter id"`
}

// EncounterListInput is the input of encounter_list.
type EncounterListInput struct {
	PageSize  int    `json:"page_size,omitempty" jsonschema:"page size (default 20, max 100)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
	Filter    string `json:"filter,omitempty" jsonschema:"name substring, ignoring case"`
}

// EntityResult is the tool view of an entity.
type EntityResult struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Size         string   `json:"size"`
	MaxHP        int      `json:"max_hp"`
	CurrentHP    int      `json:"current_hp"`
	ArmorClass   int      `json:"armor_class"`
	Initiative   int      `json:"initiative"`
	Speed        int      `json:"speed"`
	X            float64  `json:"x"`
	Z            float64  `json:"z"`
	FlyingHeight float64  `json:"flying_height,omitempty"`
	HasMoved     bool     `json:"has_moved"`
	HasActed     bool     `json:"has_acted"`
	Conditions   []string `json:"conditions,omitempty"`
}

func entityResult(e combat.Entity) EntityResult {
	return EntityResult{
		ID:           e.ID,
		Name:         e.Name,
		Type:         string(e.Type),
		Size:         string(e.Size),
		MaxHP:        e.Stats.MaxHP,
		CurrentHP:    e.Stats.CurrentHP,
		ArmorClass:   e.Stats.ArmorClass,
		Initiative:   e.Stats.Initiative,
		Speed:        e.Stats.Speed,
		X:            e.Position.X,
		Z:            e.Position.Z,
		FlyingHeight: e.FlyingHeight,
		HasMoved:     e.HasMoved,
		HasActed:     e.HasActed,
		Conditions:   append([]string(nil), e.Conditions...),
	}
}

// ActionResult is the tool view of a resolved action.
type ActionResult struct {
	ActionID    string `json:"action_id"`
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	Roll        int    `json:"roll,omitempty"`
	RollTotal   int    `json:"roll_total,omitempty"`
	Damage      int    `json:"damage,omitempty"`
	DamageType  string `json:"damage_type,omitempty"`
	HealAmount  int    `json:"heal_amount,omitempty"`
	CriticalHit bool   `json:"critical_hit,omitempty"`
	Description string `json:"description"`
}

// TurnResult is the tool view of the turn state after a turn command.
type TurnResult struct {
	Active      bool     `json:"active"`
	Round       int      `json:"round"`
	CurrentID   string   `json:"current_id,omitempty"`
	CurrentName string   `json:"current_name,omitempty"`
	Order       []string `json:"order"`
	Expired     []string `json:"expired,omitempty"`
}

// StatusResult is the tool view of an applied status effect.
type StatusResult struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	Color    string `json:"color,omitempty"`
}

// ConditionResult reports the stored condition name and the entity's
// conditions afterwards.
type ConditionResult struct {
	EntityID   string   `json:"entity_id"`
	Name       string   `json:"name"`
	Conditions []string `json:"conditions"`
}

// DiceRollResult is the outcome of dice_roll.
type DiceRollResult struct {
	Expression string         `json:"expression,omitempty"`
	Dice       []int          `json:"dice"`
	Modifier   int            `json:"modifier"`
	Pool       []DicePoolRoll `json:"pool,omitempty"`
	Total      int            `json:"total"`
}

// DicePoolRoll is the outcome of one pool group.
type DicePoolRoll struct {
	Sides int   `json:"sides"`
	Dice  []int `json:"dice"`
	Total int   `json:"total"`
}

// EncounterResult summarizes a saved or loaded encounter.
type EncounterResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	EntityCount int    `json:"entity_count"`
}

// EncounterListResult is one page of saved encounters.
type EncounterListResult struct {
	Encounters    []EncounterResult `json:"encounters"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

// OKResult acknowledges commands without a richer result.
type OKResult struct {
	OK bool `json:"ok"`
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
