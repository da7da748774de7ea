package combat

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
)

// DamageType names the kind of damage an attack or spell deals.
type DamageType string

const (
	DamageSlashing    DamageType = "slashing"
	DamagePiercing    DamageType = "piercing"
	DamageBludgeoning DamageType = "bludgeoning"
	DamageFire        DamageType = "fire"
	DamageCold        DamageType = "cold"
	DamageLightning   DamageType = "lightning"
	DamageAcid        DamageType = "acid"
	DamagePoison      DamageType = "poison"
	DamagePsychic     DamageType = "psychic"
	DamageNecrotic    DamageType = "necrotic"
	DamageRadiant     DamageType = "radiant"
	DamageForce       DamageType = "force"
)

// SpellSchool is the school of magic a spell belongs to.
type SpellSchool string

const (
	SchoolAbjuration    SpellSchool = "abjuration"
	SchoolConjuration   SpellSchool = "conjuration"
	SchoolDivination    SpellSchool = "divination"
	SchoolEnchantment   SpellSchool = "enchantment"
	SchoolEvocation     SpellSchool = "evocation"
	SchoolIllusion      SpellSchool = "illusion"
	SchoolNecromancy    SpellSchool = "necromancy"
	SchoolTransmutation SpellSchool = "transmutation"
)

// ActionType names a logged action.
type ActionType string

const (
	ActionMove      ActionType = "move"
	ActionAttack    ActionType = "attack"
	ActionCastSpell ActionType = "cast_spell"
	ActionDash      ActionType = "dash"
	ActionDodge     ActionType = "dodge"
	ActionHelp      ActionType = "help"
	ActionHide      ActionType = "hide"
	ActionReady     ActionType = "ready"
	ActionSearch    ActionType = "search"
	ActionUseObject ActionType = "use_object"
	ActionDamage    ActionType = "damage"
	ActionHeal      ActionType = "heal"
)

// AreaShape is the footprint of an area-of-effect spell.
type AreaShape string

const (
	AreaCircle AreaShape = "circle"
	AreaCone   AreaShape = "cone"
	AreaSquare AreaShape = "square"
	AreaLine   AreaShape = "line"
)

// ConeAngle is the opening angle of cone areas, in degrees.
const ConeAngle = 60.0

// Ability names the ability a saving throw uses.
type Ability string

const (
	AbilityStrength     Ability = "strength"
	AbilityDexterity    Ability = "dexterity"
	AbilityConstitution Ability = "constitution"
	AbilityIntelligence Ability = "intelligence"
	AbilityWisdom       Ability = "wisdom"
	AbilityCharisma     Ability = "charisma"
)

// Weapon is reference data for an attack.
type Weapon struct {
	Name        string
	Damage      string
	DamageType  DamageType
	Range       int
	AttackBonus int
}

// Area describes a spell's area of effect.
type Area struct {
	Shape AreaShape
	Size  float64
}

// Spell is reference data for a spell.
type Spell struct {
	Name          string
	Level         int
	School        SpellSchool
	CastingTime   string
	Range         int
	Duration      string
	Concentration bool
	Damage        string
	DamageType    DamageType
	Heal          string
	Save          Ability
	Area          *Area
	Description   string
}

// Instantaneous reports whether the spell's effect ends immediately.
func (s Spell) Instantaneous() bool {
	return s.Duration == "" || strings.EqualFold(s.Duration, "instantaneous")
}

// Healing reports whether the spell heals rather than damages.
func (s Spell) Healing() bool {
	return s.Heal != ""
}

var weapons = map[string]Weapon{
	"longsword": {Name: "Longsword", Damage: "1d8+3", DamageType: DamageSlashing, Range: 5, AttackBonus: 5},
	"shortbow":  {Name: "Shortbow", Damage: "1d6+3", DamageType: DamagePiercing, Range: 80, AttackBonus: 5},
	"dagger":    {Name: "Dagger", Damage: "1d4+3", DamageType: DamagePiercing, Range: 20, AttackBonus: 5},
	"greataxe":  {Name: "Greataxe", Damage: "1d12+3", DamageType: DamageSlashing, Range: 5, AttackBonus: 5},
}

var spells = map[string]Spell{
	"fireball": {
		Name: "Fireball", Level: 3, School: SchoolEvocation, CastingTime: "1 action", Range: 150,
		Duration: "Instantaneous", Damage: "8d6", DamageType: DamageFire, Save: AbilityDexterity,
		Area:        &Area{Shape: AreaCircle, Size: 20},
		Description: "A bright streak flashes to a point you choose and blossoms into an explosion of flame.",
	},
	"cure_wounds": {
		Name: "Cure Wounds", Level: 1, School: SchoolEvocation, CastingTime: "1 action", Range: 5,
		Duration: "Instantaneous", Heal: "1d8+3",
		Description: "A creature you touch regains hit points.",
	},
	"magic_missile": {
		Name: "Magic Missile", Level: 1, School: SchoolEvocation, CastingTime: "1 action", Range: 120,
		Duration: "Instantaneous", Damage: "1d4+1", DamageType: DamageForce,
		Description: "Glowing darts of magical force strike a creature you can see.",
	},
	"burning_hands": {
		Name: "Burning Hands", Level: 1, School: SchoolEvocation, CastingTime: "1 action", Range: 15,
		Duration: "Instantaneous", Damage: "3d6", DamageType: DamageFire, Save: AbilityDexterity,
		Area:        &Area{Shape: AreaCone, Size: 15},
		Description: "A thin sheet of flames shoots forth from your outstretched fingertips.",
	},
}

// LookupWeapon returns the preset weapon registered under key.
func LookupWeapon(key string) (Weapon, error) {
	w, ok := weapons[normalizeKey(key)]
	if !ok {
		return Weapon{}, apperrors.WithMetadata(apperrors.CodeWeaponUnknown,
			fmt.Sprintf("unknown weapon %q", key), map[string]string{"Weapon": key})
	}
	return w, nil
}

// LookupSpell returns the preset spell registered under key.
func LookupSpell(key string) (Spell, error) {
	s, ok := spells[normalizeKey(key)]
	if !ok {
		return Spell{}, apperrors.WithMetadata(apperrors.CodeSpellUnknown,
			fmt.Sprintf("unknown spell %q", key), map[string]string{"Spell": key})
	}
	if s.Area != nil {
		area := *s.Area
		s.Area = &area
	}
	return s, nil
}

// WeaponKeys lists preset weapon keys in sorted order.
func WeaponKeys() []string { return sortedKeys(weapons) }

// SpellKeys lists preset spell keys in sorted order.
func SpellKeys() []string { return sortedKeys(spells) }

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, " ", "_")
}

var schoolColors = map[SpellSchool]string{
	SchoolEvocation:     "#ff6b6b",
	SchoolAbjuration:    "#4ecdc4",
	SchoolConjuration:   "#45b7d1",
	SchoolDivination:    "#96ceb4",
	SchoolEnchantment:   "#feca57",
	SchoolIllusion:      "#a8e6cf",
	SchoolNecromancy:    "#6c5ce7",
	SchoolTransmutation: "#fd79a8",
}

// SchoolColor returns the display color for a spell school.
func SchoolColor(school SpellSchool) string {
	if c, ok := schoolColors[school]; ok {
		return c
	}
	return "#666666"
}

var sizeScale = map[Size]float64{
	SizeTiny:       0.5,
	SizeSmall:      1,
	SizeMedium:     1,
	SizeLarge:      2,
	SizeHuge:       3,
	SizeGargantuan: 4,
}

// SizeScale returns the token scale multiplier for a size.
func SizeScale(size Size) float64 {
	if s, ok := sizeScale[size]; ok {
		return s
	}
	return 1
}

// TypeColor returns the token color for an entity type.
func TypeColor(t EntityType) string {
	switch t {
	case EntityPlayer:
		return "#0080ff"
	case EntityEnemy:
		return "#ff3333"
	case EntityNPC:
		return "#33ff33"
	}
	return "#808080"
}
