package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeEntityNotFound          = "ENTITY_NOT_FOUND"
	CodeEntityNameEmpty         = "ENTITY_NAME_EMPTY"
	CodeEntityInvalidStats      = "ENTITY_INVALID_STATS"
	CodeEntityInvalidType       = "ENTITY_INVALID_TYPE"
	CodeEntityInvalidSize       = "ENTITY_INVALID_SIZE"
	CodeAmountNegative          = "AMOUNT_NEGATIVE"
	CodeTurnSlotOutOfRange      = "TURN_SLOT_OUT_OF_RANGE"
	CodeTargetOutOfRange        = "TARGET_OUT_OF_RANGE"
	CodeMoveExceedsSpeed        = "MOVE_EXCEEDS_SPEED"
	CodeSpellLevelInvalid       = "SPELL_LEVEL_INVALID"
	CodeWeaponUnknown           = "WEAPON_UNKNOWN"
	CodeSpellUnknown            = "SPELL_UNKNOWN"
	CodeStatusPresetUnknown     = "STATUS_PRESET_UNKNOWN"
	CodeStatusNameEmpty         = "STATUS_NAME_EMPTY"
	CodeDiceInvalidSpec         = "DICE_INVALID_SPEC"
	CodeDiceInvalidExpression   = "DICE_INVALID_EXPRESSION"
	CodeSnapshotMalformed       = "SNAPSHOT_MALFORMED"
	CodeSnapshotVersionMismatch = "SNAPSHOT_VERSION_MISMATCH"
	CodeEncounterNotFound       = "ENCOUNTER_NOT_FOUND"
	CodePageTokenInvalid        = "PAGE_TOKEN_INVALID"
)

var enUSMessages = map[Code]string{
	CodeEntityNotFound:          "No combatant with id {{.EntityID}} is on the map.",
	CodeEntityNameEmpty:         "A combatant needs a name.",
	CodeEntityInvalidStats:      "Invalid stats: {{.Reason}}.",
	CodeEntityInvalidType:       "Unknown combatant type {{.Type}}.",
	CodeEntityInvalidSize:       "Unknown combatant size {{.Size}}.",
	CodeAmountNegative:          "The amount must not be negative.",
	CodeTurnSlotOutOfRange:      "Turn slot {{.Index}} is outside the initiative order.",
	CodeTargetOutOfRange:        "Target is out of range ({{.Distance}} ft > {{.Range}} ft).",
	CodeMoveExceedsSpeed:        "{{.Name}} cannot move {{.Distance}} feet (speed {{.Speed}} ft).",
	CodeSpellLevelInvalid:       "{{.Spell}} cannot be cast at level {{.Level}}.",
	CodeWeaponUnknown:           "Unknown weapon {{.Weapon}}.",
	CodeSpellUnknown:            "Unknown spell {{.Spell}}.",
	CodeStatusPresetUnknown:     "Unknown status effect {{.Name}}.",
	CodeStatusNameEmpty:         "A status effect needs a name.",
	CodeDiceInvalidSpec:         "Dice need at least one side and one die.",
	CodeDiceInvalidExpression:   "Cannot read dice expression {{.Expression}}.",
	CodeSnapshotMalformed:       "The saved encounter is damaged: {{.Reason}}.",
	CodeSnapshotVersionMismatch: "The saved encounter uses format {{.Version}}; expected {{.Expected}}.",
	CodeEncounterNotFound:       "No saved encounter with id {{.EncounterID}}.",
	CodePageTokenInvalid:        "The page token is not valid for this listing.",
}
