// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Entity errors
	CodeEntityNotFound     Code = "ENTITY_NOT_FOUND"
	CodeEntityNameEmpty    Code = "ENTITY_NAME_EMPTY"
	CodeEntityInvalidStats Code = "ENTITY_INVALID_STATS"
	CodeEntityInvalidType  Code = "ENTITY_INVALID_TYPE"
	CodeEntityInvalidSize  Code = "ENTITY_INVALID_SIZE"
	CodeAmountNegative     Code = "AMOUNT_NEGATIVE"

	// Turn errors
	CodeTurnSlotOutOfRange Code = "TURN_SLOT_OUT_OF_RANGE"

	// Action errors
	CodeTargetOutOfRange  Code = "TARGET_OUT_OF_RANGE"
	CodeMoveExceedsSpeed  Code = "MOVE_EXCEEDS_SPEED"
	CodeSpellLevelInvalid Code = "SPELL_LEVEL_INVALID"
	CodeWeaponUnknown     Code = "WEAPON_UNKNOWN"
	CodeSpellUnknown      Code = "SPELL_UNKNOWN"

	// Status effect errors
	CodeStatusPresetUnknown Code = "STATUS_PRESET_UNKNOWN"
	CodeStatusNameEmpty     Code = "STATUS_NAME_EMPTY"

	// Dice errors
	CodeDiceInvalidSpec       Code = "DICE_INVALID_SPEC"
	CodeDiceInvalidExpression Code = "DICE_INVALID_EXPRESSION"

	// Snapshot errors
	CodeSnapshotMalformed       Code = "SNAPSHOT_MALFORMED"
	CodeSnapshotVersionMismatch Code = "SNAPSHOT_VERSION_MISMATCH"

	// Storage errors
	CodeEncounterNotFound Code = "ENCOUNTER_NOT_FOUND"
	CodePageTokenInvalid  Code = "PAGE_TOKEN_INVALID"
)

// Kind classifies codes by how a caller should react to them.
type Kind string

const (
	// KindValidation marks bad input; retry with corrected arguments.
	KindValidation Kind = "validation"
	// KindCorruption marks a snapshot that must be rejected wholesale.
	KindCorruption Kind = "corruption"
	// KindNotFound marks a missing stored record.
	KindNotFound Kind = "not_found"
	// KindInternal marks everything else.
	KindInternal Kind = "internal"
)

// Kind maps domain codes to their error class.
func (c Code) Kind() Kind {
	switch c {
	case CodeEntityNotFound,
		CodeEntityNameEmpty,
		CodeEntityInvalidStats,
		CodeEntityInvalidType,
		CodeEntityInvalidSize,
		CodeAmountNegative,
		CodeTurnSlotOutOfRange,
		CodeTargetOutOfRange,
		CodeMoveExceedsSpeed,
		CodeSpellLevelInvalid,
		CodeWeaponUnknown,
		CodeSpellUnknown,
		CodeStatusPresetUnknown,
		CodeStatusNameEmpty,
		CodeDiceInvalidSpec,
		CodeDiceInvalidExpression,
		CodePageTokenInvalid:
		return KindValidation

	case CodeSnapshotMalformed,
		CodeSnapshotVersionMismatch:
		return KindCorruption

	case CodeEncounterNotFound:
		return KindNotFound

	default:
		return KindInternal
	}
}
