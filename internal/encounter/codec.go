package encounter

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
)

// Encode marshals s as compact JSON.
func Encode(s SavedEncounter) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal encounter: %w", err)
	}
	return data, nil
}

// EncodeIndent marshals s as indented JSON for export.
func EncodeIndent(s SavedEncounter) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal encounter: %w", err)
	}
	return data, nil
}

type rawEncounter struct {
	ID            *string                   `json:"id"`
	Name          *string                   `json:"name"`
	Description   string                    `json:"description"`
	Timestamp     *int64                    `json:"timestamp"`
	Version       *string                   `json:"version"`
	CombatState   *rawCombatState           `json:"combatState"`
	ActionHistory *[]Action                 `json:"actionHistory"`
	StatusEffects map[string][]StatusEffect `json:"statusEffects"`
}

type rawCombatState struct {
	Entities         *[]Entity   `json:"entities"`
	TurnOrder        []TurnEntry `json:"turnOrder"`
	CurrentTurnIndex int         `json:"currentTurnIndex"`
	Round            *int        `json:"round"`
	IsActive         bool        `json:"isActive"`
	SelectedEntityID string      `json:"selectedEntityId"`
}

// Decode parses and validates a saved encounter. Any problem rejects the whole
// snapshot: there is no partial recovery.
func Decode(data []byte) (SavedEncounter, error) {
	var raw rawEncounter
	if err := json.Unmarshal(data, &raw); err != nil {
		return SavedEncounter{}, apperrors.WrapWithMetadata(apperrors.CodeSnapshotMalformed,
			"malformed encounter: invalid JSON", map[string]string{"Reason": "invalid JSON"}, err)
	}

	if raw.Version == nil {
		return SavedEncounter{}, malformed("missing version")
	}
	if *raw.Version != FormatVersion {
		return SavedEncounter{}, apperrors.WithMetadata(apperrors.CodeSnapshotVersionMismatch,
			fmt.Sprintf("unsupported save version %q, want %q", *raw.Version, FormatVersion),
			map[string]string{"Version": *raw.Version, "Expected": FormatVersion})
	}

	switch {
	case raw.ID == nil || *raw.ID == "":
		return SavedEncounter{}, malformed("missing id")
	case raw.Name == nil:
		return SavedEncounter{}, malformed("missing name")
	case raw.Timestamp == nil:
		return SavedEncounter{}, malformed("missing timestamp")
	case raw.CombatState == nil:
		return SavedEncounter{}, malformed("missing combatState")
	case raw.CombatState.Entities == nil:
		return SavedEncounter{}, malformed("missing combatState.entities")
	case raw.ActionHistory == nil:
		return SavedEncounter{}, malformed("missing actionHistory")
	}

	round := 1
	if raw.CombatState.Round != nil {
		round = *raw.CombatState.Round
	}
	saved := SavedEncounter{
		ID:            *raw.ID,
		Name:          *raw.Name,
		Description:   raw.Description,
		Timestamp:     *raw.Timestamp,
		Version:       *raw.Version,
		ActionHistory: *raw.ActionHistory,
		StatusEffects: raw.StatusEffects,
		CombatState: CombatState{
			Entities:         *raw.CombatState.Entities,
			TurnOrder:        raw.CombatState.TurnOrder,
			CurrentTurnIndex: raw.CombatState.CurrentTurnIndex,
			Round:            round,
			IsActive:         raw.CombatState.IsActive,
			SelectedEntityID: raw.CombatState.SelectedEntityID,
		},
	}
	if saved.CombatState.TurnOrder == nil {
		saved.CombatState.TurnOrder = []TurnEntry{}
	}
	if err := saved.Validate(); err != nil {
		return SavedEncounter{}, err
	}
	return saved, nil
}

// Validate checks that s restores into a consistent engine state.
func (s SavedEncounter) Validate() error {
	seen := make(map[string]bool, len(s.CombatState.Entities))
	for i, entity := range s.CombatState.Entities {
		if entity.ID == "" {
			return malformed(fmt.Sprintf("entity %d has no id", i))
		}
		if seen[entity.ID] {
			return malformed(fmt.Sprintf("entity id %q is duplicated", entity.ID))
		}
		seen[entity.ID] = true
	}
	for i, action := range s.ActionHistory {
		if action.ID == "" || action.Type == "" {
			return malformed(fmt.Sprintf("action %d is missing id or type", i))
		}
	}
	for entityID, list := range s.StatusEffects {
		if !seen[entityID] {
			return malformed(fmt.Sprintf("status effects reference unknown entity %q", entityID))
		}
		for _, effect := range list {
			if effect.Name == "" {
				return malformed(fmt.Sprintf("status effect on %q has no name", entityID))
			}
		}
	}

	state, _, _ := s.Restore()
	return state.Validate()
}

func malformed(reason string) error {
	return apperrors.WithMetadata(apperrors.CodeSnapshotMalformed,
		"malformed encounter: "+reason, map[string]string{"Reason": reason})
}
