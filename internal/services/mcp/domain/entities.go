package domain

import (
	"context"
	"strings"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultSpeed = 30

// EntityAddTool defines the MCP tool schema for adding an entity.
func EntityAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "entity_add",
		Description: "Adds a combatant to the encounter. During active combat it joins the turn order with its initiative.",
	}
}

// EntityAddHandler executes an entity add request.
func EntityAddHandler(s *Session) mcp.ToolHandlerFor[EntityAddInput, EntityResult] {
	return handle(s, "entity_add", true, func(_ context.Context, in EntityAddInput) (EntityResult, error) {
		entityType := combat.EntityType(normalizeKey(in.Type))
		if entityType == "" {
			entityType = combat.EntityPlayer
		}
		speed := in.Speed
		if speed == 0 {
			speed = defaultSpeed
		}
		entity, err := s.engine.Registry.Add(combat.EntitySpec{
			Name: in.Name,
			Type: entityType,
			Size: combat.Size(normalizeKey(in.Size)),
			Stats: combat.Stats{
				MaxHP:      in.MaxHP,
				CurrentHP:  in.CurrentHP,
				ArmorClass: in.ArmorClass,
				Initiative: in.Initiative,
				Speed:      speed,
			},
			Position:     in.Position.toCombat(),
			IsFlying:     in.FlyingHeight > 0,
			FlyingHeight: in.FlyingHeight,
		})
		if err != nil {
			return EntityResult{}, err
		}
		return entityResult(entity), nil
	})
}

// EntityRemoveTool defines the MCP tool schema for removing an entity.
func EntityRemoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "entity_remove",
		Description: "Removes a combatant, its turn slot and its status effects",
	}
}

// EntityRemoveHandler executes an entity remove request.
func EntityRemoveHandler(s *Session) mcp.ToolHandlerFor[EntityRemoveInput, OKResult] {
	return handle(s, "entity_remove", true, func(_ context.Context, in EntityRemoveInput) (OKResult, error) {
		entityID, err := requireID("entity_id", in.EntityID)
		if err != nil {
			return OKResult{}, err
		}
		if err := s.engine.Registry.Remove(entityID); err != nil {
			return OKResult{}, err
		}
		return OKResult{OK: true}, nil
	})
}

// EntityUpdateTool defines the MCP tool schema for editing an entity.
func EntityUpdateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "entity_update",
		Description: "Renames a combatant, edits its stats or selects it. Omitted fields keep their value.",
	}
}

// EntityUpdateHandler executes an entity update request.
func EntityUpdateHandler(s *Session) mcp.ToolHandlerFor[EntityUpdateInput, EntityResult] {
	return handle(s, "entity_update", true, func(_ context.Context, in EntityUpdateInput) (EntityResult, error) {
		entityID, err := requireID("entity_id", in.EntityID)
		if err != nil {
			return EntityResult{}, err
		}
		registry := s.engine.Registry
		entity, ok := registry.Get(entityID)
		if !ok {
			return EntityResult{}, entityNotFound(entityID)
		}

		if in.Name != nil {
			if err := registry.Rename(entityID, *in.Name); err != nil {
				return EntityResult{}, err
			}
		}
		stats := entity.Stats
		applyInt(&stats.MaxHP, in.MaxHP)
		applyInt(&stats.CurrentHP, in.CurrentHP)
		applyInt(&stats.ArmorClass, in.ArmorClass)
		applyInt(&stats.Initiative, in.Initiative)
		applyInt(&stats.Speed, in.Speed)
		if stats != entity.Stats {
			if err := registry.UpdateStats(entityID, stats); err != nil {
				return EntityResult{}, err
			}
		}
		if in.Selected {
			if err := registry.Select(entityID); err != nil {
				return EntityResult{}, err
			}
		}

		entity, _ = registry.Get(entityID)
		return entityResult(entity), nil
	})
}

func applyInt(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}

// FlyTool defines the MCP tool schema for lifting an entity off the grid.
func FlyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "fly",
		Description: "Sets a combatant flying at a height in feet",
	}
}

// FlyHandler executes a fly request.
func FlyHandler(s *Session) mcp.ToolHandlerFor[FlyInput, EntityResult] {
	return handle(s, "fly", true, func(_ context.Context, in FlyInput) (EntityResult, error) {
		entityID, err := requireID("entity_id", in.EntityID)
		if err != nil {
			return EntityResult{}, err
		}
		if err := s.engine.Registry.SetFlying(entityID, in.Height); err != nil {
			return EntityResult{}, err
		}
		entity, _ := s.engine.Registry.Get(entityID)
		return entityResult(entity), nil
	})
}

// LandTool defines the MCP tool schema for landing a flying entity.
func LandTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "land",
		Description: "Returns a flying combatant to the ground",
	}
}

// LandHandler executes a land request.
func LandHandler(s *Session) mcp.ToolHandlerFor[EntityIDInput, EntityResult] {
	return handle(s, "land", true, func(_ context.Context, in EntityIDInput) (EntityResult, error) {
		entityID, err := requireID("entity_id", in.EntityID)
		if err != nil {
			return EntityResult{}, err
		}
		if err := s.engine.Registry.Land(entityID); err != nil {
			return EntityResult{}, err
		}
		entity, _ := s.engine.Registry.Get(entityID)
		return entityResult(entity), nil
	})
}

// StatusAddTool defines the MCP tool schema for applying a status effect.
func StatusAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "status_add",
		Description: "Applies a timed status effect. Known presets such as Blessed or Poisoned fill in description and color.",
	}
}

// StatusAddHandler executes a status add request.
func StatusAddHandler(s *Session) mcp.ToolHandlerFor[StatusAddInput, StatusResult] {
	return handle(s, "status_add", true, func(_ context.Context, in StatusAddInput) (StatusResult, error) {
		entityID, err := requireID("entity_id", in.EntityID)
		if err != nil {
			return StatusResult{}, err
		}
		var effect combat.StatusEffect
		if _, ok := combat.StatusPreset(in.Name); ok && in.Description == "" && in.Color == "" {
			effect, err = s.engine.Tracker.AddPreset(entityID, in.Name, in.Duration)
		} else {
			effect, err = s.engine.Tracker.Add(entityID, combat.StatusEffect{
				Name:        in.Name,
				Description: in.Description,
				Duration:    in.Duration,
				Color:       in.Color,
			})
		}
		if err != nil {
			return StatusResult{}, err
		}
		return StatusResult{EntityID: entityID, Name: effect.Name, Duration: effect.Duration, Color: effect.Color}, nil
	})
}

// StatusRemoveTool defines the MCP tool schema for removing a status effect.
func StatusRemoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "status_remove",
		Description: "Removes a status effect and its condition. Absent effects are ignored.",
	}
}

// StatusRemoveHandler executes a status remove request.
func StatusRemoveHandler(s *Session) mcp.ToolHandlerFor[StatusRemoveInput, OKResult] {
	return handle(s, "status_remove", true, func(_ context.Context, in StatusRemoveInput) (OKResult, error) {
		entityID, err := requireID("entity_id", in.EntityID)
		if err != nil {
			return OKResult{}, err
		}
		if err := s.engine.Tracker.Remove(entityID, in.Name); err != nil {
			return OKResult{}, err
		}
		return OKResult{OK: true}, nil
	})
}

// ConditionAddTool defines the MCP tool schema for adding a bare condition.
func ConditionAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "condition_add",
		Description: "Adds a condition without a duration. With stack, a repeat is kept as \"name (2)\" and so on.",
	}
}

// ConditionAddHandler executes a condition add request.
func ConditionAddHandler(s *Session) mcp.ToolHandlerFor[ConditionInput, ConditionResult] {
	return handle(s, "condition_add", true, func(_ context.Context, in ConditionInput) (ConditionResult, error) {
		entityID, err := requireID("entity_id", in.EntityID)
		if err != nil {
			return ConditionResult{}, err
		}
		name := strings.TrimSpace(in.Name)
		if in.Stack {
			name, err = s.engine.Registry.StackCondition(entityID, in.Name)
		} else {
			err = s.engine.Registry.AddCondition(entityID, in.Name)
		}
		if err != nil {
			return ConditionResult{}, err
		}
		return conditionResult(s, entityID, name), nil
	})
}

// ConditionRemoveTool defines the MCP tool schema for removing a condition.
func ConditionRemoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "condition_remove",
		Description: "Removes a condition and any status effect of the same name. Absent conditions are ignored.",
	}
}

// ConditionRemoveHandler executes a condition remove request.
func ConditionRemoveHandler(s *Session) mcp.ToolHandlerFor[ConditionInput, ConditionResult] {
	return handle(s, "condition_remove", true, func(_ context.Context, in ConditionInput) (ConditionResult, error) {
		entityID, err := requireID("entity_id", in.EntityID)
		if err != nil {
			return ConditionResult{}, err
		}
		if err := s.engine.Registry.RemoveCondition(entityID, in.Name); err != nil {
			return ConditionResult{}, err
		}
		return conditionResult(s, entityID, strings.TrimSpace(in.Name)), nil
	})
}

func conditionResult(s *Session, entityID, name string) ConditionResult {
	entity, _ := s.engine.Registry.Get(entityID)
	conditions := append([]string{}, entity.Conditions...)
	return ConditionResult{EntityID: entityID, Name: name, Conditions: conditions}
}
