package domain

import (
	"context"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AttackTool defines the MCP tool schema for a weapon attack.
func AttackTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "attack",
		Description: "Resolves a weapon attack: d20 plus attack bonus against armor class, natural 20 doubles the damage dice",
	}
}

// AttackHandler executes an attack request.
func AttackHandler(s *Session) mcp.ToolHandlerFor[AttackInput, ActionResult] {
	return handle(s, "attack", true, func(_ context.Context, in AttackInput) (ActionResult, error) {
		weapon, err := combat.LookupWeapon(in.Weapon)
		if err != nil {
			return ActionResult{}, err
		}
		action, err := s.engine.Resolver.Attack(combat.AttackRequest{
			AttackerID:   in.AttackerID,
			TargetID:     in.TargetID,
			Weapon:       weapon,
			Advantage:    in.Advantage,
			Disadvantage: in.Disadvantage,
		})
		if err != nil {
			return ActionResult{}, err
		}
		return s.actionResult(action), nil
	})
}

// CastSpellTool defines the MCP tool schema for casting a spell.
func CastSpellTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "cast_spell",
		Description: "Casts a catalog spell at a target or a position. Area spells leave a marker on the map.",
	}
}

// CastSpellHandler executes a cast spell request.
func CastSpellHandler(s *Session) mcp.ToolHandlerFor[CastSpellInput, ActionResult] {
	return handle(s, "cast_spell", true, func(_ context.Context, in CastSpellInput) (ActionResult, error) {
		spell, err := combat.LookupSpell(in.Spell)
		if err != nil {
			return ActionResult{}, err
		}
		req := combat.CastRequest{
			CasterID:   in.CasterID,
			Spell:      spell,
			TargetID:   in.TargetID,
			SpellLevel: in.SpellLevel,
		}
		if in.TargetPosition != nil {
			p := in.TargetPosition.toCombat()
			req.TargetPosition = &p
		}
		action, err := s.engine.Resolver.CastSpell(req)
		if err != nil {
			return ActionResult{}, err
		}
		return s.actionResult(action), nil
	})
}

// MoveTool defines the MCP tool schema for a move action.
func MoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "move",
		Description: "Moves a combatant. During combat the distance is limited by its remaining speed.",
	}
}

// MoveHandler executes a move request.
func MoveHandler(s *Session) mcp.ToolHandlerFor[MoveInput, ActionResult] {
	return handle(s, "move", true, func(_ context.Context, in MoveInput) (ActionResult, error) {
		action, err := s.engine.Resolver.Move(in.EntityID, in.To.toCombat())
		if err != nil {
			return ActionResult{}, err
		}
		return s.actionResult(action), nil
	})
}

// DashTool defines the MCP tool schema for the dash action.
func DashTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dash",
		Description: "Spends the action to double movement for this turn",
	}
}

// DashHandler executes a dash request.
func DashHandler(s *Session) mcp.ToolHandlerFor[EntityIDInput, ActionResult] {
	return handle(s, "dash", true, func(_ context.Context, in EntityIDInput) (ActionResult, error) {
		action, err := s.engine.Resolver.Dash(in.EntityID)
		if err != nil {
			return ActionResult{}, err
		}
		return s.actionResult(action), nil
	})
}

// DodgeTool defines the MCP tool schema for the dodge action.
func DodgeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dodge",
		Description: "Spends the action to dodge until the combatant's next turn",
	}
}

// DodgeHandler executes a dodge request.
func DodgeHandler(s *Session) mcp.ToolHandlerFor[EntityIDInput, ActionResult] {
	return handle(s, "dodge", true, func(_ context.Context, in EntityIDInput) (ActionResult, error) {
		action, err := s.engine.Resolver.Dodge(in.EntityID)
		if err != nil {
			return ActionResult{}, err
		}
		return s.actionResult(action), nil
	})
}

// DamageTool defines the MCP tool schema for GM damage.
func DamageTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "damage",
		Description: "Applies damage decided by the game master. Hit points never go below zero.",
	}
}

// DamageHandler executes a damage request.
func DamageHandler(s *Session) mcp.ToolHandlerFor[AmountInput, ActionResult] {
	return handle(s, "damage", true, func(_ context.Context, in AmountInput) (ActionResult, error) {
		action, err := s.engine.Resolver.Damage(in.EntityID, in.Amount, combat.DamageType(normalizeKey(in.DamageType)))
		if err != nil {
			return ActionResult{}, err
		}
		return s.actionResult(action), nil
	})
}

// HealTool defines the MCP tool schema for GM healing.
func HealTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "heal",
		Description: "Restores hit points up to the maximum",
	}
}

// HealHandler executes a heal request.
func HealHandler(s *Session) mcp.ToolHandlerFor[AmountInput, ActionResult] {
	return handle(s, "heal", true, func(_ context.Context, in AmountInput) (ActionResult, error) {
		action, err := s.engine.Resolver.Heal(in.EntityID, in.Amount)
		if err != nil {
			return ActionResult{}, err
		}
		return s.actionResult(action), nil
	})
}

func (s *Session) actionResult(action combat.Action) ActionResult {
	return ActionResult{
		ActionID:    action.ID,
		Type:        string(action.Type),
		Success:     action.Success,
		Roll:        action.Roll,
		RollTotal:   action.RollTotal,
		Damage:      action.Damage,
		DamageType:  string(action.DamageType),
		HealAmount:  action.HealAmount,
		CriticalHit: action.CriticalHit,
		Description: s.narrate(action),
	}
}
