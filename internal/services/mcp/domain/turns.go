package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/battlegrid/internal/core/dice"
	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CombatStartTool defines the MCP tool schema for starting combat.
func CombatStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_start",
		Description: "Rolls initiative for every combatant and starts round 1",
	}
}

// CombatStartHandler executes a combat start request.
func CombatStartHandler(s *Session) mcp.ToolHandlerFor[EmptyInput, TurnResult] {
	return handle(s, "combat_start", true, func(context.Context, EmptyInput) (TurnResult, error) {
		if !s.engine.Turns.StartCombat() {
			return TurnResult{}, errors.New("add at least one entity before starting combat")
		}
		return s.turnResult(nil), nil
	})
}

// TurnNextTool defines the MCP tool schema for advancing the turn.
func TurnNextTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "turn_next",
		Description: "Ends the current turn, ticks its status effects and starts the next turn",
	}
}

// TurnNextHandler executes a next turn request.
func TurnNextHandler(s *Session) mcp.ToolHandlerFor[EmptyInput, TurnResult] {
	return handle(s, "turn_next", true, func(context.Context, EmptyInput) (TurnResult, error) {
		if !s.engine.Turns.Active() {
			return TurnResult{}, errors.New("combat is not active")
		}
		result := s.engine.Turns.NextTurn()
		expired := make([]string, 0, len(result.Expired))
		for _, effect := range result.Expired {
			expired = append(expired, effect.Name)
		}
		return s.turnResult(expired), nil
	})
}

// CombatEndTool defines the MCP tool schema for ending combat.
func CombatEndTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_end",
		Description: "Ends combat and clears turn flags. The turn order is kept until combat starts again.",
	}
}

// CombatEndHandler executes a combat end request.
func CombatEndHandler(s *Session) mcp.ToolHandlerFor[EmptyInput, TurnResult] {
	return handle(s, "combat_end", true, func(context.Context, EmptyInput) (TurnResult, error) {
		s.engine.Turns.EndCombat()
		return s.turnResult(nil), nil
	})
}

// InitiativeSetTool defines the MCP tool schema for changing initiative.
func InitiativeSetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "initiative_set",
		Description: "Sets or rerolls one combatant's initiative. The current turn stays with the same combatant.",
	}
}

// InitiativeSetHandler executes an initiative set request.
func InitiativeSetHandler(s *Session) mcp.ToolHandlerFor[InitiativeSetInput, TurnResult] {
	return handle(s, "initiative_set", true, func(_ context.Context, in InitiativeSetInput) (TurnResult, error) {
		entityID, err := requireID("entity_id", in.EntityID)
		if err != nil {
			return TurnResult{}, err
		}
		if in.Value != nil {
			err = s.engine.Turns.SetInitiative(entityID, *in.Value)
		} else {
			_, err = s.engine.Turns.RollInitiative(entityID)
		}
		if err != nil {
			return TurnResult{}, err
		}
		return s.turnResult(nil), nil
	})
}

// InitiativeSwapTool defines the MCP tool schema for reordering turns.
func InitiativeSwapTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "initiative_swap",
		Description: "Swaps two turn order slots, numbered from 1",
	}
}

// InitiativeSwapHandler executes an initiative swap request.
func InitiativeSwapHandler(s *Session) mcp.ToolHandlerFor[InitiativeSwapInput, TurnResult] {
	return handle(s, "initiative_swap", true, func(_ context.Context, in InitiativeSwapInput) (TurnResult, error) {
		if err := s.engine.Turns.SwapInitiative(in.First-1, in.Second-1); err != nil {
			return TurnResult{}, err
		}
		return s.turnResult(nil), nil
	})
}

func (s *Session) turnResult(expired []string) TurnResult {
	turns := s.engine.Turns
	result := TurnResult{
		Active:  turns.Active(),
		Round:   turns.Round(),
		Order:   []string{},
		Expired: expired,
	}
	for _, entry := range turns.Order() {
		result.Order = append(result.Order, entry.EntityID)
	}
	if current, ok := turns.Current(); ok {
		result.CurrentID = current.ID
		result.CurrentName = current.Name
	}
	return result
}

// DiceRollTool defines the MCP tool schema for a free dice roll.
func DiceRollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_roll",
		Description: "Rolls a dice expression such as 1d20+5, a pool of mixed dice, or both, with the encounter dice",
	}
}

// DiceRollHandler executes a dice roll request. Rolls draw from the engine
// source but are not logged as actions.
func DiceRollHandler(s *Session) mcp.ToolHandlerFor[DiceRollInput, DiceRollResult] {
	return handle(s, "dice_roll", false, func(_ context.Context, in DiceRollInput) (DiceRollResult, error) {
		if strings.TrimSpace(in.Expression) == "" && len(in.Pool) == 0 {
			return DiceRollResult{}, invalidDice(in.Expression, dice.ErrMissingDice)
		}
		result := DiceRollResult{Dice: []int{}}
		if strings.TrimSpace(in.Expression) != "" {
			expr, err := dice.ParseExpression(in.Expression)
			if err != nil {
				return DiceRollResult{}, invalidDice(in.Expression, err)
			}
			roll := expr.Roll(s.dice, in.Critical)
			result.Expression = expr.String()
			result.Dice = roll.Dice
			result.Modifier = roll.Modifier
			result.Total = roll.Total
		}
		if len(in.Pool) == 0 {
			return result, nil
		}

		specs := make([]dice.Spec, 0, len(in.Pool))
		for _, group := range in.Pool {
			specs = append(specs, dice.Spec{Sides: group.Sides, Count: group.Count})
		}
		pool, err := dice.RollWithSource(s.dice, criticalPool(specs, in.Critical))
		if err != nil {
			return DiceRollResult{}, invalidDice(poolString(specs), err)
		}
		for _, roll := range pool.Rolls {
			result.Pool = append(result.Pool, DicePoolRoll{Sides: roll.Sides, Dice: roll.Results, Total: roll.Total})
		}
		result.Total += pool.Total
		return result, nil
	})
}

// criticalPool rolls every group twice on a critical, so each group stays
// within the per-spec bounds.
func criticalPool(specs []dice.Spec, critical bool) []dice.Spec {
	if !critical {
		return specs
	}
	doubled := make([]dice.Spec, 0, 2*len(specs))
	for _, spec := range specs {
		doubled = append(doubled, spec, spec)
	}
	return doubled
}

func poolString(specs []dice.Spec) string {
	parts := make([]string, 0, len(specs))
	for _, spec := range specs {
		parts = append(parts, fmt.Sprintf("%dd%d", spec.Count, spec.Sides))
	}
	return strings.Join(parts, "+")
}

func invalidDice(expression string, err error) error {
	return apperrors.WrapWithMetadata(apperrors.CodeDiceInvalidExpression,
		fmt.Sprintf("invalid dice expression %q", expression),
		map[string]string{"Expression": expression}, err)
}
