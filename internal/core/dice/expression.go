package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Bounds of a single expression. Larger pools are rejected at parse time.
const (
	MaxCount    = 100
	MaxSides    = 1000
	MaxModifier = 10000
)

// Expression is a parsed "NdS+M" dice expression.
type Expression struct {
	Count    int
	Sides    int
	Modifier int
}

// ParseExpression parses "NdS", "NdS+M" and "NdS-M". Whitespace is ignored
// and the d is case-insensitive. Counts above MaxCount, sides above MaxSides
// and modifiers beyond MaxModifier are rejected. Anything else returns
// ErrInvalidExpression.
func ParseExpression(value string) (Expression, error) {
	raw := strings.ToLower(strings.Join(strings.Fields(value), ""))
	countPart, rest, ok := strings.Cut(raw, "d")
	if !ok || countPart == "" || rest == "" {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, value)
	}

	sidesPart := rest
	modifier := 0
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		sidesPart = rest[:i]
		modPart := rest[i+1:]
		if modPart == "" || strings.ContainsAny(modPart, "+-") {
			return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, value)
		}
		mod, err := strconv.Atoi(modPart)
		if err != nil || mod > MaxModifier {
			return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, value)
		}
		modifier = mod
		if rest[i] == '-' {
			modifier = -mod
		}
	}

	count, err := strconv.Atoi(countPart)
	if err != nil || count <= 0 || count > MaxCount {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, value)
	}
	sides, err := strconv.Atoi(sidesPart)
	if err != nil || sides <= 0 || sides > MaxSides {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, value)
	}

	return Expression{Count: count, Sides: sides, Modifier: modifier}, nil
}

// MustParseExpression panics on invalid input. It is meant for static catalogs.
func MustParseExpression(value string) Expression {
	expr, err := ParseExpression(value)
	if err != nil {
		panic(err)
	}
	return expr
}

// String renders the canonical form.
func (e Expression) String() string {
	switch {
	case e.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", e.Count, e.Sides, e.Modifier)
	case e.Modifier < 0:
		return fmt.Sprintf("%dd%d-%d", e.Count, e.Sides, -e.Modifier)
	default:
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
}

// ExpressionRoll is the outcome of rolling an Expression.
type ExpressionRoll struct {
	Dice     []int
	Modifier int
	Total    int
	Critical bool
}

// Roll rolls the expression. A critical roll doubles the number of dice but
// not the modifier. Totals never go below zero. Expressions built by hand are
// clamped to the parse bounds first.
func (e Expression) Roll(src Source, critical bool) ExpressionRoll {
	count := clamp(e.Count, 0, MaxCount)
	if critical {
		count *= 2
	}
	faces := rollN(src, clamp(e.Sides, 1, MaxSides), count)
	total := sum(faces) + e.Modifier
	if total < 0 {
		total = 0
	}
	return ExpressionRoll{
		Dice:     faces,
		Modifier: e.Modifier,
		Total:    total,
		Critical: critical,
	}
}

// Scale returns a copy with the dice count multiplied by factor, capped at
// MaxCount.
func (e Expression) Scale(factor int) Expression {
	factor = clamp(factor, 1, MaxCount)
	e.Count = clamp(clamp(e.Count, 0, MaxCount)*factor, 0, MaxCount)
	return e
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
