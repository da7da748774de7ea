package dice

import (
	"errors"
	"testing"
)

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input string
		want  Expression
	}{
		{"2d6+3", Expression{Count: 2, Sides: 6, Modifier: 3}},
		{"1d8-1", Expression{Count: 1, Sides: 8, Modifier: -1}},
		{"8d6", Expression{Count: 8, Sides: 6}},
		{" 1D12 + 3 ", Expression{Count: 1, Sides: 12, Modifier: 3}},
	}
	for _, tt := range tests {
		got, err := ParseExpression(tt.input)
		if err != nil {
			t.Fatalf("ParseExpression(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("ParseExpression(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestParseExpressionRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "d6", "2d", "abc", "0d6", "2d0", "2d6+", "2d6+1+1", "2x6", "-1d6",
		"101d6", "1d1001", "4611686018427387904d6", "1d6+10001", "99999999999999999999d6"} {
		if _, err := ParseExpression(input); !errors.Is(err, ErrInvalidExpression) {
			t.Errorf("ParseExpression(%q) error = %v, want ErrInvalidExpression", input, err)
		}
	}
}

func TestExpressionString(t *testing.T) {
	for _, input := range []string{"2d6+3", "1d8-1", "8d6"} {
		if got := MustParseExpression(input).String(); got != input {
			t.Errorf("String() = %q, want %q", got, input)
		}
	}
}

func TestExpressionRollCriticalDoublesDiceOnly(t *testing.T) {
	expr := MustParseExpression("1d4+3")

	normal := expr.Roll(NewSequenceSource(nil, 2, 3), false)
	if normal.Total != 5 || len(normal.Dice) != 1 {
		t.Fatalf("normal roll = %+v, want total 5 with one die", normal)
	}

	crit := expr.Roll(NewSequenceSource(nil, 2, 3), true)
	if len(crit.Dice) != 2 {
		t.Fatalf("critical roll used %d dice, want 2", len(crit.Dice))
	}
	if crit.Total != 2+3+3 {
		t.Fatalf("critical total = %d, want 8 (modifier applied once)", crit.Total)
	}
}

func TestExpressionRollFloorsAtZero(t *testing.T) {
	got := MustParseExpression("1d4-5").Roll(NewSequenceSource(nil, 1), false)
	if got.Total != 0 {
		t.Fatalf("Total = %d, want 0", got.Total)
	}
}

func TestExpressionScale(t *testing.T) {
	got := MustParseExpression("1d8+3").Scale(3)
	if got.Count != 3 || got.Modifier != 3 {
		t.Fatalf("Scale(3) = %+v, want 3d8+3", got)
	}
}

func TestParseExpressionBounds(t *testing.T) {
	got, err := ParseExpression("100d1000+10000")
	if err != nil {
		t.Fatalf("ParseExpression at the bounds: %v", err)
	}
	if got.Count != MaxCount || got.Sides != MaxSides || got.Modifier != MaxModifier {
		t.Fatalf("got %+v", got)
	}
}

func TestExpressionRollClampsHandBuiltPools(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expression
		critical bool
		want     int
	}{
		{name: "huge count", expr: Expression{Count: 1 << 62, Sides: 6}, want: MaxCount},
		{name: "huge count critical", expr: Expression{Count: 1 << 62, Sides: 6}, critical: true, want: 2 * MaxCount},
		{name: "negative count", expr: Expression{Count: -3, Sides: 6}, want: 0},
		{name: "zero sides", expr: Expression{Count: 2, Sides: 0}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.expr.Roll(NewSource(1), tt.critical)
			if len(got.Dice) != tt.want {
				t.Fatalf("rolled %d dice, want %d", len(got.Dice), tt.want)
			}
		})
	}
}

func TestExpressionScaleCapsCount(t *testing.T) {
	if got := MustParseExpression("60d6").Scale(9); got.Count != MaxCount {
		t.Fatalf("Scale(9) count = %d, want %d", got.Count, MaxCount)
	}
	if got := (Expression{Count: 1 << 62, Sides: 6}).Scale(1 << 62); got.Count != MaxCount {
		t.Fatalf("Scale overflow count = %d, want %d", got.Count, MaxCount)
	}
}
