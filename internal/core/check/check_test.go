package check

import "testing"

func TestAgainst(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		target     int
		wantOK     bool
		wantMargin int
	}{
		{name: "above", total: 18, target: 13, wantOK: true, wantMargin: 5},
		{name: "tie hits", total: 13, target: 13, wantOK: true, wantMargin: 0},
		{name: "below", total: 9, target: 13, wantOK: false, wantMargin: -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Against(tt.total, tt.target)
			if got.Success != tt.wantOK {
				t.Fatalf("Success = %v, want %v", got.Success, tt.wantOK)
			}
			if got.Margin != tt.wantMargin {
				t.Fatalf("Margin = %d, want %d", got.Margin, tt.wantMargin)
			}
		})
	}
}

func TestHalve(t *testing.T) {
	if got := Halve(27, true); got != 13 {
		t.Fatalf("Halve(27, true) = %d, want 13", got)
	}
	if got := Halve(27, false); got != 27 {
		t.Fatalf("Halve(27, false) = %d, want 27", got)
	}
}
