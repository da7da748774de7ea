package id

import (
	"strings"
	"testing"
)

func TestNewIDFormat(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(value) != 26 {
		t.Fatalf("expected 26-character id, got %d", len(value))
	}
	if strings.Contains(value, "=") {
		t.Fatal("expected no padding")
	}
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
			t.Fatalf("unexpected character %q in id", r)
		}
	}

	decoded, err := encoding.DecodeString(strings.ToUpper(value))
	if err != nil {
		t.Fatalf("decode id: %v", err)
	}
	if decoded[6]>>4 != 0x4 {
		t.Fatalf("expected version 4, got %x", decoded[6]>>4)
	}
	if decoded[8]&0xc0 != 0x80 {
		t.Fatalf("expected RFC 4122 variant, got %x", decoded[8]&0xc0)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		value, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if seen[value] {
			t.Fatalf("duplicate id %q", value)
		}
		seen[value] = true
	}
}

func TestSequential(t *testing.T) {
	gen := Sequential("entity")
	first, _ := gen()
	second, _ := gen()
	if first != "entity-1" || second != "entity-2" {
		t.Fatalf("expected entity-1, entity-2, got %q, %q", first, second)
	}
}
