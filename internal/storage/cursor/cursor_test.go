package cursor

import "testing"

func TestEncodeDecode(t *testing.T) {
	token, err := Encode(Next(40, "goblin"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	c, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Offset != 40 {
		t.Fatalf("offset = %d, want 40", c.Offset)
	}
	if err := ValidateFilterHash(c, "goblin"); err != nil {
		t.Fatalf("validate filter: %v", err)
	}
	if err := ValidateFilterHash(c, "dragon"); err == nil {
		t.Fatal("expected filter mismatch")
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "%%%"},
		{name: "not json", token: "bm90LWpzb24="},
		{name: "negative offset", token: "eyJvZmZzZXQiOi0xfQ=="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.token); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestHashFilterEmpty(t *testing.T) {
	if HashFilter("") != "" {
		t.Fatal("expected empty hash for empty filter")
	}
	if HashFilter("a") == HashFilter("b") {
		t.Fatal("expected distinct hashes")
	}
}
