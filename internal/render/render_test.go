package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/core/dice"
	"github.com/louisbranch/battlegrid/internal/platform/id"
)

func rgb(c color.Color) [3]uint8 {
	r, g, b, _ := c.RGBA()
	return [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func TestAdapterTracksEngine(t *testing.T) {
	m := New(Config{})
	e := combat.New(combat.Config{
		Dice:    dice.NewSequenceSource(dice.NewSource(1), 16, 7),
		Adapter: m,
		Clock:   func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) },
		IDs:     id.Sequential("id"),
	})
	fighter, err := e.Registry.Add(combat.EntitySpec{Name: "Fighter", Type: combat.EntityPlayer, Stats: combat.Stats{MaxHP: 12, ArmorClass: 16, Speed: 30}})
	if err != nil {
		t.Fatalf("add fighter: %v", err)
	}
	goblin, err := e.Registry.Add(combat.EntitySpec{Name: "Goblin", Type: combat.EntityEnemy, Stats: combat.Stats{MaxHP: 7, ArmorClass: 13, Speed: 30}})
	if err != nil {
		t.Fatalf("add goblin: %v", err)
	}
	if got := len(m.Tokens()); got != 2 {
		t.Fatalf("tokens = %d, want 2", got)
	}

	if ok, err := e.Registry.Move(goblin.ID, combat.Position{X: 3, Z: 1, GridX: 3, GridZ: 1}); err != nil || !ok {
		t.Fatalf("move = %v, %v", ok, err)
	}
	for _, token := range m.Tokens() {
		if token.ID == goblin.ID && (token.Position.X != 3 || token.Position.Z != 1) {
			t.Fatalf("goblin token at %+v", token.Position)
		}
	}

	if err := e.Registry.Remove(fighter.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tokens := m.Tokens()
	if len(tokens) != 1 || tokens[0].ID != goblin.ID {
		t.Fatalf("tokens = %+v", tokens)
	}
}

func TestAdapterFollowsTurnSelection(t *testing.T) {
	m := New(Config{})
	e := combat.New(combat.Config{
		Dice:    dice.NewSequenceSource(dice.NewSource(1), 18, 5),
		Adapter: m,
		Clock:   func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) },
		IDs:     id.Sequential("id"),
	})
	fighter, err := e.Registry.Add(combat.EntitySpec{Name: "Fighter", Type: combat.EntityPlayer, Stats: combat.Stats{MaxHP: 12, ArmorClass: 16, Speed: 30}})
	if err != nil {
		t.Fatalf("add fighter: %v", err)
	}
	goblin, err := e.Registry.Add(combat.EntitySpec{Name: "Goblin", Type: combat.EntityEnemy, Stats: combat.Stats{MaxHP: 7, ArmorClass: 13, Speed: 30}})
	if err != nil {
		t.Fatalf("add goblin: %v", err)
	}

	selected := func() map[string]bool {
		out := map[string]bool{}
		for _, token := range m.Tokens() {
			out[token.ID] = token.IsSelected
		}
		return out
	}

	if !e.Turns.StartCombat() {
		t.Fatal("start combat")
	}
	if got := selected(); !got[fighter.ID] || got[goblin.ID] {
		t.Fatalf("selection after start = %v, want fighter only", got)
	}

	e.Turns.NextTurn()
	if got := selected(); got[fighter.ID] || !got[goblin.ID] {
		t.Fatalf("selection after next turn = %v, want goblin only", got)
	}

	if err := e.Registry.Select(fighter.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := selected(); !got[fighter.ID] || got[goblin.ID] {
		t.Fatalf("selection after select = %v, want fighter only", got)
	}

	e.Turns.EndCombat()
	if got := selected(); got[fighter.ID] || got[goblin.ID] {
		t.Fatalf("selection after end = %v, want none", got)
	}
}

func TestAreasAndRanges(t *testing.T) {
	m := New(Config{})
	m.ShowArea(combat.SpellArea{ID: "b", Shape: combat.AreaCone, Size: 15, Angle: 60, Color: "#ff6b6b"})
	m.ShowArea(combat.SpellArea{ID: "a", Shape: combat.AreaCircle, Size: 20, Color: "#ff6b6b"})
	if areas := m.Areas(); len(areas) != 2 || areas[0].ID != "a" {
		t.Fatalf("areas = %+v", areas)
	}
	m.RemoveArea("a")
	if areas := m.Areas(); len(areas) != 1 || areas[0].ID != "b" {
		t.Fatalf("areas after remove = %+v", areas)
	}

	m.ShowMovementRange("x", combat.Position{}, 30)
	m.ClearIndicators("x")
	if len(m.ranges) != 0 {
		t.Fatalf("ranges = %+v", m.ranges)
	}
}

func TestDrawColorsTokensAndAreas(t *testing.T) {
	m := New(Config{Width: 400, Height: 400, CellPixels: 40})
	m.PlaceToken(combat.Entity{ID: "p", Name: "P", Type: combat.EntityPlayer, Size: combat.SizeMedium,
		Stats: combat.Stats{MaxHP: 10, CurrentHP: 10}})
	m.PlaceToken(combat.Entity{ID: "d", Name: "D", Type: combat.EntityEnemy, Size: combat.SizeMedium,
		Stats: combat.Stats{MaxHP: 10, CurrentHP: 0}, Position: combat.Position{X: -3}})
	m.ShowArea(combat.SpellArea{ID: "fire", Shape: combat.AreaSquare, Size: 10, Color: "#ff6b6b", Origin: combat.Position{X: 3, Z: 3}})

	img := m.Draw()
	tests := []struct {
		name string
		x, y int
		want [3]uint8
	}{
		{"player token", 200, 200, [3]uint8{0x00, 0x80, 0xff}},
		{"unconscious token", 80, 200, [3]uint8{0x55, 0x55, 0x55}},
		{"empty square", 340, 60, [3]uint8{0x1e, 0x1e, 0x24}},
	}
	for _, tt := range tests {
		if got := rgb(img.At(tt.x, tt.y)); got != tt.want {
			t.Fatalf("%s pixel = %v, want %v", tt.name, got, tt.want)
		}
	}
	if got := rgb(img.At(330, 330)); got == [3]uint8{0x1e, 0x1e, 0x24} {
		t.Fatal("area pixel was not painted")
	}
}

func TestEncodeAndSavePNG(t *testing.T) {
	m := New(Config{Width: 120, Height: 80})
	m.PlaceToken(combat.Entity{ID: "p", Name: "P", Type: combat.EntityNPC, Stats: combat.Stats{MaxHP: 1, CurrentHP: 1}})

	var buf bytes.Buffer
	if err := m.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 120, 80) {
		t.Fatalf("bounds = %v", img.Bounds())
	}

	path := filepath.Join(t.TempDir(), "map.png")
	if err := m.SavePNG(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("stat %s: %v", path, err)
	}
}

func TestSyncReplacesTokens(t *testing.T) {
	m := New(Config{})
	m.PlaceToken(combat.Entity{ID: "stale"})
	state := combat.NewState()
	state.Entities["fresh"] = combat.Entity{ID: "fresh", Name: "Fresh"}
	state.Order = []string{"fresh"}
	m.Sync(state)
	tokens := m.Tokens()
	if len(tokens) != 1 || tokens[0].ID != "fresh" {
		t.Fatalf("tokens = %+v", tokens)
	}
}
