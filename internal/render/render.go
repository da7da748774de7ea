// Package render draws encounters as PNG battle maps. A Map implements
// combat.SceneAdapter and owns every drawing handle itself.
package render

import (
	"fmt"
	"image"
	"io"
	"math"
	"sort"
	"sync"

	"github.com/fogleman/gg"

	"github.com/louisbranch/battlegrid/internal/combat"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
	defaultCell   = 40

	backgroundColor = "#1e1e24"
	gridColor       = "#3a3a44"
	rangeColor      = "#ffffff"
	selectedColor   = "#ffd700"
	downColor       = "#555555"
	labelColor      = "#f0f0f0"
	areaAlpha       = "66"
)

// Config sizes the canvas. CellPixels is the width of one five-foot square;
// world origin sits at the canvas center.
type Config struct {
	Width      int
	Height     int
	CellPixels float64
}

// Map is a headless battle map. It is safe for concurrent use.
type Map struct {
	cfg Config

	mu     sync.Mutex
	tokens map[string]combat.Entity
	ranges map[string]movementRange
	areas  map[string]combat.SpellArea
}

type movementRange struct {
	origin combat.Position
	feet   int
}

var _ combat.SceneAdapter = (*Map)(nil)

// New returns an empty map. Zero config fields take defaults.
func New(cfg Config) *Map {
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	if cfg.CellPixels <= 0 {
		cfg.CellPixels = defaultCell
	}
	return &Map{
		cfg:    cfg,
		tokens: map[string]combat.Entity{},
		ranges: map[string]movementRange{},
		areas:  map[string]combat.SpellArea{},
	}
}

// PlaceToken adds or replaces the token for entity.
func (m *Map) PlaceToken(entity combat.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[entity.ID] = entity.Clone()
}

// UpdateToken redraws entity with its current flags, HP and conditions.
func (m *Map) UpdateToken(entity combat.Entity) {
	m.PlaceToken(entity)
}

// MoveToken repositions a placed token. Unknown ids are ignored.
func (m *Map) MoveToken(entityID string, position combat.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entity, ok := m.tokens[entityID]; ok {
		entity.Position = position.Clone()
		m.tokens[entityID] = entity
	}
}

// RemoveToken drops the token and its movement range.
func (m *Map) RemoveToken(entityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, entityID)
	delete(m.ranges, entityID)
}

// ShowMovementRange outlines how far entityID can still move from origin.
func (m *Map) ShowMovementRange(entityID string, origin combat.Position, feet int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ranges[entityID] = movementRange{origin: origin.Clone(), feet: feet}
}

// ClearIndicators hides the movement range of entityID.
func (m *Map) ClearIndicators(entityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ranges, entityID)
}

// ShowArea draws a spell area until RemoveArea is called with its id.
func (m *Map) ShowArea(area combat.SpellArea) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.areas[area.ID] = area
}

// RemoveArea hides a spell area.
func (m *Map) RemoveArea(areaID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.areas, areaID)
}

// Tokens returns the placed tokens sorted by id.
func (m *Map) Tokens() []combat.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]combat.Entity, 0, len(m.tokens))
	for _, entity := range m.tokens {
		out = append(out, entity.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Areas returns the visible spell areas sorted by id.
func (m *Map) Areas() []combat.SpellArea {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]combat.SpellArea, 0, len(m.areas))
	for _, area := range m.areas {
		out = append(out, area)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sync replaces the map contents with the entities of state, for maps
// attached after an encounter already exists.
func (m *Map) Sync(state combat.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = map[string]combat.Entity{}
	m.ranges = map[string]movementRange{}
	for _, entity := range state.EntityList() {
		m.tokens[entity.ID] = entity.Clone()
	}
}

// Draw renders the current map. Layers from bottom to top: grid, areas,
// movement ranges, tokens.
func (m *Map) Draw() image.Image {
	tokens := m.Tokens()
	areas := m.Areas()
	m.mu.Lock()
	ranges := make([]movementRange, 0, len(m.ranges))
	for _, r := range m.ranges {
		ranges = append(ranges, r)
	}
	m.mu.Unlock()

	dc := gg.NewContext(m.cfg.Width, m.cfg.Height)
	dc.SetHexColor(backgroundColor)
	dc.Clear()
	m.drawGrid(dc)
	for _, area := range areas {
		m.drawArea(dc, area)
	}
	for _, r := range ranges {
		x, y := m.project(r.origin)
		dc.SetHexColor(rangeColor)
		dc.SetLineWidth(1)
		dc.DrawCircle(x, y, m.feet(float64(r.feet)))
		dc.Stroke()
	}
	for _, entity := range tokens {
		m.drawToken(dc, entity)
	}
	return dc.Image()
}

// EncodePNG writes the current map as PNG.
func (m *Map) EncodePNG(w io.Writer) error {
	dc := gg.NewContextForImage(m.Draw())
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode battle map: %w", err)
	}
	return nil
}

// SavePNG writes the current map to path.
func (m *Map) SavePNG(path string) error {
	if err := gg.SavePNG(path, m.Draw()); err != nil {
		return fmt.Errorf("save battle map: %w", err)
	}
	return nil
}

// project converts world units to canvas pixels.
func (m *Map) project(p combat.Position) (float64, float64) {
	return float64(m.cfg.Width)/2 + p.X*m.cfg.CellPixels,
		float64(m.cfg.Height)/2 + p.Z*m.cfg.CellPixels
}

// feet converts a distance in feet to pixels.
func (m *Map) feet(feet float64) float64 {
	return feet / combat.FeetPerUnit * m.cfg.CellPixels
}

func (m *Map) drawGrid(dc *gg.Context) {
	w, h := float64(m.cfg.Width), float64(m.cfg.Height)
	cell := m.cfg.CellPixels
	offX := math.Mod(w/2, cell)
	offY := math.Mod(h/2, cell)
	dc.SetHexColor(gridColor)
	dc.SetLineWidth(1)
	for x := offX; x <= w; x += cell {
		dc.DrawLine(x, 0, x, h)
	}
	for y := offY; y <= h; y += cell {
		dc.DrawLine(0, y, w, y)
	}
	dc.Stroke()
}

func (m *Map) drawArea(dc *gg.Context, area combat.SpellArea) {
	x, y := m.project(area.Origin)
	size := m.feet(area.Size)
	switch area.Shape {
	case combat.AreaCircle:
		dc.DrawCircle(x, y, size)
	case combat.AreaSquare:
		dc.DrawRectangle(x-size/2, y-size/2, size, size)
	case combat.AreaCone:
		half := gg.Radians(area.Angle) / 2
		dc.MoveTo(x, y)
		dc.DrawArc(x, y, size, -half, half)
		dc.ClosePath()
	case combat.AreaLine:
		dc.DrawRectangle(x, y-m.cfg.CellPixels/2, size, m.cfg.CellPixels)
	default:
		return
	}
	dc.SetHexColor(area.Color + areaAlpha)
	dc.Fill()
}

func (m *Map) drawToken(dc *gg.Context, entity combat.Entity) {
	x, y := m.project(entity.Position)
	radius := m.cfg.CellPixels / 2 * combat.SizeScale(entity.Size) * 0.9

	if entity.IsFlying {
		// Shadow on the ground, token lifted by its height.
		dc.SetRGBA(0, 0, 0, 0.4)
		dc.DrawCircle(x, y, radius)
		dc.Fill()
		y -= m.feet(entity.FlyingHeight) / 2
	}

	fill := combat.TypeColor(entity.Type)
	if !entity.Alive() {
		fill = downColor
	}
	dc.SetHexColor(fill)
	dc.DrawCircle(x, y, radius)
	dc.Fill()

	if entity.IsSelected {
		dc.SetHexColor(selectedColor)
		dc.SetLineWidth(3)
		dc.DrawCircle(x, y, radius+2)
		dc.Stroke()
	}

	if entity.Stats.MaxHP > 0 {
		ratio := float64(entity.Stats.CurrentHP) / float64(entity.Stats.MaxHP)
		barY := y + radius + 3
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawRectangle(x-radius, barY, 2*radius, 4)
		dc.Fill()
		dc.SetRGB(1-ratio, ratio, 0)
		dc.DrawRectangle(x-radius, barY, 2*radius*ratio, 4)
		dc.Fill()
	}

	dc.SetHexColor(labelColor)
	dc.DrawStringAnchored(entity.Name, x, y+radius+16, 0.5, 0.5)
}
