package combat

// SceneAdapter is the presentation side of an encounter. Implementations keep
// their own render handles keyed by entity or area id; the engine never holds
// them. Calls are fire-and-forget: an adapter that loads assets asynchronously
// must not block the engine.
type SceneAdapter interface {
	PlaceToken(entity Entity)
	UpdateToken(entity Entity)
	MoveToken(entityID string, position Position)
	RemoveToken(entityID string)
	ShowMovementRange(entityID string, origin Position, feet int)
	ClearIndicators(entityID string)
	ShowArea(area SpellArea)
	RemoveArea(areaID string)
}

// NopAdapter is a SceneAdapter that draws nothing.
type NopAdapter struct{}

func (NopAdapter) PlaceToken(Entity) {}
func (NopAdapter) UpdateToken(Entity) {}
func (NopAdapter) MoveToken(string, Position) {}
func (NopAdapter) RemoveToken(string) {}
func (NopAdapter) ShowMovementRange(string, Position, int) {}
func (NopAdapter) ClearIndicators(string) {}
func (NopAdapter) ShowArea(SpellArea) {}
func (NopAdapter) RemoveArea(string) {}
