package combat

import (
	"testing"
	"time"

	"github.com/louisbranch/battlegrid/internal/core/dice"
	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
	"github.com/louisbranch/battlegrid/internal/platform/id"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type recordingAdapter struct {
	NopAdapter
	placed  []string
	removed []string
	moved   []string
	ranges  map[string]int
	areas   []SpellArea
	gone    []string
}

func (a *recordingAdapter) PlaceToken(entity Entity) { a.placed = append(a.placed, entity.ID) }
func (a *recordingAdapter) RemoveToken(entityID string) { a.removed = append(a.removed, entityID) }
func (a *recordingAdapter) MoveToken(entityID string, _ Position) { a.moved = append(a.moved, entityID) }
func (a *recordingAdapter) ShowArea(area SpellArea) { a.areas = append(a.areas, area) }
func (a *recordingAdapter) RemoveArea(areaID string) { a.gone = append(a.gone, areaID) }

func (a *recordingAdapter) ShowMovementRange(entityID string, _ Position, feet int) {
	if a.ranges == nil {
		a.ranges = map[string]int{}
	}
	a.ranges[entityID] = feet
}

type testEngine struct {
	*Engine
	dice    *dice.SequenceSource
	adapter *recordingAdapter
	events  []Event
}

func newTestEngine(t *testing.T, faces ...int) *testEngine {
	t.Helper()
	te := &testEngine{
		dice:    dice.NewSequenceSource(dice.NewSource(7), faces...),
		adapter: &recordingAdapter{},
	}
	te.Engine = New(Config{
		Dice:    te.dice,
		Adapter: te.adapter,
		Clock:   func() time.Time { return testNow },
		IDs:     id.Sequential("id"),
		Observers: []Observer{ObserverFunc(func(event Event) {
			te.events = append(te.events, event)
		})},
	})
	return te
}

func (te *testEngine) add(t *testing.T, name string, hp, ac int, x, z float64) Entity {
	t.Helper()
	entity, err := te.Registry.Add(EntitySpec{
		Name:     name,
		Type:     EntityPlayer,
		Stats:    Stats{MaxHP: hp, ArmorClass: ac, Speed: 30},
		Position: Position{X: x, Z: z},
	})
	if err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	return entity
}

func (te *testEngine) get(t *testing.T, entityID string) Entity {
	t.Helper()
	entity, ok := te.Registry.Get(entityID)
	if !ok {
		t.Fatalf("entity %s missing", entityID)
	}
	return entity
}

func (te *testEngine) currentID(t *testing.T) string {
	t.Helper()
	entity, ok := te.Turns.Current()
	if !ok {
		t.Fatal("expected a current entity")
	}
	return entity.ID
}

func (te *testEngine) countEvents(kind EventKind) int {
	n := 0
	for _, event := range te.events {
		if event.Kind == kind {
			n++
		}
	}
	return n
}

func wantCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("code = %s, want %s (%v)", got, code, err)
	}
}

func TestNewDefaults(t *testing.T) {
	e := New(Config{})
	state := e.State()
	if state.Round != 1 || state.IsActive || len(state.Entities) != 0 {
		t.Fatalf("unexpected initial state %+v", state)
	}
	entity, err := e.Registry.Add(EntitySpec{Name: "Scout", Type: EntityNPC, Stats: Stats{MaxHP: 4, ArmorClass: 10}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(entity.ID) != 26 {
		t.Fatalf("id = %q, want a generated id", entity.ID)
	}
}

func TestStateIsACopy(t *testing.T) {
	te := newTestEngine(t)
	a := te.add(t, "A", 10, 10, 0, 0)

	state := te.State()
	entity := state.Entities[a.ID]
	entity.Stats.CurrentHP = 1
	entity.Conditions = append(entity.Conditions, "hacked")
	state.Entities[a.ID] = entity

	if got := te.get(t, a.ID); got.Stats.CurrentHP != 10 || len(got.Conditions) != 0 {
		t.Fatalf("engine state changed through copy: %+v", got)
	}
}

func TestLoadReplacesState(t *testing.T) {
	te := newTestEngine(t, 20, 5)
	a := te.add(t, "A", 10, 10, 0, 0)
	te.add(t, "B", 10, 10, 1, 0)
	te.Turns.StartCombat()

	snapshot := te.State()
	history := te.History()
	effects := te.StatusEffects()

	other := newTestEngine(t)
	other.add(t, "Stale", 3, 3, 0, 0)
	if err := other.Load(snapshot, history, effects); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := other.State()
	if len(got.Entities) != 2 || !got.IsActive || got.TurnOrder[0].EntityID != a.ID {
		t.Fatalf("loaded state = %+v", got)
	}
	if len(other.adapter.removed) != 1 || len(other.adapter.placed) != 3 {
		t.Fatalf("adapter removed %v placed %v", other.adapter.removed, other.adapter.placed)
	}
	if other.countEvents(EventEncounterLoaded) != 1 {
		t.Fatal("expected encounter_loaded event")
	}
}

func TestLoadRejectsInconsistentState(t *testing.T) {
	base := func() State {
		s := NewState()
		s.Entities["a"] = Entity{ID: "a", Name: "A", Type: EntityPlayer, Size: SizeMedium, Stats: Stats{MaxHP: 1, CurrentHP: 1, ArmorClass: 1}}
		s.Order = []string{"a"}
		return s
	}
	tests := []struct {
		name   string
		mutate func(*State)
	}{
		{"order references unknown id", func(s *State) { s.Order = []string{"b"} }},
		{"turn order references unknown id", func(s *State) { s.TurnOrder = []TurnEntry{{EntityID: "b"}} }},
		{"duplicate turn entry", func(s *State) { s.TurnOrder = []TurnEntry{{EntityID: "a"}, {EntityID: "a"}} }},
		{"active without turn order", func(s *State) { s.IsActive = true }},
		{"index out of range", func(s *State) {
			s.IsActive = true
			s.TurnOrder = []TurnEntry{{EntityID: "a"}}
			s.CurrentTurnIndex = 1
		}},
		{"round zero", func(s *State) { s.Round = 0 }},
		{"invalid stats", func(s *State) {
			a := s.Entities["a"]
			a.Stats.CurrentHP = 5
			s.Entities["a"] = a
		}},
		{"key mismatch", func(s *State) {
			a := s.Entities["a"]
			a.ID = "b"
			s.Entities["a"] = a
		}},
		{"unknown selection", func(s *State) { s.SelectedEntityID = "z" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := base()
			tt.mutate(&state)
			e := New(Config{})
			wantCode(t, e.Load(state, nil, nil), apperrors.CodeSnapshotMalformed)
		})
	}
}

func TestPruneAreas(t *testing.T) {
	te := newTestEngine(t)
	caster := te.add(t, "Mage", 10, 10, 0, 0)
	fireball, err := LookupSpell("fireball")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if _, err := te.Resolver.CastSpell(CastRequest{
		CasterID:       caster.ID,
		Spell:          fireball,
		TargetPosition: &Position{X: 10, Z: 0},
	}); err != nil {
		t.Fatalf("cast: %v", err)
	}
	if len(te.Areas()) != 1 {
		t.Fatalf("areas = %d, want 1", len(te.Areas()))
	}
	if expired := te.PruneAreas(testNow.Add(time.Second)); len(expired) != 0 {
		t.Fatalf("expired early: %v", expired)
	}
	expired := te.PruneAreas(testNow.Add(AreaLifetime))
	if len(expired) != 1 || len(te.Areas()) != 0 {
		t.Fatalf("expired = %v, remaining = %v", expired, te.Areas())
	}
	if len(te.adapter.gone) != 1 || te.adapter.gone[0] != expired[0].ID {
		t.Fatalf("adapter removals = %v", te.adapter.gone)
	}
}
