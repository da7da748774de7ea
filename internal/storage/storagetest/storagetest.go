// Package storagetest holds the behavior every EncounterStore must share.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/louisbranch/battlegrid/internal/encounter"
	"github.com/louisbranch/battlegrid/internal/storage"
)

// Fixture returns a small valid encounter.
func Fixture(id, name string, timestamp int64) encounter.SavedEncounter {
	height := 10.0
	return encounter.SavedEncounter{
		ID:        id,
		Name:      name,
		Timestamp: timestamp,
		Version:   encounter.FormatVersion,
		CombatState: encounter.CombatState{
			Entities: []encounter.Entity{
				{
					ID: "fighter", Name: "Fighter", Type: "player", Size: "medium",
					Stats:      encounter.Stats{MaxHP: 12, CurrentHP: 9, ArmorClass: 16, Initiative: 18, Speed: 30},
					Conditions: []string{},
				},
				{
					ID: "bat", Name: "Bat", Type: "enemy", Size: "tiny",
					Stats:    encounter.Stats{MaxHP: 1, CurrentHP: 1, ArmorClass: 12, Initiative: 9, Speed: 5},
					Position: encounter.Position{X: 1, GridX: 1, Y: &height},
					IsFlying: true, FlyingHeight: height,
					Conditions: []string{"poisoned"},
				},
			},
			TurnOrder: []encounter.TurnEntry{
				{EntityID: "fighter", Initiative: 18},
				{EntityID: "bat", Initiative: 9},
			},
			Round:    2,
			IsActive: true,
		},
		ActionHistory: []encounter.Action{
			{ID: "a1", Type: "attack", ActorID: "bat", TargetID: "fighter", Damage: 3, Success: true, Timestamp: timestamp, Description: "Bat hits Fighter"},
		},
		StatusEffects: map[string][]encounter.StatusEffect{
			"bat": {{ID: "s1", Name: "poisoned", Duration: 2}},
		},
	}
}

// Run exercises store through put, get, list, delete, stats and clear.
func Run(t *testing.T, store storage.EncounterStore) {
	t.Helper()
	ctx := context.Background()

	older := Fixture("enc-old", "Crypt", 1_700_000_000_000)
	newer := Fixture("enc-new", "Bridge", 1_700_000_500_000)
	for _, saved := range []encounter.SavedEncounter{older, newer} {
		if err := store.Put(ctx, saved); err != nil {
			t.Fatalf("put %s: %v", saved.ID, err)
		}
	}

	got, err := store.Get(ctx, "enc-old")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Crypt" || got.Timestamp != older.Timestamp || len(got.CombatState.Entities) != 2 {
		t.Fatalf("got = %+v", got)
	}
	if got.CombatState.Entities[1].Position.Y == nil || *got.CombatState.Entities[1].Position.Y != 10 {
		t.Fatalf("flying height lost: %+v", got.CombatState.Entities[1])
	}
	if got.StatusEffects["bat"][0].Duration != 2 {
		t.Fatalf("status effects = %+v", got.StatusEffects)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "enc-new" || list[1].ID != "enc-old" {
		t.Fatalf("list = %+v, want newest first", list)
	}
	if list[0].EntityCount != 2 || list[0].Name != "Bridge" {
		t.Fatalf("metadata = %+v", list[0])
	}

	renamed := older
	renamed.Name = "Crypt (revisited)"
	if err := store.Put(ctx, renamed); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got, err := store.Get(ctx, "enc-old"); err != nil || got.Name != renamed.Name {
		t.Fatalf("replaced get = %+v, %v", got, err)
	}

	if err := store.Delete(ctx, "enc-old"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "enc-old"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get deleted = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "enc-old"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete missing = %v, want ErrNotFound", err)
	}

	payload, err := encounter.Encode(newer)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Count != 1 || stats.Bytes != int64(len(payload)) {
		t.Fatalf("stats = %+v, want 1 encounter of %d bytes", stats, len(payload))
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if stats, err := store.Stats(ctx); err != nil || stats != (storage.Stats{}) {
		t.Fatalf("stats after clear = %+v, %v", stats, err)
	}
	if list, err := store.List(ctx); err != nil || len(list) != 0 {
		t.Fatalf("list after clear = %+v, %v", list, err)
	}
	if err := store.Put(ctx, older); err != nil {
		t.Fatalf("put after clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear again: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.Put(cancelled, newer); !errors.Is(err, context.Canceled) {
		t.Fatalf("put with cancelled context = %v", err)
	}
}
