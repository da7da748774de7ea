package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/battlegrid/internal/encounter"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// EncounterStore persists saved encounters keyed by id.
type EncounterStore interface {
	// Put inserts or replaces an encounter.
	Put(ctx context.Context, saved encounter.SavedEncounter) error
	// Get returns ErrNotFound when the id is unknown.
	Get(ctx context.Context, id string) (encounter.SavedEncounter, error)
	// List returns summaries, newest first.
	List(ctx context.Context) ([]encounter.Metadata, error)
	// Delete returns ErrNotFound when the id is unknown.
	Delete(ctx context.Context, id string) error
	// Stats counts the stored encounters and their encoded size.
	Stats(ctx context.Context) (Stats, error)
	// Clear deletes every encounter.
	Clear(ctx context.Context) error
	Close() error
}

// Stats summarizes a store. Bytes is the size of the encoded payloads, not
// the size of the database file.
type Stats struct {
	Count int
	Bytes int64
}
