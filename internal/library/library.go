// Package library saves, lists and restores encounters on top of an
// EncounterStore.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/encounter"
	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
	"github.com/louisbranch/battlegrid/internal/platform/id"
	"github.com/louisbranch/battlegrid/internal/storage"
	"github.com/louisbranch/battlegrid/internal/storage/cursor"
)

const (
	quickSaveLayout      = "2006-01-02 15:04:05"
	quickSaveDescription = "Automatically saved encounter"
	templatePrefix       = "[Template] "
	untitled             = "Untitled encounter"

	defaultPageSize = 20
	maxPageSize     = 100
)

// Source is anything that can be snapshotted, usually a *combat.Engine.
type Source interface {
	State() combat.State
	History() []combat.Action
	StatusEffects() map[string][]combat.StatusEffect
}

// Loader installs a restored encounter, usually a *combat.Engine.
type Loader interface {
	Load(state combat.State, history []combat.Action, effects map[string][]combat.StatusEffect) error
}

// Library is the save/load front of one store.
type Library struct {
	store storage.EncounterStore
	ids   id.Generator
	clock func() time.Time
}

// New builds a library. Nil ids and clock default to id.NewID and time.Now.
func New(store storage.EncounterStore, ids id.Generator, clock func() time.Time) *Library {
	if ids == nil {
		ids = id.NewID
	}
	if clock == nil {
		clock = time.Now
	}
	return &Library{store: store, ids: ids, clock: clock}
}

// Save snapshots src under a fresh id.
func (l *Library) Save(ctx context.Context, name, description string, src Source) (encounter.Metadata, error) {
	saved, err := l.snapshot(name, description, src)
	if err != nil {
		return encounter.Metadata{}, err
	}
	return l.put(ctx, saved)
}

// QuickSave saves src under a timestamped name.
func (l *Library) QuickSave(ctx context.Context, src Source) (encounter.Metadata, error) {
	name := "Quick Save " + l.clock().Format(quickSaveLayout)
	return l.Save(ctx, name, quickSaveDescription, src)
}

// SaveTemplate saves the roster of src as a reusable starting point: full
// hit points, no conditions, no turn order and no history.
func (l *Library) SaveTemplate(ctx context.Context, name, description string, src Source) (encounter.Metadata, error) {
	saved, err := l.snapshot(templatePrefix+cleanName(name), description, src)
	if err != nil {
		return encounter.Metadata{}, err
	}
	return l.put(ctx, saved.Template())
}

// Load fetches and validates a saved encounter.
func (l *Library) Load(ctx context.Context, encounterID string) (encounter.SavedEncounter, error) {
	saved, err := l.store.Get(ctx, encounterID)
	if err != nil {
		return encounter.SavedEncounter{}, notFound(encounterID, err)
	}
	return saved, nil
}

// Restore loads a saved encounter into dst.
func (l *Library) Restore(ctx context.Context, encounterID string, dst Loader) (encounter.SavedEncounter, error) {
	saved, err := l.Load(ctx, encounterID)
	if err != nil {
		return encounter.SavedEncounter{}, err
	}
	state, history, effects := saved.Restore()
	if err := dst.Load(state, history, effects); err != nil {
		return encounter.SavedEncounter{}, err
	}
	return saved, nil
}

// List returns saved encounter summaries, newest first.
func (l *Library) List(ctx context.Context) ([]encounter.Metadata, error) {
	return l.store.List(ctx)
}

// PageRequest selects one page of List. Filter keeps encounters whose name
// contains it, ignoring case.
type PageRequest struct {
	Size   int
	Token  string
	Filter string
}

// Page is one page of summaries. NextToken is empty on the last page.
type Page struct {
	Encounters []encounter.Metadata
	NextToken  string
}

// ListPage returns one page of saved encounter summaries, newest first.
func (l *Library) ListPage(ctx context.Context, req PageRequest) (Page, error) {
	size := req.Size
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	filter := strings.ToLower(strings.TrimSpace(req.Filter))

	offset := 0
	if req.Token != "" {
		c, err := cursor.Decode(req.Token)
		if err == nil {
			err = cursor.ValidateFilterHash(c, filter)
		}
		if err != nil {
			return Page{}, apperrors.Wrap(apperrors.CodePageTokenInvalid, "invalid page token", err)
		}
		offset = c.Offset
	}

	all, err := l.store.List(ctx)
	if err != nil {
		return Page{}, err
	}
	matched := all[:0:0]
	for _, meta := range all {
		if filter == "" || strings.Contains(strings.ToLower(meta.Name), filter) {
			matched = append(matched, meta)
		}
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := min(offset+size, len(matched))

	page := Page{Encounters: matched[offset:end]}
	if end < len(matched) {
		page.NextToken, err = cursor.Encode(cursor.Next(end, filter))
		if err != nil {
			return Page{}, err
		}
	}
	return page, nil
}

// Delete removes a saved encounter.
func (l *Library) Delete(ctx context.Context, encounterID string) error {
	return notFound(encounterID, l.store.Delete(ctx, encounterID))
}

// Stats reports how many encounters are saved and their encoded size.
func (l *Library) Stats(ctx context.Context) (storage.Stats, error) {
	return l.store.Stats(ctx)
}

// Clear deletes every saved encounter.
func (l *Library) Clear(ctx context.Context) error {
	if err := l.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear encounters: %w", err)
	}
	return nil
}

// Export writes a saved encounter as indented JSON.
func (l *Library) Export(ctx context.Context, encounterID string, w io.Writer) error {
	saved, err := l.Load(ctx, encounterID)
	if err != nil {
		return err
	}
	data, err := encounter.EncodeIndent(saved)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Import reads an exported encounter, validates it and stores it under a new
// id and timestamp so it never overwrites an existing save.
func (l *Library) Import(ctx context.Context, r io.Reader) (encounter.Metadata, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return encounter.Metadata{}, fmt.Errorf("read import: %w", err)
	}
	saved, err := encounter.Decode(data)
	if err != nil {
		return encounter.Metadata{}, err
	}
	saved.ID, err = l.ids()
	if err != nil {
		return encounter.Metadata{}, fmt.Errorf("generate id: %w", err)
	}
	saved.Timestamp = l.clock().UnixMilli()
	return l.put(ctx, saved)
}

func (l *Library) snapshot(name, description string, src Source) (encounter.SavedEncounter, error) {
	encounterID, err := l.ids()
	if err != nil {
		return encounter.SavedEncounter{}, fmt.Errorf("generate id: %w", err)
	}
	meta := encounter.Meta{ID: encounterID, Name: cleanName(name), Description: strings.TrimSpace(description)}
	return encounter.Snapshot(src.State(), src.History(), src.StatusEffects(), meta, l.clock()), nil
}

func (l *Library) put(ctx context.Context, saved encounter.SavedEncounter) (encounter.Metadata, error) {
	if err := l.store.Put(ctx, saved); err != nil {
		return encounter.Metadata{}, fmt.Errorf("save encounter: %w", err)
	}
	return saved.Metadata(), nil
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return untitled
	}
	return name
}

func notFound(encounterID string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.WrapWithMetadata(apperrors.CodeEncounterNotFound,
			fmt.Sprintf("encounter %q not found", encounterID),
			map[string]string{"EncounterID": encounterID}, err)
	}
	return err
}
