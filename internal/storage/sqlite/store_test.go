package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	apperrors "github.com/louisbranch/battlegrid/internal/platform/errors"
	"github.com/louisbranch/battlegrid/internal/storage"
	"github.com/louisbranch/battlegrid/internal/storage/storagetest"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestEncounterStore(t *testing.T) {
	t.Parallel()

	storagetest.Run(t, openTempStore(t))
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
}

func TestListUsesStoredColumns(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	saved := storagetest.Fixture("enc-1", "Ford", 42)
	saved.Description = "river crossing"
	if err := store.Put(context.Background(), saved); err != nil {
		t.Fatalf("put: %v", err)
	}
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %+v", list)
	}
	want := saved.Metadata()
	if list[0] != want {
		t.Fatalf("metadata = %+v, want %+v", list[0], want)
	}
}

func TestGetRejectsCorruptPayload(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.sqlDB.Exec(
		`INSERT INTO encounters (id, name, saved_at, version, payload) VALUES ('bad', 'Bad', 1, '1.0.0', '{"version":"1.0.0"}')`,
	)
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}
	_, err = store.Get(context.Background(), "bad")
	if !apperrors.HasCode(err, apperrors.CodeSnapshotMalformed) {
		t.Fatalf("get corrupt = %v, want malformed", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "battlegrid.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
