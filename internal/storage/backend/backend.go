// Package backend opens the configured encounter store.
package backend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/louisbranch/battlegrid/internal/platform/config"
	"github.com/louisbranch/battlegrid/internal/storage"
	storagebbolt "github.com/louisbranch/battlegrid/internal/storage/bbolt"
	storagesqlite "github.com/louisbranch/battlegrid/internal/storage/sqlite"
)

// Open validates cfg, creates the parent directory of the store file and
// opens the selected backend.
func Open(cfg config.Store) (storage.EncounterStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	if cfg.Backend == config.BackendSQLite {
		store, err := storagesqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := storagebbolt.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}
