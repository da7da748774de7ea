// Package bbolt provides a BoltDB-backed encounter store.
package bbolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/battlegrid/internal/encounter"
	"github.com/louisbranch/battlegrid/internal/storage"
	"go.etcd.io/bbolt"
	bbolterrors "go.etcd.io/bbolt/errors"
)

const encounterBucket = "encounter"

// Store provides a BoltDB-backed encounter store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put persists an encounter, replacing any record with the same id.
func (s *Store) Put(ctx context.Context, saved encounter.SavedEncounter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(saved.ID) == "" {
		return fmt.Errorf("encounter id is required")
	}

	payload, err := encounter.Encode(saved)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(encounterBucket))
		if bucket == nil {
			return fmt.Errorf("encounter bucket is missing")
		}
		return bucket.Put(encounterKey(saved.ID), payload)
	})
}

// Get fetches an encounter by id.
func (s *Store) Get(ctx context.Context, id string) (encounter.SavedEncounter, error) {
	if err := ctx.Err(); err != nil {
		return encounter.SavedEncounter{}, err
	}
	if s == nil || s.db == nil {
		return encounter.SavedEncounter{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return encounter.SavedEncounter{}, fmt.Errorf("encounter id is required")
	}

	var payload []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(encounterBucket))
		if bucket == nil {
			return fmt.Errorf("encounter bucket is missing")
		}
		value := bucket.Get(encounterKey(id))
		if value == nil {
			return storage.ErrNotFound
		}
		payload = append([]byte(nil), value...)
		return nil
	})
	if err != nil {
		return encounter.SavedEncounter{}, err
	}

	return encounter.Decode(payload)
}

// List returns the summary of every stored encounter, newest first.
func (s *Store) List(ctx context.Context) ([]encounter.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var list []encounter.Metadata
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(encounterBucket))
		if bucket == nil {
			return fmt.Errorf("encounter bucket is missing")
		}
		return bucket.ForEach(func(_, value []byte) error {
			var saved encounter.SavedEncounter
			if err := json.Unmarshal(value, &saved); err != nil {
				return fmt.Errorf("unmarshal encounter: %w", err)
			}
			list = append(list, saved.Metadata())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Timestamp != list[j].Timestamp {
			return list[i].Timestamp > list[j].Timestamp
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// Delete removes an encounter by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(encounterBucket))
		if bucket == nil {
			return fmt.Errorf("encounter bucket is missing")
		}
		if bucket.Get(encounterKey(id)) == nil {
			return storage.ErrNotFound
		}
		return bucket.Delete(encounterKey(id))
	})
}

// Stats counts the stored encounters and their payload bytes.
func (s *Store) Stats(ctx context.Context) (storage.Stats, error) {
	if err := ctx.Err(); err != nil {
		return storage.Stats{}, err
	}
	if s == nil || s.db == nil {
		return storage.Stats{}, fmt.Errorf("storage is not configured")
	}

	var stats storage.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(encounterBucket))
		if bucket == nil {
			return fmt.Errorf("encounter bucket is missing")
		}
		return bucket.ForEach(func(_, value []byte) error {
			stats.Count++
			stats.Bytes += int64(len(value))
			return nil
		})
	})
	if err != nil {
		return storage.Stats{}, err
	}
	return stats, nil
}

// Clear drops every encounter by recreating the bucket.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(encounterBucket)); err != nil && !errors.Is(err, bbolterrors.ErrBucketNotFound) {
			return fmt.Errorf("clear encounter bucket: %w", err)
		}
		if _, err := tx.CreateBucket([]byte(encounterBucket)); err != nil {
			return fmt.Errorf("create encounter bucket: %w", err)
		}
		return nil
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(encounterBucket))
		if err != nil {
			return fmt.Errorf("create encounter bucket: %w", err)
		}
		return nil
	})
}

func encounterKey(id string) []byte {
	return []byte(id)
}

var _ storage.EncounterStore = (*Store)(nil)
