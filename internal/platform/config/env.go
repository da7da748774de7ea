// Package config loads command configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Store selects where saved encounters live.
type Store struct {
	Backend string `env:"BATTLEGRID_STORE_BACKEND" envDefault:"bolt"`
	Path    string `env:"BATTLEGRID_STORE_PATH"    envDefault:"data/battlegrid.db"`
}

// Validate normalizes the backend name and rejects unknown backends.
func (s *Store) Validate() error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case BackendBolt, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", s.Backend, BackendBolt, BackendSQLite)
	}
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("store path is required")
	}
	return nil
}
