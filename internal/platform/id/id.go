// Package id generates opaque identifiers for entities, actions, effects and
// saved encounters.
package id

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"
)

// Generator produces a new identifier.
type Generator func() (string, error)

// NewID returns a 26-character lowercase base32 token built from UUIDv4 bytes.
func NewID() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	raw[6] = (raw[6] & 0x0f) | 0x40
	raw[8] = (raw[8] & 0x3f) | 0x80

	return strings.ToLower(encoding.EncodeToString(raw[:])), nil
}

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Sequential returns a generator yielding prefix-1, prefix-2, ...
// Scenario scripts and tests use it to get stable identifiers.
func Sequential(prefix string) Generator {
	var (
		mu   sync.Mutex
		next int
	)
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%s-%d", prefix, next), nil
	}
}
