// Package cursor provides opaque page tokens for encounter listings.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Cursor is the decoded state of a page token.
type Cursor struct {
	// Offset is the index of the first item on the next page.
	Offset int `json:"offset"`
	// FilterHash invalidates tokens when the filter changes between pages.
	FilterHash string `json:"filter_hash,omitempty"`
}

// Encode encodes a cursor to an opaque base64 string.
func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode decodes an opaque base64 string to a cursor.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("empty token")
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode base64: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if c.Offset < 0 {
		return Cursor{}, fmt.Errorf("invalid cursor offset: %d", c.Offset)
	}
	return c, nil
}

// HashFilter returns a short hash of filter, or "" for no filter.
func HashFilter(filter string) string {
	if filter == "" {
		return ""
	}
	h := sha256.Sum256([]byte(filter))
	return hex.EncodeToString(h[:8])
}

// ValidateFilterHash fails when the cursor was issued for another filter.
func ValidateFilterHash(c Cursor, currentFilter string) error {
	if c.FilterHash != HashFilter(currentFilter) {
		return fmt.Errorf("filter changed since cursor was created")
	}
	return nil
}

// Next returns the cursor for the page starting at offset.
func Next(offset int, filter string) Cursor {
	return Cursor{Offset: offset, FilterHash: HashFilter(filter)}
}
