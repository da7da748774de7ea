// Package storage defines the persistence interface for saved encounters.
//
// Implementations live in subpackages: bbolt keeps one JSON document per
// encounter in a single bucket, sqlite keeps one row per encounter with the
// listing columns split out.
//
// # Error Types
//
//   - ErrNotFound: the requested encounter does not exist.
package storage
