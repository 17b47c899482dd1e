// internal/storage/storage.go
package storage

import "errors"

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// ErrQuotaExceeded is returned when a write would exceed the storage capacity.
// Callers that can shed payload weight (e.g. embedded media) may retry with a
// degraded value.
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

// Store is the persistence port for client-resident key/value state.
// The project store and settings only depend on this interface, so the
// backend (memory, sqlite, badger) is swappable.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}
