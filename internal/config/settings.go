// internal/config/settings.go
package config

import (
	"github.com/xiaoliu2354/huobao-canvas/internal/storage"
)

// Storage keys for the API settings. Absence of the key means "unconfigured".
const (
	KeyAPIKey  = "ai-canvas-api-key"
	KeyBaseURL = "ai-canvas-base-url"
)

// DefaultBaseURL is the endpoint used until the user configures one.
const DefaultBaseURL = "https://api.openai.com/v1"

// Settings exposes the API credential and base endpoint, persisted as two
// plain values in client storage.
type Settings struct {
	store storage.Store
}

// NewSettings creates a Settings view over the given store.
func NewSettings(store storage.Store) *Settings {
	return &Settings{store: store}
}

// APIKey returns the stored credential, or "" when unconfigured or when the
// backend fails (storage trouble never surfaces through settings reads).
func (s *Settings) APIKey() string {
	value, err := s.store.Get(KeyAPIKey)
	if err != nil {
		return ""
	}
	return value
}

// SetAPIKey stores the credential. An empty value removes the key.
func (s *Settings) SetAPIKey(key string) error {
	if key == "" {
		return s.store.Remove(KeyAPIKey)
	}
	return s.store.Set(KeyAPIKey, key)
}

// BaseURL returns the configured endpoint, else DefaultBaseURL.
func (s *Settings) BaseURL() string {
	value, err := s.store.Get(KeyBaseURL)
	if err != nil || value == "" {
		return DefaultBaseURL
	}
	return value
}

// SetBaseURL stores the endpoint. An empty value removes the override.
func (s *Settings) SetBaseURL(url string) error {
	if url == "" {
		return s.store.Remove(KeyBaseURL)
	}
	return s.store.Set(KeyBaseURL, url)
}

// IsConfigured reports whether a credential is present.
func (s *Settings) IsConfigured() bool {
	return s.APIKey() != ""
}

// Clear removes both settings.
func (s *Settings) Clear() error {
	if err := s.store.Remove(KeyAPIKey); err != nil {
		return err
	}
	return s.store.Remove(KeyBaseURL)
}
