// internal/models/registry.go
package models

import (
	"fmt"
	"sync"
)

// Registry manages model configurations: the builtin catalogue plus any
// models discovered at runtime (remote listings, user additions).
type Registry struct {
	mu      sync.RWMutex
	byKey   map[string]*Config
	ordered []string
}

// NewRegistry creates a registry seeded with the builtin catalogue.
func NewRegistry() *Registry {
	r := &Registry{byKey: make(map[string]*Config)}
	for _, config := range Builtin() {
		r.byKey[config.Key] = config
		r.ordered = append(r.ordered, config.Key)
	}
	return r
}

// Register adds a runtime-discovered model. Keys already present are kept
// as-is (builtin and earlier registrations win, matching the merge rule for
// remote catalogues).
func (r *Registry) Register(config *Config) error {
	if config.Key == "" {
		return fmt.Errorf("model key is required")
	}
	if config.Kind == "" {
		return fmt.Errorf("model kind is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byKey[config.Key]; exists {
		return nil
	}
	r.byKey[config.Key] = config
	r.ordered = append(r.ordered, config.Key)
	return nil
}

// Get returns the config for a model key, or nil when unknown. Tasks treat
// an unknown model as "use generic defaults", so there is no error here.
func (r *Registry) Get(key string) *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[key]
}

// All returns every model in registration order.
func (r *Registry) All() []*Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	configs := make([]*Config, 0, len(r.ordered))
	for _, key := range r.ordered {
		configs = append(configs, r.byKey[key])
	}
	return configs
}

// ByKind returns all models of one kind in registration order.
func (r *Registry) ByKind(kind Kind) []*Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var configs []*Config
	for _, key := range r.ordered {
		if config := r.byKey[key]; config.Kind == kind {
			configs = append(configs, config)
		}
	}
	return configs
}

// Default returns the default model for a kind.
func (r *Registry) Default(kind Kind) *Config {
	switch kind {
	case KindImage:
		return r.Get(DefaultImageModel)
	case KindVideo:
		return r.Get(DefaultVideoModel)
	case KindChat:
		return r.Get(DefaultChatModel)
	default:
		return nil
	}
}
