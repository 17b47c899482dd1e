// internal/config/config.go
package config

import (
	"os"
	"path/filepath"
)

// Config holds all application configuration paths
type Config struct {
	HomeDir      string
	AppDir       string
	DataDir      string
	DatabasePath string
}

// Load creates a Config instance with resolved paths
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	appDir := filepath.Join(home, ".huobao-canvas")
	dataDir := filepath.Join(appDir, "data")

	// Ensure directories exist
	for _, dir := range []string{appDir, dataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return &Config{
		HomeDir:      home,
		AppDir:       appDir,
		DataDir:      dataDir,
		DatabasePath: filepath.Join(appDir, "canvas.db"),
	}, nil
}
