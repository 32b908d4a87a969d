// Package file stores shiftsheet configuration as a TOML file.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// Environment variables that override file values.
const (
	EnvClientID     = "SHIFTSHEET_CLIENT_ID"
	EnvClientSecret = "SHIFTSHEET_CLIENT_SECRET"
	EnvTenantID     = "SHIFTSHEET_TENANT_ID"
)

// ConfigStore reads and writes config.toml.
type ConfigStore struct {
	path   string
	lookup func(string) (string, bool)
}

// DefaultDir returns ~/.shiftsheet.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".shiftsheet"), nil
}

// NewConfigStore creates a store for path. An empty path uses
// ~/.shiftsheet/config.toml.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}
	return &ConfigStore{path: path, lookup: os.LookupEnv}, nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// LoadFile returns the configuration as stored. Keys absent from the file
// keep their defaults.
func (s *ConfigStore) LoadFile() (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("parse %s at line %d column %d: %w", s.path, row, col, err)
		}
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return cfg, nil
}

// Load returns the configuration with environment overrides applied.
func (s *ConfigStore) Load() (*domain.Config, error) {
	cfg, err := s.LoadFile()
	if err != nil {
		return nil, err
	}
	if v, ok := s.lookup(EnvClientID); ok && v != "" {
		cfg.Auth.ClientID = v
	}
	if v, ok := s.lookup(EnvClientSecret); ok && v != "" {
		cfg.Auth.ClientSecret = v
	}
	if v, ok := s.lookup(EnvTenantID); ok && v != "" {
		cfg.Auth.TenantID = v
	}
	return cfg, nil
}

// Save writes the configuration file with owner-only permissions, since it
// may hold a client secret.
func (s *ConfigStore) Save(cfg *domain.Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
