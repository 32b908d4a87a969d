package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
)

// Ensure ConfigService implements the interface.
var _ driving.ConfigService = (*ConfigService)(nil)

// ConfigService reads and edits the configuration file.
type ConfigService struct {
	store driven.ConfigStore
}

// NewConfigService creates a config service.
func NewConfigService(store driven.ConfigStore) *ConfigService {
	return &ConfigService{store: store}
}

// Current returns the configuration with environment overrides applied.
func (s *ConfigService) Current(_ context.Context) (*domain.Config, error) {
	return s.store.Load()
}

// Get returns one effective setting.
func (s *ConfigService) Get(ctx context.Context, key string) (string, error) {
	cfg, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	return cfg.Get(key)
}

// Set stores one setting in the file. Environment overrides are not
// written back.
func (s *ConfigService) Set(_ context.Context, key, value string) error {
	cfg, err := s.store.LoadFile()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := s.store.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Path returns the configuration file location.
func (s *ConfigService) Path() string {
	return s.store.Path()
}
