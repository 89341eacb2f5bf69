package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

type Manager struct {
	sources []*Source
	config  Config
}

func NewManager(sources ...*Source) *Manager {
	return &Manager{
		sources: sources,
	}
}

func (m *Manager) Config() Config {
	return m.config
}

// Load merges the sources over the defaults in the order they were given, so
// later sources take precedence over earlier ones.
func (m *Manager) Load() error {
	k := koanf.New(".")
	if err := LoadStruct(k, DefaultConfig()); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	userK := koanf.New(".")
	for _, source := range m.sources {
		err := userK.Load(source.Provider(userK), source.Parser, source.Options...)
		if err != nil {
			return fmt.Errorf("failed to load user-specified config: %w", err)
		}
	}
	if err := k.Merge(userK); err != nil {
		return fmt.Errorf("failed to merge user-specified config: %w", err)
	}

	var combined Config
	if err := k.Unmarshal("", &combined); err != nil {
		return fmt.Errorf("failed to unmarshal combined config: %w", err)
	}
	if err := combined.Validate(); err != nil {
		return err
	}

	m.config = combined

	return nil
}
