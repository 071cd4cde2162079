package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/statecraft/game/engine"
	"github.com/wricardo/statecraft/game/service"
)

const (
	boardExt   = ".json"
	overlayExt = ".tuning.yaml"

	// DefaultName is the board used when a session names none
	DefaultName = "classic"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = engine.ErrInvalidConfig
)

// Manager handles board configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a configuration manager over a directory of board files
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}
	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a board by name: <name>.json, then <name>.tuning.yaml on top
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = strings.TrimSuffix(name, boardExt)

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	def := m.defaultConfig
	m.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(m.configDir, name+boardExt))
	if err != nil {
		if os.IsNotExist(err) {
			if def != nil && def.Name == name {
				return def, nil
			}
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}
	if err := m.applyOverlay(name, config); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, exists := m.configs[name]; exists {
		return cached, nil
	}
	m.configs[name] = config
	return config, nil
}

// applyOverlay decodes the optional YAML tuning file over the board's tuning
func (m *Manager) applyOverlay(name string, config *engine.GameConfig) error {
	raw, err := os.ReadFile(filepath.Join(m.configDir, name+overlayExt))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read tuning overlay: %w", err)
	}
	if err := yaml.Unmarshal(raw, &config.Tuning); err != nil {
		return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, name, overlayExt, err)
	}
	if err := config.Tuning.Validate(); err != nil {
		return fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, name, overlayExt, err)
	}
	return nil
}

// ReloadConfig drops a cached board and reads it again from disk
func (m *Manager) ReloadConfig(name string) error {
	name = strings.TrimSuffix(name, boardExt)
	m.mu.Lock()
	delete(m.configs, name)
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

// ValidateConfig checks a board without saving it
func (m *Manager) ValidateConfig(config *engine.GameConfig) error {
	return engine.ValidateGameConfig(config)
}

// ListConfigs returns information about all valid boards in the directory
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), boardExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), boardExt)

		config, err := m.LoadConfig(name)
		if err != nil {
			continue
		}

		_, statErr := os.Stat(filepath.Join(m.configDir, name+overlayExt))
		configs = append(configs, &service.ConfigInfo{
			Filename:      entry.Name(),
			ConfigID:      name,
			Name:          config.Name,
			Description:   config.Description,
			Tiles:         len(config.Board),
			StartingMoney: config.StartingMoney,
			Regime:        config.StartingRegime,
			HasOverlay:    statErr == nil,
		})
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default board
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default board by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache forgets every cached board and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()
	m.loadDefaultConfig()
}

// loadDefaultConfig prefers classic.json, then the first valid board on
// disk, then the built-in classic board
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultName)
	if err != nil {
		if infos, listErr := m.ListConfigs(); listErr == nil && len(infos) > 0 {
			config, err = m.LoadConfig(infos[0].ConfigID)
		}
	}
	if err != nil || config == nil {
		config = engine.DefaultGameConfig()
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates a board and writes it to <name>.json
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := m.ValidateConfig(config); err != nil {
		return err
	}
	name = strings.TrimSuffix(name, boardExt)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.configDir, name+boardExt), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()
	return nil
}
