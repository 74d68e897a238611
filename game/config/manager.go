package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultName is the variant used when none is requested.
const DefaultName = "classic"

// extensions lists the file types a variant may be stored as, in lookup order.
var extensions = []string{".yaml", ".yml", ".json"}

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.Config
	configs       map[string]*engine.Config
	logger        *zap.Logger
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string, logger *zap.Logger) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.Config),
		logger:    logger,
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.Config, error) {
	name = configID(name)
	if !validID(name) {
		return nil, fmt.Errorf("%w: bad config id %q", ErrInvalidConfig, name)
	}

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	path, ok := m.findFile(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
	}

	config, err := readConfig(path, name)
	if err != nil {
		return nil, err
	}

	m.configs[name] = config
	m.logger.Debug("loaded config", zap.String("config", name), zap.String("path", path))
	return config, nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	seen := make(map[string]bool)
	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !hasConfigExtension(entry.Name()) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}
		seen[id] = true

		config, err := m.LoadConfig(id)
		if err != nil {
			m.logger.Warn("skipping invalid config", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:        entry.Name(),
			ConfigID:        id,
			Name:            config.Name,
			Description:     config.Description,
			Size:            config.Size,
			StartTiles:      config.StartTiles,
			WinValue:        config.WinValue,
			FourProbability: config.FourProbability,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
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

// RefreshCache reloads all cached configurations from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.Config)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// SaveConfig validates a configuration and writes it as <name>.yaml
func (m *Manager) SaveConfig(name string, config *engine.Config) error {
	if err := engine.ValidateConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	name = configID(name)
	if !validID(name) {
		return fmt.Errorf("%w: bad config id %q", ErrInvalidConfig, name)
	}

	v := viper.New()
	v.Set("name", config.Name)
	v.Set("description", config.Description)
	v.Set("size", config.Size)
	v.Set("start_tiles", config.StartTiles)
	v.Set("win_value", config.WinValue)
	v.Set("four_probability", config.FourProbability)

	path := filepath.Join(m.configDir, name+".yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	saved := *config
	m.mu.Lock()
	m.configs[name] = &saved
	m.mu.Unlock()

	m.logger.Info("saved config", zap.String("config", name), zap.String("path", path))
	return nil
}

// loadDefaultConfig loads classic if present, else the first valid file,
// else the built-in classic rules.
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault(engine.DefaultConfig())
			return nil
		}

		config, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			m.setDefault(engine.DefaultConfig())
			return nil
		}
	}

	m.setDefault(config)
	return nil
}

func (m *Manager) setDefault(config *engine.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
}

func (m *Manager) findFile(name string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// readConfig parses one variant file. Missing keys fall back to the classic
// rules; a missing name falls back to the file's id.
func readConfig(path, id string) (*engine.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := engine.DefaultConfig()
	v.SetDefault("name", id)
	v.SetDefault("size", defaults.Size)
	v.SetDefault("start_tiles", defaults.StartTiles)
	v.SetDefault("win_value", defaults.WinValue)
	v.SetDefault("four_probability", defaults.FourProbability)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := engine.ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// ReadFile loads and validates a single variant file outside any Manager.
func ReadFile(path string) (*engine.Config, error) {
	return readConfig(path, configID(filepath.Base(path)))
}

func hasConfigExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// configID strips a known extension from a file or config name.
// validID reports whether a config id names a file directly inside the
// config directory.
func validID(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`)
}

func configID(name string) string {
	ext := filepath.Ext(name)
	if hasConfigExtension(name) {
		return strings.TrimSuffix(name, ext)
	}
	return name
}
