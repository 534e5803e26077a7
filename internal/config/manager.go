package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/mydehq/lrcfetch/internal/types"
)

// Manager owns the loaded document and its path. Changes are persisted only
// by an explicit Save.
type Manager struct {
	mu     sync.RWMutex
	cfg    *Config
	path   string
	logger *log.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used for load/save notices
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager wraps an in-memory document
func NewManager(cfg *Config, path string, opts ...Option) *Manager {
	if path == "" {
		path = DefaultPath()
	}
	m := &Manager{cfg: cfg, path: path, logger: log.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the document at path (DefaultPath when empty). A missing file
// yields the defaults, which are written back best-effort. An unparsable
// file is ErrCorruptedConfig.
func Load(path string, opts ...Option) (*Manager, error) {
	m := NewManager(nil, path, opts...)

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		m.logger.Info("Config file not found, creating defaults", "path", m.path)
		m.cfg = Default()
		if err := m.Save(); err != nil {
			m.logger.Warn("Failed to save default config", "path", m.path, "err", err)
		}
		return m, nil
	}
	if err != nil {
		return nil, types.ErrCorruptedConfig{Path: m.path, Err: err}
	}

	cfg, err := decode(data, false)
	if err != nil {
		return nil, types.ErrCorruptedConfig{Path: m.path, Err: err}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	m.logger.Debug("Loaded config", "path", m.path)
	m.cfg = cfg
	return m, nil
}

// Get returns the current document
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Path returns the file the document is saved to
func (m *Manager) Path() string {
	return m.path
}

// Save writes the document, creating parent directories as needed.
func (m *Manager) Save() error {
	m.mu.RLock()
	data, err := Marshal(m.cfg)
	m.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	m.logger.Debug("Saved config", "path", m.path)
	return nil
}

// Replace validates cfg and makes it the current document. Call Save to
// persist it.
func (m *Manager) Replace(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	return nil
}

// Reset replaces the document with the defaults and saves it.
func (m *Manager) Reset() error {
	m.mu.Lock()
	m.cfg = Default()
	m.mu.Unlock()
	return m.Save()
}

// ForPlugin returns the effective config for p: its defaults overridden by
// the stored section, shallow and key-wise.
func (m *Manager) ForPlugin(p types.Plugin) types.PluginConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()

	merged := p.DefaultConfig().Clone()
	for k, v := range m.cfg.Plugins[p.Descriptor().Key()] {
		merged[k] = v
	}
	return merged
}

// MergeDefaults inserts every missing default key of every plugin into the
// stored document. It reports whether anything changed; the caller decides
// whether to Save.
func (m *Manager) MergeDefaults(plugins []types.Plugin) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	modified := false
	if m.cfg.Plugins == nil {
		m.cfg.Plugins = map[string]types.PluginConfig{}
		modified = true
	}

	for _, p := range plugins {
		defaults := p.DefaultConfig()
		if len(defaults) == 0 {
			continue
		}

		key := p.Descriptor().Key()
		stored, ok := m.cfg.Plugins[key]
		if !ok || stored == nil {
			m.cfg.Plugins[key] = defaults.Clone()
			m.logger.Debug("Added default config for plugin", "plugin", key)
			modified = true
			continue
		}

		for k, v := range defaults {
			if _, ok := stored[k]; !ok {
				stored[k] = v
				modified = true
			}
		}
	}
	return modified
}

// ValidatePlugin runs p's validation against its effective config. Failures
// are ErrConfiguration naming the provider.
func (m *Manager) ValidatePlugin(p types.Plugin) error {
	err := p.ValidateConfig(m.ForPlugin(p))
	if err == nil {
		return nil
	}

	if cfgErr, ok := types.AsError[types.ErrConfiguration](err); ok && cfgErr.Provider != "" {
		return err
	}
	return types.ErrConfiguration{Provider: p.Descriptor().Name, Err: err}
}

// ValidatePlugins validates every plugin and returns the first failure.
func (m *Manager) ValidatePlugins(plugins []types.Plugin) error {
	for _, p := range plugins {
		if err := m.ValidatePlugin(p); err != nil {
			return err
		}
	}
	return nil
}

// SetPlugin stores value under key in the provider's section.
func (m *Manager) SetPlugin(provider, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := strings.ToLower(provider)
	if m.cfg.Plugins == nil {
		m.cfg.Plugins = map[string]types.PluginConfig{}
	}
	if m.cfg.Plugins[name] == nil {
		m.cfg.Plugins[name] = types.PluginConfig{}
	}
	m.cfg.Plugins[name][key] = value
}

// Set assigns raw to the dotted key, coercing booleans and integers. Unknown
// keys and type mismatches are ErrConfiguration; the document is unchanged
// on error.
func (m *Manager) Set(key, raw string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return types.ErrConfiguration{Reason: fmt.Sprintf("invalid key %q", key)}
		}
	}

	data, err := yaml.Marshal(m.cfg)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	if err := setPath(doc, parts, Coerce(raw)); err != nil {
		return types.ErrConfiguration{Reason: fmt.Sprintf("cannot set %s", key), Err: err}
	}

	data, err = yaml.Marshal(doc)
	if err != nil {
		return err
	}
	next, err := decode(data, true)
	if err != nil {
		return types.ErrConfiguration{Reason: fmt.Sprintf("cannot set %s", key), Err: err}
	}
	if err := Validate(next); err != nil {
		return err
	}

	m.cfg = next
	return nil
}

func setPath(doc map[string]any, parts []string, value any) error {
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p]
		if !ok || next == nil {
			child := map[string]any{}
			cur[p] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%s is not a section", p)
		}
		cur = child
	}
	cur[parts[len(parts)-1]] = value
	return nil
}

// Coerce turns "true"/"false" into booleans and integer strings into ints.
func Coerce(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}
