// Package config loads and persists the lrcfetch configuration document and
// merges per-provider settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mydehq/lrcfetch/internal/types"
)

// Config is the persisted configuration document.
type Config struct {
	DownloadPath       string                        `yaml:"downloadPath" validate:"required"`
	CreateFolder       bool                          `yaml:"createFolder"`
	AlbumFolderName    string                        `yaml:"albumFolderName" validate:"required_if=CreateFolder true"`
	PlaylistFolderName string                        `yaml:"playlistFolderName" validate:"required_if=CreateFolder true"`
	FileName           string                        `yaml:"fileName" validate:"required"`
	SyncedLyrics       bool                          `yaml:"syncedLyrics"`
	EnhancedLRC        bool                          `yaml:"enhancedLrc"`
	ForceDownload      bool                          `yaml:"forceDownload"`
	ASCIIFilenames     bool                          `yaml:"asciiFilenames"`
	Logger             LoggerConfig                  `yaml:"logger"`
	Metrics            MetricsConfig                 `yaml:"metrics"`
	Plugins            map[string]types.PluginConfig `yaml:"plugins"`
}

// LoggerConfig controls the CLI logger when no flag overrides it
type LoggerConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		DownloadPath:       "downloads",
		CreateFolder:       true,
		AlbumFolderName:    "{name} - {artists}",
		PlaylistFolderName: "{name} - {owner}",
		FileName:           "{track_number}. {name}",
		SyncedLyrics:       true,
		EnhancedLRC:        true,
		ForceDownload:      false,
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
		},
		Plugins: map[string]types.PluginConfig{},
	}
}

// Clone returns a deep copy of the document.
func (c *Config) Clone() *Config {
	out := *c
	out.Plugins = make(map[string]types.PluginConfig, len(c.Plugins))
	for k, v := range c.Plugins {
		out.Plugins[k] = v.Clone()
	}
	return &out
}

// DefaultPath returns $XDG_CONFIG_HOME/lrcfetch/config.yml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "lrcfetch", "config.yml")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the document and reports the first problem as ErrConfiguration.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return types.ErrConfiguration{Reason: "validation failed", Err: err}
	}

	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required", "required_if":
		return types.ErrConfiguration{Reason: fmt.Sprintf("%s is required", field)}
	case "oneof":
		return types.ErrConfiguration{Reason: fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())}
	default:
		return types.ErrConfiguration{Reason: fmt.Sprintf("%s failed %s validation", field, fe.Tag())}
	}
}

// Marshal renders cfg as YAML with two-space indentation.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode parses data over the defaults. Unknown keys are rejected when strict.
func decode(data []byte, strict bool) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(strict)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
