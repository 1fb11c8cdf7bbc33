// Package config provides configuration management for fnote.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/footnote-cli/pkg/footnote"
)

// Queue backends.
const (
	QueueMemory = "memory"
	QueueSQLite = "sqlite"
)

// DefaultChunkSize is the number of bytes read from the input at a time.
const DefaultChunkSize = 4096

// Config holds the fnote configuration.
type Config struct {
	ChunkSize      int    `yaml:"chunk_size,omitempty"`
	Queue          string `yaml:"queue,omitempty"`
	QueuePath      string `yaml:"queue_path,omitempty"`
	UnmatchedClose string `yaml:"unmatched_close,omitempty"`
	Unterminated   string `yaml:"unterminated,omitempty"`
	Append         bool   `yaml:"append,omitempty"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in empty fields.
func (c *Config) ApplyDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Queue == "" {
		c.Queue = QueueMemory
	}
	if c.UnmatchedClose == "" {
		c.UnmatchedClose = footnote.UnmatchedClosePlain.String()
	}
	if c.Unterminated == "" {
		c.Unterminated = footnote.UnterminatedFootnote.String()
	}
}

// Validate checks that all fields hold valid values.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("chunk_size must be positive")
	}

	switch c.Queue {
	case QueueMemory, QueueSQLite:
	default:
		return fmt.Errorf("queue must be %q or %q, got %q", QueueMemory, QueueSQLite, c.Queue)
	}

	if _, err := footnote.ParseUnmatchedClosePolicy(c.UnmatchedClose); err != nil {
		return err
	}
	if _, err := footnote.ParseUnterminatedPolicy(c.Unterminated); err != nil {
		return err
	}

	return nil
}

// Policies returns the parsed processor policies.
func (c *Config) Policies() (footnote.UnmatchedClosePolicy, footnote.UnterminatedPolicy, error) {
	unmatched, err := footnote.ParseUnmatchedClosePolicy(c.UnmatchedClose)
	if err != nil {
		return 0, 0, err
	}
	unterminated, err := footnote.ParseUnterminatedPolicy(c.Unterminated)
	if err != nil {
		return 0, 0, err
	}
	return unmatched, unterminated, nil
}

// EnvVars lists the environment variables read by LoadFromEnv.
var EnvVars = []string{
	"FNOTE_CHUNK_SIZE",
	"FNOTE_QUEUE",
	"FNOTE_QUEUE_PATH",
	"FNOTE_UNMATCHED_CLOSE",
	"FNOTE_UNTERMINATED",
	"FNOTE_APPEND",
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// A numeric or boolean variable that does not parse is an error and leaves
// the field unchanged.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("FNOTE_CHUNK_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FNOTE_CHUNK_SIZE %q: must be an integer", v)
		}
		c.ChunkSize = n
	}
	if v := os.Getenv("FNOTE_QUEUE"); v != "" {
		c.Queue = strings.ToLower(v)
	}
	if v := os.Getenv("FNOTE_QUEUE_PATH"); v != "" {
		c.QueuePath = v
	}
	if v := os.Getenv("FNOTE_UNMATCHED_CLOSE"); v != "" {
		c.UnmatchedClose = strings.ToLower(v)
	}
	if v := os.Getenv("FNOTE_UNTERMINATED"); v != "" {
		c.Unterminated = strings.ToLower(v)
	}
	if v := os.Getenv("FNOTE_APPEND"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FNOTE_APPEND %q: must be true or false", v)
		}
		c.Append = b
	}
	return nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fnote", "config.yml")
	}

	// Fall back to ~/.config/fnote/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".fnote", "config.yml")
	}

	return filepath.Join(home, ".config", "fnote", "config.yml")
}

// ResolvePath returns path, or the default configuration file path when path
// is empty.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	return DefaultConfigPath()
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file, overrides it with environment
// variables and fills in defaults. A missing file is not an error; a file
// that exists but cannot be parsed is, and so is an environment variable
// that cannot be parsed.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// If file doesn't exist, start with empty config
		cfg = &Config{}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
