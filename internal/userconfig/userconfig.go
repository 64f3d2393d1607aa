// Package userconfig provides user configuration management for opamresolve.
// Configuration is stored in ~/.opamresolve/config.toml and can be modified
// via the `opamresolve config` command.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/tsukumogami/opamresolve/internal/config"
)

// Config represents user-configurable settings. Empty values mean "not
// set"; callers fall back to their own defaults.
type Config struct {
	// Scope is the identifier prefix handled by the opam resolver.
	Scope string `toml:"scope,omitempty"`

	// OCamlVersion is the installed compiler version.
	OCamlVersion string `toml:"ocaml_version,omitempty"`

	// Repository is an opam repository checkout or snapshot archive.
	Repository string `toml:"repository,omitempty"`

	// Overrides is the override directory.
	Overrides string `toml:"overrides,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{}
}

// Load reads the config file and returns the configuration.
// Returns default values if the file doesn't exist.
// Returns an error only for file parsing issues, not missing files.
func Load() (*Config, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return DefaultConfig(), nil // Silently use defaults
	}

	return loadFromPath(cfg.ConfigFile)
}

// loadFromPath reads config from a specific file path (for testing).
func loadFromPath(path string) (*Config, error) {
	userCfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return userCfg, nil // File doesn't exist, use defaults
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), userCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return userCfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return c.saveToPath(cfg.ConfigFile)
}

// saveToPath writes config to a specific file path (for testing).
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get returns the value of a config key as a string.
// Returns empty string and false if the key doesn't exist.
func (c *Config) Get(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "scope":
		return c.Scope, true
	case "ocaml_version":
		return c.OCamlVersion, true
	case "repository":
		return c.Repository, true
	case "overrides":
		return c.Overrides, true
	default:
		return "", false
	}
}

// Set updates a config value from a string. An empty value unsets the key.
// Returns an error if the key doesn't exist or the value is invalid.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(key) {
	case "scope":
		if value != "" && (!strings.HasPrefix(value, "@") || !strings.HasSuffix(value, "/")) {
			return fmt.Errorf("invalid value for scope: must look like @name/")
		}
		c.Scope = value
	case "ocaml_version":
		if value != "" {
			if _, err := semver.NewVersion(value); err != nil {
				return fmt.Errorf("invalid value for ocaml_version: %w", err)
			}
		}
		c.OCamlVersion = value
	case "repository":
		c.Repository = value
	case "overrides":
		c.Overrides = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// AvailableKeys returns a list of all configurable keys with descriptions.
func AvailableKeys() map[string]string {
	return map[string]string{
		"scope":         "Identifier prefix handled by the opam resolver (default @opam/)",
		"ocaml_version": "Installed OCaml compiler version used to filter candidates",
		"repository":    "opam repository checkout directory or snapshot archive",
		"overrides":     "Directory of <package>.toml override files",
	}
}

// SortedKeys returns the configurable keys in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(AvailableKeys()))
	for k := range AvailableKeys() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
