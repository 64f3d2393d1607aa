package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// EnvHome is the environment variable to override the default opamresolve home directory
	EnvHome = "OPAMRESOLVE_HOME"

	// EnvRepository points at an opam repository checkout or snapshot archive
	EnvRepository = "OPAMRESOLVE_REPOSITORY"

	// EnvOverrides points at the override directory
	EnvOverrides = "OPAMRESOLVE_OVERRIDES"

	// EnvOCamlVersion is the installed compiler version used for compatibility filtering
	EnvOCamlVersion = "OPAMRESOLVE_OCAML_VERSION"

	// EnvScope is the identifier prefix handled by the opam resolver
	EnvScope = "OPAMRESOLVE_SCOPE"

	// EnvFetchTimeout bounds how long loading the repository may take
	EnvFetchTimeout = "OPAMRESOLVE_FETCH_TIMEOUT"

	// DefaultFetchTimeout is the default repository load timeout (2 minutes)
	DefaultFetchTimeout = 2 * time.Minute

	// MinFetchTimeout and MaxFetchTimeout bound EnvFetchTimeout
	MinFetchTimeout = 1 * time.Second
	MaxFetchTimeout = 10 * time.Minute
)

// GetFetchTimeout returns the configured repository load timeout from
// OPAMRESOLVE_FETCH_TIMEOUT. If not set or invalid, returns DefaultFetchTimeout.
// Accepts duration strings like "30s", "1m", "2m30s".
func GetFetchTimeout() time.Duration {
	envValue := os.Getenv(EnvFetchTimeout)
	if envValue == "" {
		return DefaultFetchTimeout
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			EnvFetchTimeout, envValue, DefaultFetchTimeout)
		return DefaultFetchTimeout
	}

	if duration < MinFetchTimeout {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum %v\n",
			EnvFetchTimeout, duration, MinFetchTimeout)
		return MinFetchTimeout
	}
	if duration > MaxFetchTimeout {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum %v\n",
			EnvFetchTimeout, duration, MaxFetchTimeout)
		return MaxFetchTimeout
	}

	return duration
}

// GetOCamlVersion returns OPAMRESOLVE_OCAML_VERSION, or "" when unset.
func GetOCamlVersion() string {
	return os.Getenv(EnvOCamlVersion)
}

// GetScope returns OPAMRESOLVE_SCOPE, or "" when unset.
func GetScope() string {
	return os.Getenv(EnvScope)
}

// DefaultHomeOverride can be set by the binary's main package to change the
// default home directory. OPAMRESOLVE_HOME still takes precedence.
var DefaultHomeOverride string

// Config holds opamresolve paths
type Config struct {
	HomeDir       string // $OPAMRESOLVE_HOME
	RepositoryDir string // $OPAMRESOLVE_HOME/repository, or $OPAMRESOLVE_REPOSITORY
	OverridesDir  string // $OPAMRESOLVE_HOME/overrides, or $OPAMRESOLVE_OVERRIDES
	ConfigFile    string // $OPAMRESOLVE_HOME/config.toml
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		if DefaultHomeOverride != "" {
			home = DefaultHomeOverride
		} else {
			userHome, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}
			home = filepath.Join(userHome, ".opamresolve")
		}
	}

	cfg := &Config{
		HomeDir:       home,
		RepositoryDir: filepath.Join(home, "repository"),
		OverridesDir:  filepath.Join(home, "overrides"),
		ConfigFile:    filepath.Join(home, "config.toml"),
	}
	if v := os.Getenv(EnvRepository); v != "" {
		cfg.RepositoryDir = v
	}
	if v := os.Getenv(EnvOverrides); v != "" {
		cfg.OverridesDir = v
	}
	return cfg, nil
}

// EnsureDirectories creates the home directory. The repository and
// override locations are read only and never created.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.HomeDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.HomeDir, err)
	}
	return nil
}
