package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv(EnvHome, "")
	t.Setenv(EnvRepository, "")
	t.Setenv(EnvOverrides, "")

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	expectedHome := filepath.Join(home, ".opamresolve")

	if cfg.HomeDir != expectedHome {
		t.Errorf("HomeDir = %q, want %q", cfg.HomeDir, expectedHome)
	}
	if cfg.RepositoryDir != filepath.Join(expectedHome, "repository") {
		t.Errorf("RepositoryDir = %q, want %q", cfg.RepositoryDir, filepath.Join(expectedHome, "repository"))
	}
	if cfg.OverridesDir != filepath.Join(expectedHome, "overrides") {
		t.Errorf("OverridesDir = %q, want %q", cfg.OverridesDir, filepath.Join(expectedHome, "overrides"))
	}
	if cfg.ConfigFile != filepath.Join(expectedHome, "config.toml") {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, filepath.Join(expectedHome, "config.toml"))
	}
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(EnvHome, tmpDir)
	t.Setenv(EnvRepository, "/srv/opam-repository.tar.zst")
	t.Setenv(EnvOverrides, "/srv/overrides")

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}

	if cfg.HomeDir != tmpDir {
		t.Errorf("HomeDir = %q, want %q", cfg.HomeDir, tmpDir)
	}
	if cfg.ConfigFile != filepath.Join(tmpDir, "config.toml") {
		t.Errorf("ConfigFile = %q, want under %q", cfg.ConfigFile, tmpDir)
	}
	if cfg.RepositoryDir != "/srv/opam-repository.tar.zst" {
		t.Errorf("RepositoryDir = %q, want env value", cfg.RepositoryDir)
	}
	if cfg.OverridesDir != "/srv/overrides" {
		t.Errorf("OverridesDir = %q, want env value", cfg.OverridesDir)
	}
}

func TestDefaultConfig_HomeOverride(t *testing.T) {
	t.Setenv(EnvHome, "")
	t.Setenv(EnvRepository, "")
	old := DefaultHomeOverride
	DefaultHomeOverride = "/opt/opamresolve-dev"
	defer func() { DefaultHomeOverride = old }()

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}
	if cfg.HomeDir != "/opt/opamresolve-dev" {
		t.Errorf("HomeDir = %q, want override", cfg.HomeDir)
	}
	if cfg.RepositoryDir != filepath.Join("/opt/opamresolve-dev", "repository") {
		t.Errorf("RepositoryDir = %q", cfg.RepositoryDir)
	}
}

func TestEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{
		HomeDir:       filepath.Join(tmpDir, "opamresolve"),
		RepositoryDir: filepath.Join(tmpDir, "opamresolve", "repository"),
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() failed: %v", err)
	}

	info, err := os.Stat(cfg.HomeDir)
	if err != nil || !info.IsDir() {
		t.Errorf("HomeDir %q was not created: %v", cfg.HomeDir, err)
	}
	if _, err := os.Stat(cfg.RepositoryDir); !os.IsNotExist(err) {
		t.Errorf("RepositoryDir should not be created, stat err = %v", err)
	}
}

func TestGetFetchTimeout(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"default when not set", "", DefaultFetchTimeout},
		{"valid duration", "30s", 30 * time.Second},
		{"valid minutes", "5m", 5 * time.Minute},
		{"invalid format uses default", "soon", DefaultFetchTimeout},
		{"too low uses minimum", "100ms", MinFetchTimeout},
		{"too high uses maximum", "1h", MaxFetchTimeout},
		{"at minimum", "1s", time.Second},
		{"at maximum", "10m", 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvFetchTimeout, tt.envValue)
			if got := GetFetchTimeout(); got != tt.expected {
				t.Errorf("GetFetchTimeout() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetOCamlVersionAndScope(t *testing.T) {
	t.Setenv(EnvOCamlVersion, "")
	t.Setenv(EnvScope, "")
	if GetOCamlVersion() != "" || GetScope() != "" {
		t.Error("expected empty values when unset")
	}

	t.Setenv(EnvOCamlVersion, "4.14.1")
	t.Setenv(EnvScope, "@esy-ocaml/")
	if got := GetOCamlVersion(); got != "4.14.1" {
		t.Errorf("GetOCamlVersion() = %q", got)
	}
	if got := GetScope(); got != "@esy-ocaml/" {
		t.Errorf("GetScope() = %q", got)
	}
}
