// Package config loads the optional .vscode-test.toml file consumed by the
// CLI. The library API does not require it; callers there fill TestConfig
// directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultConfigName = ".vscode-test.toml"
const envOverride = "VSCODE_TEST_CONFIG"

type Config struct {
	Extension ExtensionConfig `toml:"extension"`
	VSCode    VSCodeConfig    `toml:"vscode"`
	Run       RunConfig       `toml:"run"`
}

type ExtensionConfig struct {
	DevelopmentPath string `toml:"development_path"`
	TestsPath       string `toml:"tests_path"`
}

type VSCodeConfig struct {
	Version             string `toml:"version"`
	Platform            string `toml:"platform"`
	CachePath           string `toml:"cache_path"`
	ReuseMachineInstall bool   `toml:"reuse_machine_install"`
}

type RunConfig struct {
	LaunchArgs []string          `toml:"launch_args"`
	Env        map[string]string `toml:"env"`
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	if p := os.Getenv(envOverride); p != "" {
		return p
	}
	return defaultConfigName
}

// Load reads configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads configuration from the given path. The extension paths are
// resolved to absolute paths relative to the config file's directory, since
// the editor process does not inherit the caller's working directory layout.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Apply defaults
	if cfg.VSCode.Version == "" {
		cfg.VSCode.Version = "stable"
	}

	// Validate required fields
	if cfg.Extension.DevelopmentPath == "" {
		return nil, fmt.Errorf("config: extension.development_path is required")
	}
	if cfg.Extension.TestsPath == "" {
		return nil, fmt.Errorf("config: extension.tests_path is required")
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving config dir for %s: %w", path, err)
	}
	cfg.Extension.DevelopmentPath = absAgainst(base, cfg.Extension.DevelopmentPath)
	cfg.Extension.TestsPath = absAgainst(base, cfg.Extension.TestsPath)
	if cfg.VSCode.CachePath != "" {
		cfg.VSCode.CachePath = absAgainst(base, cfg.VSCode.CachePath)
	}

	return &cfg, nil
}

func absAgainst(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// TemplateConfig returns a TOML template with placeholder values for
// first-time setup.
func TemplateConfig() string {
	return `[extension]
development_path = "."
tests_path = "./out/test/suite/index"

[vscode]
version    = "stable"
cache_path = ".vscode-test"
reuse_machine_install = false

[run]
launch_args = []

[run.env]
# KEY = "VALUE"
`
}
