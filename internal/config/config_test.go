package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".vscode-test.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `[extension]
development_path = "."
tests_path = "./out/test/suite/index"

[vscode]
version = "1.92.0"
cache_path = ".vscode-test"

[run]
launch_args = ["--disable-extensions"]

[run.env]
NODE_ENV = "test"
`

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir, validConfig)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.VSCode.Version != "1.92.0" {
		t.Errorf("version = %q, want %q", cfg.VSCode.Version, "1.92.0")
	}
	if got := cfg.Extension.DevelopmentPath; got != dir {
		t.Errorf("development_path = %q, want resolved to %q", got, dir)
	}
	if got := cfg.Extension.TestsPath; got != filepath.Join(dir, "out", "test", "suite", "index") {
		t.Errorf("tests_path = %q, want resolved against config dir", got)
	}
	if got := cfg.VSCode.CachePath; got != filepath.Join(dir, ".vscode-test") {
		t.Errorf("cache_path = %q, want resolved against config dir", got)
	}
	if len(cfg.Run.LaunchArgs) != 1 || cfg.Run.LaunchArgs[0] != "--disable-extensions" {
		t.Errorf("launch_args = %q", cfg.Run.LaunchArgs)
	}
	if cfg.Run.Env["NODE_ENV"] != "test" {
		t.Errorf("env = %v, want NODE_ENV=test", cfg.Run.Env)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFrom("/nonexistent/path/.vscode-test.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "/nonexistent/path/.vscode-test.toml") {
		t.Errorf("error should name the path, got: %v", err)
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	dir := t.TempDir()

	path := writeTestConfig(t, dir, `[extension]
tests_path = "./out"
`)
	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for missing development_path")
	}
	if !strings.Contains(err.Error(), "extension.development_path") {
		t.Errorf("error should mention extension.development_path, got: %v", err)
	}

	path = writeTestConfig(t, dir, `[extension]
development_path = "."
`)
	_, err = LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for missing tests_path")
	}
	if !strings.Contains(err.Error(), "extension.tests_path") {
		t.Errorf("error should mention extension.tests_path, got: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir, `[extension]
development_path = "."
tests_path = "./out"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.VSCode.Version != "stable" {
		t.Errorf("default version = %q, want %q", cfg.VSCode.Version, "stable")
	}
	if cfg.VSCode.ReuseMachineInstall {
		t.Error("reuse_machine_install should default to false")
	}
	if cfg.VSCode.CachePath != "" {
		t.Errorf("cache_path = %q, want empty when unset", cfg.VSCode.CachePath)
	}
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv(envOverride, "/custom/test.toml")
	if got := DefaultPath(); got != "/custom/test.toml" {
		t.Errorf("DefaultPath = %q, want the override", got)
	}
}

func TestTemplateConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir, TemplateConfig())

	if _, err := LoadFrom(path); err != nil {
		t.Fatalf("template config should load, got: %v", err)
	}
}
