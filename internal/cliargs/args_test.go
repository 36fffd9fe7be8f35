package cliargs

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func baseOptions() Options {
	return Options{
		ExtensionDevelopmentPath: "/ext",
		ExtensionTestsPath:       "/tests",
	}
}

func TestBuildFlagSequence(t *testing.T) {
	got := Build(baseOptions(), "/cache")

	want := []string{
		"--no-sandbox",
		"--disable-updates",
		"--skip-welcome",
		"--skip-release-notes",
		"--disable-workspace-trust",
		"--extensionDevelopmentPath=/ext",
		"--extensionTestsPath=/tests",
		"--extensions-dir=" + filepath.Join("/cache", "extensions"),
		"--user-data-dir=" + filepath.Join("/cache", "user-data"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestLaunchArgsComeFirstInOrder(t *testing.T) {
	opts := baseOptions()
	opts.LaunchArgs = []string{"/workspace", "--disable-extensions", "--log=debug"}

	got := Build(opts, "/cache")

	if !reflect.DeepEqual(got[:3], opts.LaunchArgs) {
		t.Errorf("launch args not first in order: %q", got[:3])
	}
	if got[3] != "--no-sandbox" {
		t.Errorf("mandatory flags should follow launch args, got %q", got[3])
	}
}

func TestIsolationFlagsExactlyOnce(t *testing.T) {
	got := Build(baseOptions(), "/cache")

	for _, prefix := range []string{"--extensions-dir=", "--user-data-dir="} {
		n := 0
		for _, a := range got {
			if strings.HasPrefix(a, prefix) {
				n++
			}
		}
		if n != 1 {
			t.Errorf("%s appears %d times, want exactly 1", prefix, n)
		}
	}
}

func TestExplicitIsolationFlagSuppressesInjection(t *testing.T) {
	tests := []struct {
		name       string
		launchArgs []string
		suppressed string
	}{
		{"user-data-dir equals form", []string{"--user-data-dir=/my/data"}, "--user-data-dir="},
		{"user-data-dir bare form", []string{"--user-data-dir", "/my/data"}, "--user-data-dir="},
		{"extensions-dir equals form", []string{"--extensions-dir=/my/ext"}, "--extensions-dir="},
		{"extensions-dir bare form", []string{"--extensions-dir", "/my/ext"}, "--extensions-dir="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := baseOptions()
			opts.LaunchArgs = tt.launchArgs
			got := Build(opts, "/cache")

			n := 0
			for _, a := range got {
				if strings.HasPrefix(a, tt.suppressed) || a == strings.TrimSuffix(tt.suppressed, "=") {
					n++
				}
			}
			if n != 1 {
				t.Errorf("%s appears %d times, want only the caller's occurrence", tt.suppressed, n)
			}
		})
	}
}

func TestReuseMachineInstallSkipsIsolation(t *testing.T) {
	opts := baseOptions()
	opts.ReuseMachineInstall = true

	got := Build(opts, "/cache")

	for _, a := range got {
		if strings.HasPrefix(a, "--extensions-dir") || strings.HasPrefix(a, "--user-data-dir") {
			t.Errorf("unexpected isolation flag %q with ReuseMachineInstall", a)
		}
	}
}

func TestProfileArgsBothMissing(t *testing.T) {
	got := ProfileArgs([]string{"--no-sandbox"}, "/cache")
	want := []string{
		"--extensions-dir=" + filepath.Join("/cache", "extensions"),
		"--user-data-dir=" + filepath.Join("/cache", "user-data"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProfileArgs = %q, want %q", got, want)
	}
}

func TestHasFlagIsTokenLevelOnly(t *testing.T) {
	// A flag embedded inside a combined token is not detected. Narrow scope
	// on purpose: widening it would change which caller flags suppress
	// injection.
	args := []string{"--other=--user-data-dir=/x"}
	if hasFlag(args, "user-data-dir") {
		t.Error("combined-string token should not count as the flag")
	}
	if !hasFlag([]string{"--user-data-dir"}, "user-data-dir") {
		t.Error("bare token should count")
	}
	if !hasFlag([]string{"--user-data-dir=/x"}, "user-data-dir") {
		t.Error("equals form should count")
	}
	if hasFlag([]string{"--user-data-dir-extra=/x"}, "user-data-dir") {
		t.Error("longer flag name should not count")
	}
}
