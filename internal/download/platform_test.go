package download

import (
	"path/filepath"
	"testing"
)

func TestValidPlatform(t *testing.T) {
	for _, p := range knownPlatforms {
		if !ValidPlatform(p) {
			t.Errorf("ValidPlatform(%q) = false, want true", p)
		}
	}
	if ValidPlatform("solaris-sparc") {
		t.Error("ValidPlatform should reject unknown identifiers")
	}
}

func TestExecutablePath(t *testing.T) {
	tests := []struct {
		platform string
		insiders bool
		want     string
	}{
		{"linux-x64", false, filepath.Join("/d", "VSCode-linux-x64", "code")},
		{"linux-arm64", false, filepath.Join("/d", "VSCode-linux-arm64", "code")},
		{"linux-x64", true, filepath.Join("/d", "VSCode-linux-x64", "code-insiders")},
		{"darwin", false, filepath.Join("/d", "Visual Studio Code.app", "Contents", "MacOS", "Electron")},
		{"darwin-arm64", true, filepath.Join("/d", "Visual Studio Code - Insiders.app", "Contents", "MacOS", "Electron")},
		{"win32-x64-archive", false, filepath.Join("/d", "Code.exe")},
		{"win32-arm64-archive", true, filepath.Join("/d", "Code - Insiders.exe")},
	}

	for _, tt := range tests {
		got := ExecutablePath("/d", tt.platform, tt.insiders)
		if got != tt.want {
			t.Errorf("ExecutablePath(%q, insiders=%v) = %q, want %q", tt.platform, tt.insiders, got, tt.want)
		}
	}
}

func TestArchiveExt(t *testing.T) {
	tests := []struct {
		platform string
		want     string
	}{
		{"linux-x64", ".tar.gz"},
		{"linux-armhf", ".tar.gz"},
		{"darwin", ".zip"},
		{"win32-x64-archive", ".zip"},
	}
	for _, tt := range tests {
		if got := archiveExt(tt.platform); got != tt.want {
			t.Errorf("archiveExt(%q) = %q, want %q", tt.platform, got, tt.want)
		}
	}
}

func TestQuality(t *testing.T) {
	if got := quality("1.92.0"); got != "stable" {
		t.Errorf("quality = %q, want stable", got)
	}
	if got := quality("1.93.0-insider"); got != "insider" {
		t.Errorf("quality = %q, want insider", got)
	}
}
