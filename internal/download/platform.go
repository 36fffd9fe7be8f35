package download

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// knownPlatforms are the update-service download identifiers this resolver
// understands.
var knownPlatforms = []string{
	"linux-x64",
	"linux-arm64",
	"linux-armhf",
	"darwin",
	"darwin-arm64",
	"win32-x64-archive",
	"win32-arm64-archive",
}

// DetectPlatform maps the running OS and architecture to an update-service
// platform identifier.
func DetectPlatform() (string, error) {
	switch runtime.GOOS {
	case "linux":
		switch runtime.GOARCH {
		case "amd64":
			return "linux-x64", nil
		case "arm64":
			return "linux-arm64", nil
		case "arm":
			return "linux-armhf", nil
		}
	case "darwin":
		switch runtime.GOARCH {
		case "amd64":
			return "darwin", nil
		case "arm64":
			return "darwin-arm64", nil
		}
	case "windows":
		switch runtime.GOARCH {
		case "amd64":
			return "win32-x64-archive", nil
		case "arm64":
			return "win32-arm64-archive", nil
		}
	}
	return "", fmt.Errorf("no editor build published for %s/%s", runtime.GOOS, runtime.GOARCH)
}

// ValidPlatform reports whether p is a known platform identifier.
func ValidPlatform(p string) bool {
	for _, k := range knownPlatforms {
		if p == k {
			return true
		}
	}
	return false
}

// ExecutablePath returns the editor binary inside an extracted install
// directory for the given platform and quality.
func ExecutablePath(dir, platform string, insiders bool) string {
	switch {
	case strings.HasPrefix(platform, "darwin"):
		app := "Visual Studio Code.app"
		if insiders {
			app = "Visual Studio Code - Insiders.app"
		}
		return filepath.Join(dir, app, "Contents", "MacOS", "Electron")
	case strings.HasPrefix(platform, "win32"):
		exe := "Code.exe"
		if insiders {
			exe = "Code - Insiders.exe"
		}
		return filepath.Join(dir, exe)
	default:
		bin := "code"
		if insiders {
			bin = "code-insiders"
		}
		// Linux archives carry a VSCode-<platform> top-level directory.
		return filepath.Join(dir, "VSCode-"+platform, bin)
	}
}

// archiveExt returns the archive file extension the update service serves
// for a platform.
func archiveExt(platform string) string {
	if strings.HasPrefix(platform, "linux") {
		return ".tar.gz"
	}
	return ".zip"
}
