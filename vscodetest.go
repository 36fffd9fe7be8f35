// Package vscodetest runs an extension's integration tests inside a real,
// isolated copy of the editor, downloaded on first use.
package vscodetest

import (
	"context"
	"errors"
	"io"

	"github.com/qiu8310/vscode-test/internal/cliargs"
	"github.com/qiu8310/vscode-test/internal/download"
	"github.com/qiu8310/vscode-test/internal/progress"
	"github.com/qiu8310/vscode-test/internal/supervise"
)

// Reporter receives resolver progress events. The runner itself never calls
// it; it is forwarded to the executable resolver untouched.
type Reporter interface {
	Stage(name, detail string)
	Progress(received, total int64)
}

// NewConsoleReporter returns a Reporter that writes to stderr.
func NewConsoleReporter() Reporter {
	return progress.NewConsole()
}

// TestConfig describes one test run. It is read-only for the duration of the
// run and nothing is retained afterwards.
type TestConfig struct {
	// ExecutablePath points at a ready-to-run editor binary. When empty, the
	// binary for Version/Platform is resolved, downloading it on first use.
	ExecutablePath string

	// Version and Platform select the build to resolve when ExecutablePath
	// is empty. See DownloadOptions for the accepted forms.
	Version  string
	Platform string

	// CachePath holds downloaded builds and the isolated profile
	// directories. Empty means .vscode-test under the working directory.
	CachePath string

	// ExtensionDevelopmentPath and ExtensionTestsPath are passed to the
	// editor verbatim and are required.
	ExtensionDevelopmentPath string
	ExtensionTestsPath       string

	// ExtensionTestsEnv is overlaid onto the inherited environment of the
	// child; a nil value removes the inherited variable.
	ExtensionTestsEnv map[string]*string

	// LaunchArgs are placed before the flags this runner injects, so the
	// first entry may be a workspace or folder for the editor to open. An
	// explicit --extensions-dir or --user-data-dir here suppresses the
	// injected isolation flag.
	LaunchArgs []string

	// ReuseMachineInstall skips profile isolation so the editor uses the
	// machine's own user data and extensions.
	ReuseMachineInstall bool

	// Reporter is handed to the resolver for download progress.
	Reporter Reporter

	// Stdout and Stderr receive the child's output; defaults are the
	// process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// ErrNonZeroExit is returned by RunTests when the editor ran the tests to
// completion but reported failure. The exit code is logged and also returned.
var ErrNonZeroExit = supervise.ErrNonZeroExit

// RunTests resolves the editor binary if needed, launches it against the
// extension under test and blocks until it exits. The returned code is the
// child's exit code; err is nil only for exit code 0. ctx covers resolution
// only: once launched, the child runs to completion.
func RunTests(ctx context.Context, cfg TestConfig) (int, error) {
	if cfg.ExtensionDevelopmentPath == "" {
		return -1, errors.New("vscodetest: ExtensionDevelopmentPath is required")
	}
	if cfg.ExtensionTestsPath == "" {
		return -1, errors.New("vscodetest: ExtensionTestsPath is required")
	}

	exe := cfg.ExecutablePath
	cacheRoot := cfg.CachePath
	if cacheRoot == "" {
		cacheRoot = download.DefaultCachePath()
	}
	if exe == "" {
		inst, err := download.Resolve(ctx, download.Options{
			Version:   cfg.Version,
			Platform:  cfg.Platform,
			CachePath: cacheRoot,
			Reporter:  reporterOrSilent(cfg.Reporter),
		})
		if err != nil {
			return -1, err
		}
		exe = inst.ExecutablePath
		cacheRoot = inst.CacheRoot
	}

	args := cliargs.Build(cliargs.Options{
		ExtensionDevelopmentPath: cfg.ExtensionDevelopmentPath,
		ExtensionTestsPath:       cfg.ExtensionTestsPath,
		LaunchArgs:               cfg.LaunchArgs,
		ReuseMachineInstall:      cfg.ReuseMachineInstall,
	}, cacheRoot)

	return supervise.Run(supervise.Options{
		Path:   exe,
		Args:   args,
		Env:    cfg.ExtensionTestsEnv,
		Stdout: cfg.Stdout,
		Stderr: cfg.Stderr,
	})
}

// DownloadOptions configure a standalone download.
type DownloadOptions struct {
	// Version is "", "stable" or "latest" for the newest release, "insiders"
	// for the newest insiders build, an exact version like "1.92.0", or a
	// semver range like "1.90.x" picking the newest matching release.
	Version string

	// Platform is an update-service identifier such as "linux-x64"; empty
	// means detect from the running OS and architecture.
	Platform string

	// CachePath defaults to .vscode-test under the working directory.
	CachePath string

	Reporter Reporter
}

// Install describes a downloaded, ready-to-run editor build.
type Install struct {
	Version        string
	Platform       string
	Dir            string
	ExecutablePath string
	CacheRoot      string
}

// Download fetches (or reuses from cache) an editor build without running
// anything. RunTests performs the same resolution implicitly when no
// executable path is set.
func Download(ctx context.Context, opts DownloadOptions) (*Install, error) {
	inst, err := download.Resolve(ctx, download.Options{
		Version:   opts.Version,
		Platform:  opts.Platform,
		CachePath: opts.CachePath,
		Reporter:  reporterOrSilent(opts.Reporter),
	})
	if err != nil {
		return nil, err
	}
	return &Install{
		Version:        inst.Version,
		Platform:       inst.Platform,
		Dir:            inst.Dir,
		ExecutablePath: inst.ExecutablePath,
		CacheRoot:      inst.CacheRoot,
	}, nil
}

func reporterOrSilent(r Reporter) progress.Reporter {
	if r == nil {
		return progress.Silent{}
	}
	return r
}
