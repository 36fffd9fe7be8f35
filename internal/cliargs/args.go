// Package cliargs builds the command-line vector handed to the editor binary
// for one test run.
package cliargs

import (
	"path/filepath"
	"strings"
)

// mandatoryFlags are always appended after caller-supplied launch args, in
// this order.
var mandatoryFlags = []string{
	"--no-sandbox",
	"--disable-updates",
	"--skip-welcome",
	"--skip-release-notes",
	"--disable-workspace-trust",
}

// Options holds the caller-controlled inputs to one argument build.
type Options struct {
	ExtensionDevelopmentPath string
	ExtensionTestsPath       string

	// LaunchArgs are placed before the mandatory flags, preserving order, so
	// a workspace or file path can remain the first positional argument.
	LaunchArgs []string

	// ReuseMachineInstall suppresses the isolation flags so the editor uses
	// the machine's own user-data and extensions directories.
	ReuseMachineInstall bool
}

// Build produces the final argument vector: launch args, then the mandatory
// flags and the extension paths verbatim, then any isolation flags still
// missing from the combined list (computed against cacheRoot).
func Build(opts Options, cacheRoot string) []string {
	args := make([]string, 0, len(opts.LaunchArgs)+len(mandatoryFlags)+4)
	args = append(args, opts.LaunchArgs...)
	args = append(args, mandatoryFlags...)
	args = append(args,
		"--extensionDevelopmentPath="+opts.ExtensionDevelopmentPath,
		"--extensionTestsPath="+opts.ExtensionTestsPath,
	)
	if !opts.ReuseMachineInstall {
		args = append(args, ProfileArgs(args, cacheRoot)...)
	}
	return args
}

// ProfileArgs returns the isolation flags missing from args, pointing under
// cacheRoot. An explicit --extensions-dir or --user-data-dir in args (bare or
// =value form) suppresses that flag, so the builder never emits a duplicate.
func ProfileArgs(args []string, cacheRoot string) []string {
	var out []string
	if !hasFlag(args, "extensions-dir") {
		out = append(out, "--extensions-dir="+filepath.Join(cacheRoot, "extensions"))
	}
	if !hasFlag(args, "user-data-dir") {
		out = append(out, "--user-data-dir="+filepath.Join(cacheRoot, "user-data"))
	}
	return out
}

// hasFlag is a token-level scan only: it matches --name and --name=value but
// does not parse quoting or flags smuggled in through a combined string.
// Deliberately narrow; widening it would change which caller flags suppress
// isolation.
func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == "--"+name || strings.HasPrefix(a, "--"+name+"=") {
			return true
		}
	}
	return false
}
