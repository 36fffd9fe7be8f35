//go:build windows

package supervise

import "os"

// Windows has no POSIX signals; termination always carries an exit code.
func terminationSignal(*os.ProcessState) string { return "" }
