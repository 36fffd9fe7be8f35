// Package supervise runs one editor process to completion and converts its
// termination into a single result.
package supervise

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
)

// ErrNonZeroExit marks a child that ran to completion but reported failure.
// The numeric code is logged before the result is returned; callers only
// branch on the kind.
var ErrNonZeroExit = errors.New("test run failed with a non-zero exit code")

// SignalError reports a child killed by a signal.
type SignalError struct {
	Signal string
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("test run terminated by signal %s", e.Signal)
}

// SpawnError reports that the child could not be started at all, as opposed
// to starting and then failing.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Options describe one child process run.
type Options struct {
	Path string
	Args []string

	// Env is overlaid onto the inherited environment; a nil value removes
	// the inherited variable.
	Env map[string]*string

	// Stdout and Stderr receive the child's output verbatim, one relay per
	// stream. Defaults: os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// Log receives the exit code / signal line. Default: os.Stderr.
	Log io.Writer
}

// outcome is one termination notification: the (code, signal) pair reported
// by whichever channel observed the termination, or a pre-termination error.
type outcome struct {
	code   int    // -1 when the child never reported an exit code
	signal string // empty unless the child was killed by a signal
	err    error  // spawn or reaping failure, not a child exit status
}

// completion is a one-shot latch. A run can learn about termination through
// more than one notification, in either order; whichever settles first wins
// and every later settle is dropped.
type completion struct {
	once sync.Once
	ch   chan outcome
}

func newCompletion() *completion {
	return &completion{ch: make(chan outcome, 1)}
}

// settle records o unless another outcome already won, and reports whether
// this call was the one that settled the run.
func (c *completion) settle(o outcome) bool {
	won := false
	c.once.Do(func() {
		c.ch <- o
		won = true
	})
	return won
}

// wait blocks until the run settles.
func (c *completion) wait() outcome { return <-c.ch }

// Run starts the executable and blocks until it terminates, relaying its
// output streams the whole time. The returned code is the child's exit code;
// err is nil only for exit code 0. There is no cancellation or timeout: a
// run lasts exactly as long as the child does.
func Run(opts Options) (int, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stderr
	}

	cmd := exec.Command(opts.Path, opts.Args...)
	cmd.Env = MergeEnv(os.Environ(), opts.Env)

	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return -1, &SpawnError{Path: opts.Path, Err: err}
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return -1, &SpawnError{Path: opts.Path, Err: err}
	}

	done := newCompletion()

	if err := cmd.Start(); err != nil {
		// The latch stays armed: a termination notification that still
		// arrives for a half-started process is absorbed, never handled as
		// a second result.
		done.settle(outcome{code: -1, err: &SpawnError{Path: opts.Path, Err: err}})
	} else {
		var relays sync.WaitGroup
		relays.Add(2)
		go relay(stdout, outPipe, &relays)
		go relay(stderr, errPipe, &relays)

		go func() {
			// The pipes must be drained before Wait reaps the child.
			relays.Wait()
			done.settle(outcomeFromWait(cmd.Wait(), cmd))
		}()
	}

	return resolve(done.wait(), logw)
}

func relay(dst io.Writer, src io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()
	_, _ = io.Copy(dst, src)
}

// outcomeFromWait converts Wait's view of the child into a notification.
func outcomeFromWait(werr error, cmd *exec.Cmd) outcome {
	if werr == nil {
		return outcome{code: cmd.ProcessState.ExitCode()}
	}
	var ee *exec.ExitError
	if errors.As(werr, &ee) {
		if sig := terminationSignal(ee.ProcessState); sig != "" {
			return outcome{code: -1, signal: sig}
		}
		return outcome{code: ee.ProcessState.ExitCode()}
	}
	return outcome{code: -1, err: fmt.Errorf("waiting for %s: %w", cmd.Path, werr)}
}

// resolve maps the authoritative outcome to the run's result, logging the
// cause first so a human sees it even though the typed result is coarse.
func resolve(o outcome, logw io.Writer) (int, error) {
	if o.err != nil {
		fmt.Fprintf(logw, "failed to run tests: %v\n", o.err)
		return -1, o.err
	}
	if o.signal != "" {
		fmt.Fprintf(logw, "exit signal: %s\n", o.signal)
		return -1, &SignalError{Signal: o.signal}
	}
	fmt.Fprintf(logw, "exit code: %d\n", o.code)
	if o.code != 0 {
		return o.code, ErrNonZeroExit
	}
	return 0, nil
}

// MergeEnv overlays vars onto a base KEY=VALUE environment. Overlay keys win
// on collision, a nil value removes the key, and keys absent from the overlay
// are left untouched. Appended keys are sorted for determinism.
func MergeEnv(base []string, overlay map[string]*string) []string {
	if len(overlay) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(overlay))
	seen := make(map[string]bool, len(overlay))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if !ok {
			out = append(out, kv)
			continue
		}
		if v, hit := overlay[k]; hit {
			seen[k] = true
			if v != nil {
				out = append(out, k+"="+*v)
			}
			continue
		}
		out = append(out, kv)
	}
	added := make([]string, 0, len(overlay))
	for k, v := range overlay {
		if !seen[k] && v != nil {
			added = append(added, k+"="+*v)
		}
	}
	sort.Strings(added)
	return append(out, added...)
}
