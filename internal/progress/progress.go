// Package progress defines the reporting capability handed to the executable
// resolver. The test runner itself never calls a reporter; it only forwards it.
package progress

import (
	"fmt"
	"io"
	"os"
)

// Reporter receives resolver lifecycle events.
type Reporter interface {
	// Stage announces a coarse resolution phase, e.g. "resolved" or "downloading".
	Stage(name, detail string)
	// Progress reports bytes received so far. total is <= 0 when unknown.
	Progress(received, total int64)
}

// Console writes stage transitions and a coarse percentage counter.
type Console struct {
	W io.Writer

	lastDecile int64
}

// NewConsole returns a reporter writing to stderr.
func NewConsole() *Console {
	return &Console{W: os.Stderr}
}

func (c *Console) Stage(name, detail string) {
	if detail == "" {
		fmt.Fprintf(c.W, "%s\n", name)
		return
	}
	fmt.Fprintf(c.W, "%s: %s\n", name, detail)
}

// Progress prints at most one line per 10% to keep CI logs readable.
func (c *Console) Progress(received, total int64) {
	if total <= 0 {
		return
	}
	decile := received * 10 / total
	if decile > c.lastDecile {
		c.lastDecile = decile
		fmt.Fprintf(c.W, "downloaded %d%%\n", decile*10)
	}
}

// Silent discards all events.
type Silent struct{}

func (Silent) Stage(string, string)  {}
func (Silent) Progress(int64, int64) {}

var _ Reporter = (*Console)(nil)
var _ Reporter = Silent{}
