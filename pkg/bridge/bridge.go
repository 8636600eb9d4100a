// Package bridge runs AppleScript against the Contacts application. It is the
// only part of pimctl that touches the live store.
package bridge

import (
	"context"
	"strings"
	"time"
)

// Bridge executes one script and reports what it printed.
type Bridge interface {
	Run(ctx context.Context, script string) (*Result, error)
}

// Result is the captured outcome of a script run. A script that ran but
// failed is reported here with a non-zero ExitCode, not as an error.
type Result struct {
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration"`
	Truncated bool          `json:"truncated,omitempty"`
}

// Success reports whether the script exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Diagnostic returns the text best describing a failed run: stderr if any,
// then stdout.
func (r *Result) Diagnostic() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Func adapts a function to the Bridge interface.
type Func func(ctx context.Context, script string) (*Result, error)

// Run implements Bridge.
func (f Func) Run(ctx context.Context, script string) (*Result, error) {
	return f(ctx, script)
}
