package compat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/swift-compat/precommit-check/internal/execx"
)

// ErrBuildFailed reports a delegated runner invocation that exited non-zero
// or ran out of time.
var ErrBuildFailed = errors.New("build actions failed")

// DefaultRunnerTimeout bounds one delegated build run.
const DefaultRunnerTimeout = time.Hour

// RunnerInvocation describes one delegated call into the external runner,
// scoped to a single project and to its Build actions.
type RunnerInvocation struct {
	Runner      string // runner executable
	Branch      string // --swift-branch value
	Swiftc      string
	IndexPath   string
	ProjectPath string
	Timeout     time.Duration
}

// Args builds the runner command line. The filter expressions are evaluated
// by the runner, not by this tool; they must never widen beyond the one
// project and its Build-prefixed actions.
func (inv RunnerInvocation) Args() []string {
	return []string{
		"--swift-branch", inv.Branch,
		"--swiftc", inv.Swiftc,
		"--projects", inv.IndexPath,
		"--include-repos", fmt.Sprintf("path == %q", inv.ProjectPath),
		"--include-actions", `action.startswith("Build")`,
	}
}

// Run executes the runner under the invocation's timeout, streaming its
// output through. Per-action detail lands in the runner's own log files, so
// failures here carry a pointer instead of the output.
func (inv RunnerInvocation) Run(ctx context.Context) error {
	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = DefaultRunnerTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res := execx.Run(ctx, inv.Runner, inv.Args()...)
	if res.TimedOut() {
		return fmt.Errorf("runner timed out after %s: %w", timeout, ErrBuildFailed)
	}
	if res.Code != 0 {
		return fmt.Errorf("runner exited with code %d: %w", res.Code, ErrBuildFailed)
	}
	return nil
}
