// Package execx wraps os/exec with context-aware helpers that normalize
// exit codes. All subprocess launches in this tool go through here so that
// command lines show up uniformly in debug logs.
package execx

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Result carries the normalized exit code of a finished subprocess together
// with the raw error from os/exec, if any.
type Result struct {
	Code int
	Err  error
}

// TimedOut reports whether the process was killed by its context deadline.
func (r Result) TimedOut() bool {
	return r.Code == codeTimeout
}

// Exit code used when the context deadline killed the process, matching the
// shell convention for timeout(1).
const codeTimeout = 124

func trace(name string, args []string) {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("+ %s", strings.Join(append([]string{name}, args...), " "))
	}
}

func resultOf(ctx context.Context, err error) Result {
	if err == nil {
		return Result{}
	}
	if ee, ok := err.(*exec.ExitError); ok && ctx.Err() != context.DeadlineExceeded {
		return Result{Code: ee.ExitCode(), Err: err}
	}
	if ctx.Err() == context.DeadlineExceeded {
		return Result{Code: codeTimeout, Err: err}
	}
	return Result{Code: 1, Err: err}
}

// Run executes a command, streaming its stdout and stderr through to the
// host process. The caller inspects Result.Code for the outcome.
func Run(ctx context.Context, name string, args ...string) Result {
	trace(name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return resultOf(ctx, cmd.Run())
}

// Capture executes a command and returns its stdout verbatim. Stderr is not
// captured; version probes and locators are expected to answer on stdout.
func Capture(ctx context.Context, name string, args ...string) (string, Result) {
	trace(name, args)
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	return string(out), resultOf(ctx, err)
}

// WithTimeout is shorthand for a background context with a deadline.
func WithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
