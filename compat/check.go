// Package compat implements the source-compatibility precommit gate: a
// project lookup against the suite's index, a verbatim compiler banner
// check, and a scoped build-only delegation to the external runner.
package compat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrVersionMismatch reports an installed compiler whose version banner does
// not equal the expected banner for the project's compatibility version.
var ErrVersionMismatch = errors.New("compiler version mismatch")

// CheckConfig carries everything one gate run needs. It is built once by the
// CLI layer and threaded through explicitly; nothing here is process-wide.
type CheckConfig struct {
	ProjectPath string
	Swiftc      string // may be empty; see ResolveCompiler
	IndexPath   string
	RunnerPath  string
	Platform    string
	Toolchains  ToolchainTable
	Timeout     time.Duration
}

// BranchName derives the suite branch for a compatibility version, e.g.
// "swift-3.1-branch" for "3.1".
func BranchName(version string) string {
	return fmt.Sprintf("swift-%s-branch", version)
}

// Check runs the full gate for one project: index lookup, platform check,
// compiler banner verification, then a build-only runner invocation. The
// first failure stops the run; the returned error classifies it.
func Check(ctx context.Context, cfg CheckConfig) error {
	idx, err := LoadIndex(cfg.IndexPath)
	if err != nil {
		return err
	}
	project, err := idx.Lookup(cfg.ProjectPath)
	if err != nil {
		return err
	}
	if !project.SupportsPlatform(cfg.Platform) {
		return fmt.Errorf("project %q declares platforms %v, not %q; add the platform to its index entry to enable this check: %w",
			project.Path, project.Platforms, cfg.Platform, ErrPlatformUnsupported)
	}

	version := project.CompatVersion()
	branch := BranchName(version)
	logrus.Infof("checking %s against Swift %s (%s)", project.Path, version, branch)

	swiftc, err := ResolveCompiler(ctx, cfg.Platform, cfg.Swiftc)
	if err != nil {
		return err
	}
	ok, err := VerifyCompiler(ctx, cfg.Toolchains, swiftc, cfg.Platform, version)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("swiftc at %s: %w", swiftc, ErrVersionMismatch)
	}

	inv := RunnerInvocation{
		Runner:      cfg.RunnerPath,
		Branch:      branch,
		Swiftc:      swiftc,
		IndexPath:   cfg.IndexPath,
		ProjectPath: project.Path,
		Timeout:     cfg.Timeout,
	}
	if err := inv.Run(ctx); err != nil {
		logrus.Errorf("build actions failed for %s; see the project's *.log files for output", project.Path)
		return err
	}
	logrus.Infof("%s passed the precommit gate", project.Path)
	return nil
}
