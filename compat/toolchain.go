package compat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/swift-compat/precommit-check/internal/execx"
)

// ErrNoCompiler reports that no compiler path was supplied and none could be
// resolved through the platform toolchain locator.
var ErrNoCompiler = errors.New("no usable swiftc found")

// UnsupportedConfigError reports a platform/version pair with no entry in
// the supported-toolchain table. This is a configuration defect of the gate
// itself, never an expected per-project failure.
type UnsupportedConfigError struct {
	Platform string
	Version  string
}

func (e *UnsupportedConfigError) Error() string {
	return fmt.Sprintf("no supported toolchain configured for platform %q, compatibility version %q", e.Platform, e.Version)
}

// Toolchain is the expected compiler identity for one platform/version pair.
// Banner is compared byte for byte against `swiftc --version` output.
type Toolchain struct {
	Banner      string `yaml:"banner"`
	Description string `yaml:"description"`
}

// ToolchainTable maps platform name -> compatibility version -> expected
// toolchain.
type ToolchainTable map[string]map[string]Toolchain

// DefaultToolchains returns the built-in supported-configuration table:
// two platforms, two compatibility versions. Callers own the returned copy.
func DefaultToolchains() ToolchainTable {
	return ToolchainTable{
		"Linux": {
			"3.0": {
				Banner:      "Swift version 3.0 (swift-3.0-RELEASE)\nTarget: x86_64-unknown-linux-gnu\n",
				Description: "swift-3.0-RELEASE toolchain (Linux)",
			},
			"3.1": {
				Banner:      "Swift version 3.1 (swift-3.1-RELEASE)\nTarget: x86_64-unknown-linux-gnu\n",
				Description: "swift-3.1-RELEASE toolchain (Linux)",
			},
		},
		"Darwin": {
			"3.0": {
				Banner:      "Apple Swift version 3.0 (swiftlang-800.0.46.2 clang-800.0.38)\nTarget: x86_64-apple-macosx10.9\n",
				Description: "Xcode 8.0 default toolchain (macOS)",
			},
			"3.1": {
				Banner:      "Apple Swift version 3.1 (swiftlang-802.0.53 clang-802.0.42)\nTarget: x86_64-apple-macosx10.9\n",
				Description: "Xcode 8.3 default toolchain (macOS)",
			},
		},
	}
}

// Expected returns the configured toolchain for a platform/version pair.
func (t ToolchainTable) Expected(platform, version string) (Toolchain, error) {
	versions, ok := t[platform]
	if !ok {
		return Toolchain{}, &UnsupportedConfigError{Platform: platform, Version: version}
	}
	tc, ok := versions[version]
	if !ok {
		return Toolchain{}, &UnsupportedConfigError{Platform: platform, Version: version}
	}
	return tc, nil
}

// MergeFile layers entries from a YAML extension file over the table,
// overriding existing platform/version pairs and adding new ones. Decoding
// is strict so a typo in a field name fails loudly instead of silently
// widening the gate.
func (t ToolchainTable) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read toolchain table %s: %w", path, err)
	}
	var extra ToolchainTable
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&extra); err != nil {
		return fmt.Errorf("parse toolchain table %s: %w", path, err)
	}
	for platform, versions := range extra {
		if t[platform] == nil {
			t[platform] = map[string]Toolchain{}
		}
		for version, tc := range versions {
			t[platform][version] = tc
		}
	}
	return nil
}

// CurrentPlatform maps runtime.GOOS onto the platform vocabulary used by the
// project index. Unknown systems map to "" and fail the table lookup.
func CurrentPlatform() string {
	switch runtime.GOOS {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	default:
		return ""
	}
}

// ResolveCompiler picks the compiler to probe. An explicit path always wins.
// On Darwin the Xcode locator is consulted; elsewhere the path must be
// supplied by the caller.
func ResolveCompiler(ctx context.Context, platform, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if platform != "Darwin" {
		return "", fmt.Errorf("--swiftc is required on %s: %w", platform, ErrNoCompiler)
	}
	out, res := execx.Capture(ctx, "xcrun", "--find", "swiftc")
	if res.Err != nil {
		return "", fmt.Errorf("xcrun --find swiftc: %v: %w", res.Err, ErrNoCompiler)
	}
	path := strings.TrimSpace(out)
	if path == "" {
		return "", ErrNoCompiler
	}
	return path, nil
}

// VerifyCompiler probes the compiler with --version and compares the output
// byte for byte against the expected banner for the platform/version pair.
// A table miss or a failed probe is an error; a banner mismatch is reported
// and returned as (false, nil).
func VerifyCompiler(ctx context.Context, table ToolchainTable, swiftc, platform, version string) (bool, error) {
	expected, err := table.Expected(platform, version)
	if err != nil {
		return false, err
	}
	actual, res := execx.Capture(ctx, swiftc, "--version")
	if res.Err != nil {
		return false, fmt.Errorf("probe %s --version: %w", swiftc, res.Err)
	}
	if actual != expected.Banner {
		logrus.Errorf("compiler version mismatch for compatibility version %s (%s)", version, expected.Description)
		logrus.Errorf("expected:\n%s", expected.Banner)
		logrus.Errorf("actual:\n%s", actual)
		return false, nil
	}
	logrus.Infof("compiler matches %s", expected.Description)
	return true, nil
}
