package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/swift-compat/precommit-check/compat"
)

var (
	// CLI flags for the precommit gate
	swiftc         string        // Path to the swiftc executable to verify and hand to the runner
	indexPath      string        // Path to the project index JSON (defaults to projects.json beside the tool)
	runnerPath     string        // Path to the external runner (defaults to runner.py beside the tool)
	toolchainsFile string        // Optional YAML file extending the supported-toolchain table
	runnerTimeout  time.Duration // Budget for the delegated build run
	logLevel       string        // Log verbosity level
)

// rootCmd is the whole CLI: one positional project path key.
var rootCmd = &cobra.Command{
	Use:   "precommit-check <project-path>",
	Short: "Verify toolchain compatibility for one project and run its Build actions",
	Long: `precommit-check gates a single project of the source-compatibility suite.
It looks the project up in the index, confirms the current platform and the
installed swiftc match the project's declared compatibility version, then
delegates a build-only run to the external runner.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		platform := compat.CurrentPlatform()
		if platform == "" {
			logrus.Fatalf("Unsupported operating system for the compatibility suite")
		}

		table := compat.DefaultToolchains()
		if toolchainsFile != "" {
			if err := table.MergeFile(toolchainsFile); err != nil {
				logrus.Fatalf("Failed to load toolchain table: %v", err)
			}
		}

		cfg := compat.CheckConfig{
			ProjectPath: args[0],
			Swiftc:      swiftc,
			IndexPath:   siblingDefault(indexPath, "projects.json"),
			RunnerPath:  siblingDefault(runnerPath, "runner.py"),
			Platform:    platform,
			Toolchains:  table,
			Timeout:     runnerTimeout,
		}
		if err := compat.Check(cmd.Context(), cfg); err != nil {
			logrus.Errorf("precommit check failed: %v", err)
			os.Exit(1)
		}
	},
}

// siblingDefault resolves an unset path flag to a file next to the tool's
// executable, matching the suite's on-disk layout. Explicit flags win.
func siblingDefault(flagValue, name string) string {
	if flagValue != "" {
		return flagValue
	}
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags
func init() {
	rootCmd.Flags().StringVar(&swiftc, "swiftc", "", "Path to the swiftc executable (required on Linux; resolved via xcrun on macOS)")
	rootCmd.Flags().StringVar(&indexPath, "projects-index", "", "Path to the project index JSON (default: projects.json beside the tool)")
	rootCmd.Flags().StringVar(&runnerPath, "runner", "", "Path to the external runner (default: runner.py beside the tool)")
	rootCmd.Flags().StringVar(&toolchainsFile, "toolchains", "", "YAML file adding or overriding supported-toolchain entries")
	rootCmd.Flags().DurationVar(&runnerTimeout, "timeout", compat.DefaultRunnerTimeout, "Timeout for the delegated build run")
	rootCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
