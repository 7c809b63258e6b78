package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dshills/sentinel/internal/config"
	"github.com/dshills/sentinel/internal/logger"
)

const version = "0.3.0"

// Process exit codes. Legacy exit policy codes (10, 20) are produced by
// review.LegacyPolicy.
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

// Global flags
var (
	flagConfig  string
	flagLogJSON bool
)

var rootCmd = &cobra.Command{
	Use:          "sentinel",
	Short:        "Diff review against profile rules and boundaries",
	Long:         "Sentinel checks diffs against a profile's rule catalog and module boundaries, and writes deterministic review artifacts with CI-friendly exit codes.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./"+config.LocalFile+" when present)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Emit logs as JSON")
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(githubCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// fail reports err on stderr and records code as the exit code.
func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exitCode = code
}

// loadConfig loads the layered configuration with flag overrides applied.
func loadConfig(overrides map[string]string) (config.Config, error) {
	return config.Load(flagConfig, overrides)
}

func newLogger(cfg config.Config) hclog.Logger {
	return logger.New("sentinel", logger.Options{
		Level: cfg.LogLevel,
		JSON:  flagLogJSON,
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print sentinel version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "sentinel version %s\n", version)
	},
}
