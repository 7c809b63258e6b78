package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/sentinel/internal/config"
	"github.com/dshills/sentinel/internal/gitctx"
	"github.com/dshills/sentinel/internal/output"
	"github.com/dshills/sentinel/internal/review"
)

// Shared review flags
var (
	flagDir          string
	flagPaths        string
	flagExclude      string
	flagMaxDiffBytes int
	flagProvider     string
	flagProfile      string
	flagProfilesDir  string
	flagFormat       string
	flagOut          string
	flagOutDir       string
	flagFailOn       string
	flagExitPolicy   string
	flagMaxComments  int
	flagNoRedact     bool
	flagNoBuiltins   bool
	flagNoColor      bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagDir, "dir", "", "Repository directory (default: current directory)")
	cmd.Flags().StringVar(&flagPaths, "paths", "", "Include file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.Flags().IntVar(&flagMaxDiffBytes, "max-diff-bytes", 0, "Maximum diff size in bytes")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "Review provider (local, mock)")
	cmd.Flags().StringVar(&flagProfile, "profile", "", "Profile name or path")
	cmd.Flags().StringVar(&flagProfilesDir, "profiles-dir", "", "Directory holding profiles")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format ("+strings.Join(output.Formats, ", ")+")")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "", "Artifact root directory")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, info, minor, major, critical)")
	cmd.Flags().StringVar(&flagExitPolicy, "exit-policy", "", "Exit code policy (threshold, legacy)")
	cmd.Flags().IntVar(&flagMaxComments, "max-comments", 0, "Maximum number of findings kept (0 = unlimited)")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoBuiltins, "no-builtins", false, "Disable built-in pattern rules")
	cmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored text output")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagProfile != "" {
		m["profile"] = flagProfile
	}
	if flagProfilesDir != "" {
		m["profilesDir"] = flagProfilesDir
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagOutDir != "" {
		m["outDir"] = flagOutDir
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagExitPolicy != "" {
		m["exitPolicy"] = flagExitPolicy
	}
	if flagMaxComments > 0 {
		m["maxComments"] = strconv.Itoa(flagMaxComments)
	}
	if flagMaxDiffBytes > 0 {
		m["maxDiffBytes"] = strconv.Itoa(flagMaxDiffBytes)
	}
	if flagNoRedact {
		m["redact"] = "false"
	}
	if flagNoBuiltins {
		m["builtins"] = "false"
	}
	return m
}

func buildDiffOpts(cfg config.Config) gitctx.DiffOptions {
	opts := gitctx.DiffOptions{
		Dir:          flagDir,
		MaxDiffBytes: cfg.MaxDiffBytes,
		Include:      cfg.Include,
		Exclude:      cfg.Exclude,
	}
	if flagPaths != "" {
		opts.Include = splitComma(flagPaths)
	}
	if flagExclude != "" {
		opts.Exclude = append(opts.Exclude, splitComma(flagExclude)...)
	}
	return opts
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// repoRootFor picks the directory profiles and artifacts are resolved
// against: the repository root when known, else --dir, else the working
// directory.
func repoRootFor(diff gitctx.DiffResult) string {
	if diff.Repo.Root != "" {
		return diff.Repo.Root
	}
	if flagDir != "" {
		if abs, err := filepath.Abs(flagDir); err == nil {
			return abs
		}
		return flagDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func diffMetadata(diff gitctx.DiffResult) map[string]string {
	m := map[string]string{
		"mode":  diff.Mode,
		"files": strconv.Itoa(len(diff.Files)),
	}
	if diff.Range != "" {
		m["range"] = diff.Range
	}
	if diff.Repo.Head != "" {
		m["head"] = diff.Repo.Head
	}
	if diff.Repo.Branch != "" {
		m["branch"] = diff.Repo.Branch
	}
	if diff.Truncated {
		m["truncated"] = "true"
	}
	return m
}

// runReview reviews diff, writes the artifacts and prints the run to the
// selected output. It reports false after recording a failure exit code.
func runReview(ctx context.Context, diff gitctx.DiffResult, cfg config.Config) (review.Run, bool) {
	log := newLogger(cfg)
	if !cfg.Redact {
		log.Warn("secret redaction is disabled")
	}
	if diff.Truncated {
		log.Warn("diff truncated", "maxDiffBytes", cfg.MaxDiffBytes)
	}

	run, err := executeReview(ctx, reviewJob{
		Diff:     diff.Diff,
		RepoRoot: repoRootFor(diff),
		Metadata: diffMetadata(diff),
		NoColor:  flagNoColor,
	}, cfg, log)
	if err != nil {
		fail(classify(err), "%v", err)
		return review.Run{}, false
	}

	if err := output.WriteRun(&run, cfg.Format, flagOut, renderOptions(cfg, flagNoColor)); err != nil {
		fail(ExitRuntimeError, "writing output: %v", err)
		return review.Run{}, false
	}
	return run, true
}

// applyExit records the exit code the configured policy assigns to run.
func applyExit(run review.Run, cfg config.Config) {
	code, err := exitFor(run, cfg)
	if err != nil {
		fail(code, "%v", err)
		return
	}
	exitCode = code
}

// collectAndReview loads config, gathers a diff with collect and reviews it.
func collectAndReview(cmd *cobra.Command, collect func(context.Context, gitctx.DiffOptions) (gitctx.DiffResult, error)) error {
	cfg, err := loadConfig(buildOverrides())
	if err != nil {
		return err
	}
	diff, err := collect(cmd.Context(), buildDiffOpts(cfg))
	if err != nil {
		fail(ExitRuntimeError, "%v", err)
		return nil
	}
	if run, ok := runReview(cmd.Context(), diff, cfg); ok {
		applyExit(run, cfg)
	}
	return nil
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review code changes",
	Long:  "Review code changes against the profile's rules and boundaries. Use subcommands to specify what to review.",
}

var reviewUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Review unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return collectAndReview(cmd, gitctx.Unstaged)
	},
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Review staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return collectAndReview(cmd, gitctx.Staged)
	},
}

var reviewCommitCmd = &cobra.Command{
	Use:   "commit <rev>",
	Short: "Review a specific commit against its first parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return collectAndReview(cmd, func(ctx context.Context, opts gitctx.DiffOptions) (gitctx.DiffResult, error) {
			return gitctx.Commit(ctx, args[0], opts)
		})
	},
}

var (
	flagMergeBase bool
)

var reviewRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Review a revision range (e.g., origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return collectAndReview(cmd, func(ctx context.Context, opts gitctx.DiffOptions) (gitctx.DiffResult, error) {
			return gitctx.Range(ctx, args[0], flagMergeBase, opts)
		})
	},
}

var reviewDiffCmd = &cobra.Command{
	Use:   "diff [file]",
	Short: "Review a unified diff from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return collectAndReview(cmd, func(ctx context.Context, opts gitctx.DiffOptions) (gitctx.DiffResult, error) {
			var r io.Reader = cmd.InOrStdin()
			source := "stdin"
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return gitctx.DiffResult{}, fmt.Errorf("opening diff: %w", err)
				}
				defer f.Close()
				r, source = f, args[0]
			}
			return gitctx.FromReader(r, source, opts)
		})
	},
}

func init() {
	reviewCmd.AddCommand(reviewUnstagedCmd)
	reviewCmd.AddCommand(reviewStagedCmd)
	reviewCmd.AddCommand(reviewCommitCmd)
	reviewCmd.AddCommand(reviewRangeCmd)
	reviewCmd.AddCommand(reviewDiffCmd)

	for _, cmd := range []*cobra.Command{
		reviewUnstagedCmd,
		reviewStagedCmd,
		reviewCommitCmd,
		reviewRangeCmd,
		reviewDiffCmd,
	} {
		addReviewFlags(cmd)
	}

	reviewRangeCmd.Flags().BoolVar(&flagMergeBase, "merge-base", false, "Diff from the merge base of the two revisions")
}
