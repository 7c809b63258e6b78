package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/sentinel/internal/config"
	"github.com/dshills/sentinel/internal/gitctx"
)

// The managed block lives between these lines so other hook content survives
// install and uninstall.
const (
	hookBegin = "# sentinel:begin (managed by `sentinel hook install`)"
	hookEnd   = "# sentinel:end"
)

// hookDefaultFailOn applies when the configured threshold is "none", which
// would make the hook a no-op.
const hookDefaultFailOn = "major"

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Gate commits on a review of the staged diff",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Add the sentinel review block to .git/hooks/pre-commit",
	Long: `Writes a block into the repository's pre-commit hook that runs
"sentinel review staged" with the threshold exit policy. A commit is rejected
when a finding reaches the threshold; a review that cannot run lets the
commit through. Thresholds default to the layered configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(buildOverrides())
		if err != nil {
			fail(ExitUsageError, "%v", err)
			return nil
		}
		path, err := preCommitPath(flagDir)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		current, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			fail(ExitRuntimeError, "read %s: %v", path, err)
			return nil
		}
		script := spliceHookBlock(string(current), hookBlock(cfg))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fail(ExitRuntimeError, "create hooks directory: %v", err)
			return nil
		}
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			fail(ExitRuntimeError, "write %s: %v", path, err)
			return nil
		}
		fmt.Fprintf(os.Stdout, "sentinel gates commits via %s (fail-on %s)\n", path, hookFailOn(cfg))
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Take the sentinel review block out of the pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := preCommitPath(flagDir)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		current, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "nothing to remove: no pre-commit hook")
			return nil
		}
		if err != nil {
			fail(ExitRuntimeError, "read %s: %v", path, err)
			return nil
		}

		rest := stripHookBlock(string(current))
		if onlyShebang(rest) {
			if err := os.Remove(path); err != nil {
				fail(ExitRuntimeError, "remove %s: %v", path, err)
				return nil
			}
			fmt.Fprintf(os.Stdout, "deleted %s\n", path)
			return nil
		}
		if err := os.WriteFile(path, []byte(rest), 0o755); err != nil {
			fail(ExitRuntimeError, "write %s: %v", path, err)
			return nil
		}
		fmt.Fprintf(os.Stdout, "sentinel block removed, other hook content kept in %s\n", path)
		return nil
	},
}

// preCommitPath resolves the pre-commit hook of the repository holding dir.
func preCommitPath(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	meta, err := gitctx.GetRepoMeta(dir)
	if err != nil || meta.Root == "" {
		return "", fmt.Errorf("not a git repository: %s", dir)
	}
	return filepath.Join(meta.Root, ".git", "hooks", "pre-commit"), nil
}

func hookFailOn(cfg config.Config) string {
	if cfg.FailOn == "" || cfg.FailOn == "none" {
		return hookDefaultFailOn
	}
	return cfg.FailOn
}

// hookBlock renders the managed block. Exit 1 from the review means a
// finding reached the threshold; anything above 1 is a usage, auth or
// runtime failure and does not hold the commit back.
func hookBlock(cfg config.Config) string {
	failOn := hookFailOn(cfg)
	lines := []string{
		hookBegin,
		fmt.Sprintf("sentinel review staged --exit-policy threshold --fail-on %s --format %s --max-comments %d",
			failOn, cfg.Format, cfg.MaxComments),
		"status=$?",
		"case $status in",
		"  0) ;;",
		"  1)",
		fmt.Sprintf("    echo \"sentinel: staged changes have %s or worse findings; commit rejected\" >&2", failOn),
		"    exit 1",
		"    ;;",
		"  *)",
		"    echo \"sentinel: review could not run (exit $status); commit not checked\" >&2",
		"    ;;",
		"esac",
		hookEnd,
	}
	return strings.Join(lines, "\n") + "\n"
}

// blockSpan locates the managed block, end exclusive of its trailing newline.
func blockSpan(script string) (start, end int, ok bool) {
	start = strings.Index(script, hookBegin)
	if start < 0 {
		return 0, 0, false
	}
	rel := strings.Index(script[start:], hookEnd)
	if rel < 0 {
		return 0, 0, false
	}
	end = start + rel + len(hookEnd)
	if end < len(script) && script[end] == '\n' {
		end++
	}
	return start, end, true
}

// spliceHookBlock puts block into script: in place of an earlier block, or
// appended after the existing content. An empty script gets a shebang.
func spliceHookBlock(script, block string) string {
	if strings.TrimSpace(script) == "" {
		return "#!/bin/sh\n" + block
	}
	if start, end, ok := blockSpan(script); ok {
		return script[:start] + block + script[end:]
	}
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	return script + block
}

// stripHookBlock returns script without the managed block.
func stripHookBlock(script string) string {
	start, end, ok := blockSpan(script)
	if !ok {
		return script
	}
	return script[:start] + script[end:]
}

func onlyShebang(script string) bool {
	s := strings.TrimSpace(script)
	return s == "" || (strings.HasPrefix(s, "#!") && !strings.Contains(s, "\n"))
}

func init() {
	hookCmd.AddCommand(hookInstallCmd, hookUninstallCmd)

	f := hookInstallCmd.Flags()
	f.StringVar(&flagFailOn, "fail-on", "", "Lowest severity that rejects the commit (default: config failOn, or major)")
	f.StringVar(&flagFormat, "format", "", "Format of the review printed by the hook (default: config format)")
	f.IntVar(&flagMaxComments, "max-comments", 0, "Findings kept per review, 0 for no cap (default: config maxComments)")
	for _, c := range []*cobra.Command{hookInstallCmd, hookUninstallCmd} {
		c.Flags().StringVar(&flagDir, "dir", "", "Repository directory (default: current directory)")
	}
}
