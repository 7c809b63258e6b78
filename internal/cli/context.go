package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/sentinel/internal/contextdoc"
	"github.com/dshills/sentinel/internal/gitctx"
	"github.com/dshills/sentinel/internal/output"
)

var flagContextStdout bool

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Work with profile context documents",
}

var contextBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble the context document for a profile",
	Long:  "Concatenate the profile's handbook, rules, boundaries and ADRs into one budgeted Markdown document.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(buildOverrides())
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		repoRoot := currentRepoRoot()

		root, err := contextdoc.ResolveProfileRoot(repoRoot, cfg.Profile, cfg.ProfilesDir)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		name := filepath.Base(root)
		res, err := contextdoc.Build(root, contextOptions(cfg, name, log))
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		if len(res.Omitted) > 0 {
			log.Info("context budget applied", "omitted", strings.Join(res.Omitted, ","))
		}

		if flagContextStdout {
			fmt.Fprint(cmd.OutOrStdout(), res.Markdown)
			return nil
		}

		path := flagOut
		if path == "" {
			path = filepath.Join(outRoot(cfg, repoRoot), cfg.ContextDir, name+".md")
		}
		if err := output.WriteFileAtomic(path, []byte(res.Markdown)); err != nil {
			fail(ExitRuntimeError, "writing context: %v", err)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote context for profile %s to %s (%d bytes, ~%d tokens)\n",
			name, path, res.Bytes, res.ApproxTokens)
		return nil
	},
}

// currentRepoRoot resolves the repository root for commands that do not
// collect a diff.
func currentRepoRoot() string {
	dir := flagDir
	if dir == "" {
		dir = "."
	}
	meta, _ := gitctx.GetRepoMeta(dir)
	return repoRootFor(gitctx.DiffResult{Repo: meta})
}

func init() {
	contextCmd.AddCommand(contextBuildCmd)
	f := contextBuildCmd.Flags()
	f.StringVar(&flagDir, "dir", "", "Repository directory (default: current directory)")
	f.StringVar(&flagProfile, "profile", "", "Profile name or path")
	f.StringVar(&flagProfilesDir, "profiles-dir", "", "Directory holding profiles")
	f.StringVar(&flagOutDir, "out-dir", "", "Artifact root directory")
	f.StringVar(&flagOut, "out", "", "Output file (default: <outDir>/<contextDir>/<profile>.md)")
	f.BoolVar(&flagContextStdout, "stdout", false, "Print the document instead of writing it")
}
