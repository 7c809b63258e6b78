package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/sentinel/internal/contextdoc"
	"github.com/dshills/sentinel/internal/review"
	"github.com/dshills/sentinel/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect profile rule catalogs",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a profile's rules.json and boundaries.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(buildOverrides())
		if err != nil {
			return err
		}
		root, err := contextdoc.ResolveProfileRoot(currentRepoRoot(), cfg.Profile, cfg.ProfilesDir)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		layout := contextdoc.LayoutFor(root)
		if _, err := os.Stat(layout.RulesFile); err != nil {
			fail(ExitRuntimeError, "%v: %s", contextdoc.ErrRulesNotFound, layout.RulesFile)
			return nil
		}
		catalog, err := rules.LoadCatalog(layout.RulesFile)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		boundaries, err := rules.LoadBoundaries(layout.Boundaries)
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		problems := rules.Validate(catalog, boundaries, func(s string) bool {
			return review.IsKnownSeverity(s, cfg.SeverityAliases)
		})
		out := cmd.OutOrStdout()
		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Fprintln(out, p.String())
			}
			fmt.Fprintf(out, "%d problem(s) in %s\n", len(problems), root)
			exitCode = ExitFindings
			return nil
		}
		fmt.Fprintf(out, "OK: %d rules, %d boundary rules\n", catalog.Len(), boundaries.Len())
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd)
	f := rulesValidateCmd.Flags()
	f.StringVar(&flagDir, "dir", "", "Repository directory (default: current directory)")
	f.StringVar(&flagProfile, "profile", "", "Profile name or path")
	f.StringVar(&flagProfilesDir, "profiles-dir", "", "Directory holding profiles")
}
