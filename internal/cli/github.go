package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/sentinel/internal/github"
	"github.com/dshills/sentinel/internal/gitctx"
)

var (
	flagGHOwner  string
	flagGHRepo   string
	flagGHDryRun bool
)

var githubCmd = &cobra.Command{
	Use:   "github <pr-number>",
	Short: "Review a GitHub pull request",
	Long:  "Fetch a PR diff from GitHub, run review, and optionally post findings as PR review comments.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prNumber, err := strconv.Atoi(args[0])
		if err != nil || prNumber <= 0 {
			fail(ExitUsageError, "invalid PR number %q", args[0])
			return nil
		}

		cfg, err := loadConfig(buildOverrides())
		if err != nil {
			return err
		}

		owner, repo := flagGHOwner, flagGHRepo
		if owner == "" || repo == "" {
			dir := flagDir
			if dir == "" {
				dir = "."
			}
			detected, detectedRepo, err := github.DetectRepo(dir)
			if err != nil {
				fail(ExitRuntimeError, "%v\nUse --owner and --repo flags to specify manually.", err)
				return nil
			}
			if owner == "" {
				owner = detected
			}
			if repo == "" {
				repo = detectedRepo
			}
		}

		ghClient, err := github.NewClient()
		if err != nil {
			fail(ExitAuthError, "%v", err)
			return nil
		}

		ctx := cmd.Context()

		fmt.Fprintf(os.Stderr, "Fetching PR #%d from %s/%s...\n", prNumber, owner, repo)
		diff, err := ghClient.GetPRDiff(ctx, owner, repo, prNumber)
		if err != nil {
			fail(ghExitCode(err), "%v", err)
			return nil
		}

		if strings.TrimSpace(diff) == "" {
			fmt.Fprintln(os.Stdout, "PR has no diff, nothing to review.")
			return nil
		}

		files, err := ghClient.GetPRFiles(ctx, owner, repo, prNumber)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not fetch file list: %v\n", err)
			files = nil
		}

		diffResult, err := gitctx.FromReader(strings.NewReader(diff), fmt.Sprintf("%s/%s#%d", owner, repo, prNumber), buildDiffOpts(cfg))
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		diffResult.Mode = "github-pr"
		if len(files) > 0 {
			diffResult.Files = files
		}

		run, ok := runReview(ctx, diffResult, cfg)
		if !ok {
			return nil
		}

		if flagGHDryRun {
			fmt.Fprintf(os.Stderr, "Dry run: %d findings found, not posting to GitHub.\n", len(run.Findings))
		} else {
			diffFileSet := make(map[string]bool, len(diffResult.Files))
			for _, f := range diffResult.Files {
				diffFileSet[f] = true
			}

			ghReview := github.BuildGitHubReview(run.Findings, diffFileSet, cfg.MaxComments)
			fmt.Fprintf(os.Stderr, "Posting review (%d inline comments)...\n", len(ghReview.Comments))

			if err := ghClient.PostReview(ctx, owner, repo, prNumber, ghReview); err != nil {
				fail(ghExitCode(err), "posting review: %v", err)
				return nil
			}

			fmt.Fprintf(os.Stderr, "Review posted to PR #%d.\n", prNumber)
		}

		applyExit(run, cfg)
		return nil
	},
}

func ghExitCode(err error) int {
	if errors.Is(err, github.ErrAuth) || errors.Is(err, github.ErrMissingToken) {
		return ExitAuthError
	}
	return ExitRuntimeError
}

func init() {
	addReviewFlags(githubCmd)
	githubCmd.Flags().StringVar(&flagGHOwner, "owner", "", "GitHub repository owner (auto-detected if omitted)")
	githubCmd.Flags().StringVar(&flagGHRepo, "repo", "", "GitHub repository name (auto-detected if omitted)")
	githubCmd.Flags().BoolVar(&flagGHDryRun, "dry-run", false, "Run review but don't post to GitHub")
}
