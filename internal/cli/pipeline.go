package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/sentinel/internal/config"
	"github.com/dshills/sentinel/internal/contextdoc"
	"github.com/dshills/sentinel/internal/output"
	"github.com/dshills/sentinel/internal/providers"
	"github.com/dshills/sentinel/internal/review"
	"github.com/dshills/sentinel/internal/rules"
)

// profileInputs are the documents of a resolved profile. Root is empty when
// the profile could not be found and the run falls back to built-in rules.
type profileInputs struct {
	Name       string
	Root       string
	Catalog    *rules.Catalog
	Boundaries *rules.Boundaries
}

// resolveProfile locates the configured profile and loads its rule and
// boundary catalogs. A missing profile directory is not fatal for a review;
// a profile without rules.json is.
func resolveProfile(cfg config.Config, repoRoot string, log hclog.Logger) (profileInputs, error) {
	root, err := contextdoc.ResolveProfileRoot(repoRoot, cfg.Profile, cfg.ProfilesDir)
	if err != nil {
		log.Warn("profile not found, using built-in rules only", "profile", cfg.Profile, "error", err)
		return profileInputs{Name: cfg.Profile}, nil
	}

	layout := contextdoc.LayoutFor(root)
	if _, err := os.Stat(layout.RulesFile); err != nil {
		return profileInputs{}, fmt.Errorf("%w: %s", contextdoc.ErrRulesNotFound, layout.RulesFile)
	}
	catalog, err := rules.LoadCatalog(layout.RulesFile)
	if err != nil {
		return profileInputs{}, err
	}
	boundaries, err := rules.LoadBoundaries(layout.Boundaries)
	if err != nil {
		return profileInputs{}, err
	}
	log.Debug("profile resolved", "root", root, "rules", catalog.Len(), "boundaries", boundaries.Len())
	return profileInputs{
		Name:       filepath.Base(root),
		Root:       root,
		Catalog:    catalog,
		Boundaries: boundaries,
	}, nil
}

func contextOptions(cfg config.Config, profile string, log hclog.Logger) contextdoc.Options {
	return contextdoc.Options{
		Profile:           profile,
		IncludeADR:        cfg.Context.IncludeADR,
		IncludeBoundaries: cfg.Context.IncludeBoundaries,
		MaxBytes:          cfg.Context.MaxBytes,
		MaxApproxTokens:   cfg.Context.MaxApproxTokens,
		Logger:            log.Named("context"),
	}
}

func renderOptions(cfg config.Config, noColor bool) output.RenderOptions {
	opts := output.RenderOptions{
		Title:       cfg.Render.Title,
		Template:    cfg.Render.Template,
		NoColor:     noColor,
		ToolVersion: version,
	}
	if len(cfg.Render.SeverityMap) > 0 {
		opts.SeverityMap = make(map[string]output.SeverityStyle, len(cfg.Render.SeverityMap))
		for sev, st := range cfg.Render.SeverityMap {
			opts.SeverityMap[sev] = output.SeverityStyle{Title: st.Title, Icon: st.Icon}
		}
	}
	return opts
}

// outRoot returns the artifact root, anchored at repoRoot when relative.
func outRoot(cfg config.Config, repoRoot string) string {
	if filepath.IsAbs(cfg.OutDir) {
		return cfg.OutDir
	}
	return filepath.Join(repoRoot, cfg.OutDir)
}

// reviewJob is one review invocation over an already collected diff.
type reviewJob struct {
	Diff     string
	RepoRoot string
	Metadata map[string]string
	NoColor  bool
}

// executeReview runs the provider and the context build concurrently,
// post-processes the findings and writes every artifact. The returned run
// is the one persisted to review.json.
func executeReview(ctx context.Context, job reviewJob, cfg config.Config, log hclog.Logger) (review.Run, error) {
	prof, err := resolveProfile(cfg, job.RepoRoot, log)
	if err != nil {
		return review.Run{}, err
	}
	reviewer, err := providers.New(cfg.Provider)
	if err != nil {
		return review.Run{}, err
	}

	var (
		run    review.Run
		ctxDoc contextdoc.Result
	)
	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	if prof.Root != "" {
		g.Go(func() error {
			res, err := contextdoc.Build(prof.Root, contextOptions(cfg, prof.Name, log))
			if err != nil {
				return fmt.Errorf("building context: %w", err)
			}
			ctxDoc = res
			return nil
		})
	}
	g.Go(func() error {
		r, err := reviewer.Review(gctx, providers.Request{
			DiffText:   job.Diff,
			Profile:    prof.Name,
			RunID:      review.NewRunID(),
			Catalog:    prof.Catalog,
			Boundaries: prof.Boundaries,
			Options: review.AnalyzeOptions{
				DisableBuiltins: !cfg.Builtins,
				SeverityAliases: cfg.SeverityAliases,
			},
		})
		if err != nil {
			return fmt.Errorf("%s provider: %w", reviewer.Name(), err)
		}
		run = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return review.Run{}, err
	}
	log.Info("analysis complete", "provider", reviewer.Name(), "findings", len(run.Findings), "elapsed", time.Since(started))

	if cfg.Redact {
		run.Findings = review.RedactFindings(run.Findings, cfg.RedactPaths)
	}
	run = run.WithCap(cfg.MaxComments)
	run.Config = &review.RunConfig{FailOn: cfg.FailOn, MaxComments: cfg.MaxComments}
	if prof.Root != "" {
		run.Context = &review.ContextInfo{
			Profile:            prof.Name,
			HandbookSections:   ctxDoc.Sections.Handbook,
			AdrIncluded:        ctxDoc.Sections.ADR > 0,
			BoundariesIncluded: ctxDoc.Sections.HasBoundaries,
		}
	}
	if len(job.Metadata) > 0 {
		run.Metadata = job.Metadata
	}

	root := outRoot(cfg, job.RepoRoot)
	layout := output.ArtifactLayout{
		Root:          root,
		ReviewDir:     filepath.Join(root, cfg.ReviewsDir, run.RunID),
		HumanMarkdown: cfg.Render.HumanMarkdown,
		HTML:          cfg.Render.HTML,
	}
	if prof.Root != "" {
		layout.ContextPath = filepath.Join(root, cfg.ContextDir, prof.Name+".md")
	}
	run, err = output.WriteArtifacts(ctx, run, layout, ctxDoc.Markdown, renderOptions(cfg, job.NoColor))
	if err != nil {
		return review.Run{}, fmt.Errorf("writing artifacts: %w", err)
	}
	log.Debug("artifacts written", "dir", layout.ReviewDir)
	return run, nil
}

// exitFor maps a finished run onto the configured exit policy.
func exitFor(run review.Run, cfg config.Config) (int, error) {
	policy, err := review.NewExitPolicy(cfg.ExitPolicy, cfg.FailOn)
	if err != nil {
		return ExitUsageError, err
	}
	if run.Summary == nil {
		sum := review.Summarize(run.Findings)
		run.Summary = &sum
	}
	return policy.ExitCode(*run.Summary), nil
}

// classify maps a pipeline error onto an exit code.
func classify(err error) int {
	switch {
	case errors.Is(err, providers.ErrUnknownProvider):
		return ExitUsageError
	default:
		return ExitRuntimeError
	}
}
