package providers

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/dshills/sentinel/internal/review"
	"github.com/dshills/sentinel/internal/rules"
)

var (
	mockTodo     = regexp.MustCompile(`(?i)TODO`)
	mockInternal = regexp.MustCompile(`/internal\b`)
)

// Mock returns canned findings based on simple text probes of the diff.
// Findings are not tied to a real file or line.
type Mock struct{}

func (Mock) Name() string { return "mock" }

func (m Mock) Review(ctx context.Context, req Request) (review.Run, error) {
	if err := ctx.Err(); err != nil {
		return review.Run{}, err
	}
	started := time.Now()

	var findings []review.Finding
	if mockTodo.MatchString(req.DiffText) {
		findings = append(findings, review.Finding{
			Rule:        rules.RuleNoTodo,
			Area:        "DX",
			Severity:    review.SeverityMinor,
			File:        "unknown",
			Locator:     "L0",
			Finding:     []string{"TODO comment found"},
			Why:         "Inline TODOs get stale and hide tech debt.",
			Suggestion:  "Replace with a link to a tracked ticket (issue/ID) and remove the inline TODO.",
			Fingerprint: "mock-fp-todo",
		})
	}
	if mockInternal.MatchString(req.DiffText) {
		findings = append(findings, review.Finding{
			Rule:        rules.RuleModularBoundary,
			Area:        "Architecture",
			Severity:    review.SeverityCritical,
			File:        "unknown",
			Locator:     "L0",
			Finding:     []string{"Cross-feature internal import"},
			Why:         "Features must not import each other directly; this couples internals.",
			Suggestion:  "Use shared adapter/port or the feature public API.",
			Fingerprint: "mock-fp-internal",
		})
	}
	if findings == nil {
		findings = []review.Finding{}
	}

	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("mock_%d", started.UnixMilli())
	}
	return review.BuildRun(runID, m.Name(), req.Profile, started, findings), nil
}
