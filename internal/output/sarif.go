package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/dshills/sentinel/internal/review"
)

const (
	sarifToolName = "sentinel"
	sarifToolURI  = "https://github.com/dshills/sentinel"
)

// SARIFWriter outputs findings in SARIF v2.1.0 format.
type SARIFWriter struct {
	ToolVersion string
}

func (s *SARIFWriter) Write(w io.Writer, run *review.Run) error {
	report, err := BuildSARIF(run, s.ToolVersion)
	if err != nil {
		return err
	}
	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	return nil
}

// BuildSARIF converts a run into a SARIF report with one rule per distinct
// rule id, in first-seen order.
func BuildSARIF(run *review.Run, toolVersion string) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("creating SARIF report: %w", err)
	}

	sr := sarif.NewRunWithInformationURI(sarifToolName, sarifToolURI)
	if toolVersion != "" {
		sr.Tool.Driver.WithVersion(toolVersion)
	}

	for _, f := range run.Findings {
		level := severityToLevel(f.Severity)
		rule := sr.AddRule(f.Rule).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})
		if f.Why != "" {
			rule.WithDescription(f.Why)
		}
		if f.Area != "" {
			rule.WithProperties(sarif.Properties{"area": f.Area, "tags": []string{f.Area}})
		}

		msg := strings.Join(f.Finding, "\n")
		if f.Suggestion != "" {
			msg += "\n\nSuggestion: " + f.Suggestion
		}
		result := sarif.NewRuleResult(f.Rule).
			WithMessage(sarif.NewTextMessage(msg)).
			WithLevel(level)

		if f.File != "" {
			line := LocatorLine(f.Locator)
			if line == 0 {
				line = 1
			}
			region := sarif.NewRegion().WithStartLine(line)
			result.WithLocations([]*sarif.Location{
				sarif.NewLocation().WithPhysicalLocation(
					sarif.NewPhysicalLocation().
						WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.File)).
						WithRegion(region),
				),
			})
		}
		if f.Fingerprint != "" {
			result.WithPartialFingerPrints(map[string]interface{}{"sentinel/v1": f.Fingerprint})
		}
		sr.AddResult(result)
	}

	report.AddRun(sr)
	return report, nil
}

// severityToLevel maps a severity to a SARIF level.
func severityToLevel(s review.Severity) string {
	switch s {
	case review.SeverityCritical, review.SeverityMajor:
		return "error"
	case review.SeverityMinor:
		return "warning"
	default:
		return "note"
	}
}

// LocatorLine returns the line a locator points at: n for "L<n>" and the
// new-file start for a hunk locator. It returns 0 when loc has no line.
func LocatorLine(loc string) int {
	if strings.HasPrefix(loc, "L") {
		if n, err := strconv.Atoi(loc[1:]); err == nil && n > 0 {
			return n
		}
	}
	if i := strings.Index(loc, "+"); strings.HasPrefix(loc, "HUNK:") && i >= 0 {
		rest := loc[i+1:]
		if j := strings.IndexAny(rest, ", "); j >= 0 {
			rest = rest[:j]
		}
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
