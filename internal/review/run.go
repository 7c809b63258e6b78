package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/sentinel/internal/redact"
)

// RunVersion is the schema version written into every Run.
const RunVersion = 1

// Artifacts records where the rendered files of a run were written,
// relative to the output root.
type Artifacts struct {
	Context       string `json:"context,omitempty"`
	ReviewJSON    string `json:"reviewJson"`
	ReviewMD      string `json:"reviewMd"`
	ReviewHumanMD string `json:"reviewHumanMd,omitempty"`
	ReviewHTML    string `json:"reviewHtml,omitempty"`
}

// RunConfig echoes the policy knobs a run was produced with.
type RunConfig struct {
	FailOn      string `json:"failOn,omitempty"`
	MaxComments int    `json:"maxComments,omitempty"`
}

// ContextInfo summarizes the context document built for a run.
type ContextInfo struct {
	Profile            string `json:"profile,omitempty"`
	HandbookSections   int    `json:"handbookSections,omitempty"`
	AdrIncluded        bool   `json:"adrIncluded,omitempty"`
	BoundariesIncluded bool   `json:"boundariesIncluded,omitempty"`
}

// Run is the persisted record of one review invocation.
type Run struct {
	Version    int               `json:"version"`
	RunID      string            `json:"runId"`
	Provider   string            `json:"provider"`
	Profile    string            `json:"profile"`
	StartedAt  string            `json:"startedAt,omitempty"`
	FinishedAt string            `json:"finishedAt,omitempty"`
	Findings   []Finding         `json:"findings"`
	Summary    *Summary          `json:"summary,omitempty"`
	Artifacts  *Artifacts        `json:"artifacts,omitempty"`
	Config     *RunConfig        `json:"config,omitempty"`
	Context    *ContextInfo      `json:"context,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return "run_" + uuid.NewString()
}

// BuildRun assembles a Run around findings. Missing fingerprints are filled
// and the summary is computed from the final list.
func BuildRun(runID, provider, profile string, started time.Time, findings []Finding) Run {
	if runID == "" {
		runID = NewRunID()
	}
	fs := EnsureFingerprints(findings)
	sum := Summarize(fs)
	return Run{
		Version:    RunVersion,
		RunID:      runID,
		Provider:   provider,
		Profile:    profile,
		StartedAt:  started.UTC().Format(time.RFC3339),
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
		Findings:   fs,
		Summary:    &sum,
	}
}

// WithCap returns a copy of r holding at most k findings with a summary
// recomputed from the retained subset. k <= 0 leaves the findings intact.
func (r Run) WithCap(k int) Run {
	out := r
	if k > 0 && len(r.Findings) > k {
		out.Findings = Cap(r.Findings, k)
	} else {
		out.Findings = append([]Finding(nil), r.Findings...)
	}
	sum := Summarize(out.Findings)
	out.Summary = &sum
	return out
}

// RedactFindings returns copies of findings with secrets scrubbed from the
// summary lines and signals. Findings on files matching redactPaths have
// their summary replaced entirely. Fingerprints are left as computed.
func RedactFindings(findings []Finding, redactPaths []string) []Finding {
	out := make([]Finding, len(findings))
	for i, f := range findings {
		f.Finding = redact.Lines(f.Finding, f.File, redactPaths)
		if len(f.Signals) > 0 {
			f.Signals = redact.Lines(f.Signals, "", nil)
		}
		f.Suggestion = redact.Secrets(f.Suggestion)
		out[i] = f
	}
	return out
}
