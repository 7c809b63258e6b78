package review

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/dshills/sentinel/internal/rules"
)

// DefaultSummaryLine is used when a match carries no summary text.
const DefaultSummaryLine = "Finding summary unavailable"

// Match is a raw rule hit produced by the matcher or a provider, before
// rule metadata is merged in.
type Match struct {
	RuleID     string
	File       string
	Line       int
	Locator    string
	Text       string
	Summary    []string
	Severity   string
	Area       string
	Why        string
	Suggestion string
	Signals    []string
}

// ToFinding merges a raw match with its rule entry (if any) and fingerprints
// the result. Rule metadata wins for severity and area; an explicit Why on
// the match wins over the rule description.
func ToFinding(m Match, rule *rules.RuleItem, aliases map[string]string) Finding {
	sevText := m.Severity
	area := m.Area
	why := m.Why
	suggestion := m.Suggestion
	if rule != nil {
		if rule.Severity != "" {
			sevText = rule.Severity
		}
		if rule.Area != "" {
			area = rule.Area
		}
		if why == "" {
			why = rule.Description
		}
		if suggestion == "" && rule.Examples != nil && len(rule.Examples.Good) > 0 {
			suggestion = "Prefer: " + rule.Examples.Good[0]
		}
		if suggestion == "" && rule.Link != "" {
			suggestion = "See " + rule.Link
		}
	}
	sev, _ := ParseSeverity(sevText, aliases)

	summary := make([]string, 0, len(m.Summary))
	for _, s := range m.Summary {
		if strings.TrimSpace(s) != "" {
			summary = append(summary, s)
		}
	}
	if len(summary) == 0 {
		summary = []string{DefaultSummaryLine}
	}

	f := Finding{
		Rule:       m.RuleID,
		Severity:   sev,
		Area:       area,
		File:       m.File,
		Locator:    m.Locator,
		Finding:    summary,
		Why:        why,
		Suggestion: suggestion,
		Signals:    append([]string(nil), m.Signals...),
	}
	f.Fingerprint = Fingerprint(f.Rule, f.File, f.Locator, f.Headline())
	return f
}

// Fingerprint returns a stable identity for a finding. Identical inputs
// always hash identically, so the value can be persisted as a suppression
// key across runs.
func Fingerprint(rule, file, locator, headline string) string {
	h := sha256.New()
	for _, part := range []string{rule, file, locator, headline} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

// EnsureFingerprints fills in missing fingerprints and empty summaries on
// provider-supplied findings. The input slice is not modified.
func EnsureFingerprints(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	for i, f := range findings {
		if len(f.Finding) == 0 {
			f.Finding = []string{DefaultSummaryLine}
		}
		if f.Fingerprint == "" {
			f.Fingerprint = Fingerprint(f.Rule, f.File, f.Locator, f.Headline())
		}
		out[i] = f
	}
	return out
}
