package review

import (
	"testing"

	"github.com/dshills/sentinel/internal/rules"
)

func TestFingerprint(t *testing.T) {
	base := Fingerprint("r", "f.go", "L1", "head")
	if base != Fingerprint("r", "f.go", "L1", "head") {
		t.Fatal("Fingerprint is not deterministic")
	}
	variants := [][4]string{
		{"r2", "f.go", "L1", "head"},
		{"r", "g.go", "L1", "head"},
		{"r", "f.go", "L2", "head"},
		{"r", "f.go", "L1", "head2"},
		{"rf.go", "", "L1", "head"},
	}
	for _, v := range variants {
		if got := Fingerprint(v[0], v[1], v[2], v[3]); got == base {
			t.Errorf("Fingerprint(%q) collides with base", v)
		}
	}
	if len(base) != 32 {
		t.Errorf("len(Fingerprint) = %d, want 32", len(base))
	}
}

func TestToFinding_Defaults(t *testing.T) {
	f := ToFinding(Match{RuleID: "x", Severity: "high", Area: "Perf"}, nil, nil)
	if f.Severity != SeverityMajor {
		t.Errorf("Severity = %q, want major", f.Severity)
	}
	if f.Area != "Perf" {
		t.Errorf("Area = %q, want Perf", f.Area)
	}
	if len(f.Finding) != 1 || f.Finding[0] != DefaultSummaryLine {
		t.Errorf("Finding = %v, want default summary", f.Finding)
	}
}

func TestToFinding_RuleMetadataWins(t *testing.T) {
	rule := &rules.RuleItem{
		ID:          "x",
		Area:        "DX",
		Severity:    "critical",
		Description: "desc",
		Examples:    &rules.Examples{Good: rules.StringList{"use y"}},
	}
	f := ToFinding(Match{RuleID: "x", Severity: "info", Area: "Other", Summary: []string{"", "line"}}, rule, nil)
	if f.Severity != SeverityCritical || f.Area != "DX" {
		t.Errorf("got severity %q area %q, want critical DX", f.Severity, f.Area)
	}
	if f.Why != "desc" {
		t.Errorf("Why = %q, want desc", f.Why)
	}
	if f.Suggestion != "Prefer: use y" {
		t.Errorf("Suggestion = %q", f.Suggestion)
	}
	if len(f.Finding) != 1 || f.Finding[0] != "line" {
		t.Errorf("Finding = %v, want [line]", f.Finding)
	}
}

func TestEnsureFingerprints(t *testing.T) {
	in := []Finding{{Rule: "a"}, {Rule: "b", Finding: []string{"x"}, Fingerprint: "keep"}}
	out := EnsureFingerprints(in)
	if out[0].Fingerprint == "" || out[0].Headline() != DefaultSummaryLine {
		t.Errorf("out[0] = %+v", out[0])
	}
	if out[1].Fingerprint != "keep" {
		t.Errorf("out[1].Fingerprint = %q, want keep", out[1].Fingerprint)
	}
	if in[0].Fingerprint != "" {
		t.Error("input was modified")
	}
}
