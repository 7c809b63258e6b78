package review

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dshills/sentinel/internal/boundary"
	"github.com/dshills/sentinel/internal/redact"
	"github.com/dshills/sentinel/internal/rules"
	"github.com/dshills/sentinel/internal/unidiff"
)

const (
	boundaryDefaultSeverity = "major"
	boundaryDefaultArea     = "Architecture"
	maxHeadlineLen          = 200
)

// AnalyzeOptions tunes Analyze.
type AnalyzeOptions struct {
	// DisableBuiltins turns off the built-in pattern rules.
	DisableBuiltins bool
	// SeverityAliases maps extra severity names onto canonical ones.
	SeverityAliases map[string]string
}

// Analyze parses diffText and evaluates it against catalog and boundaries.
// Both catalogs may be nil. An empty result means no findings.
func Analyze(diffText string, catalog *rules.Catalog, boundaries *rules.Boundaries, opts AnalyzeOptions) []Finding {
	return AnalyzeFiles(unidiff.Parse(diffText), catalog, boundaries, opts)
}

// AnalyzeFiles is Analyze over an already parsed diff.
func AnalyzeFiles(files []unidiff.FileDiff, catalog *rules.Catalog, boundaries *rules.Boundaries, opts AnalyzeOptions) []Finding {
	matches := Matches(files, catalog, boundaries, opts)
	findings := make([]Finding, 0, len(matches))
	for _, m := range matches {
		var rule *rules.RuleItem
		if r, ok := catalog.Lookup(m.RuleID); ok {
			rule = &r
		} else if !opts.DisableBuiltins {
			builtins := rules.Builtins()
			for i := range builtins {
				if builtins[i].ID == m.RuleID {
					rule = &builtins[i]
					break
				}
			}
		}
		findings = append(findings, ToFinding(m, rule, opts.SeverityAliases))
	}
	return findings
}

// Matches returns the raw pattern and boundary hits for files.
func Matches(files []unidiff.FileDiff, catalog *rules.Catalog, boundaries *rules.Boundaries, opts AnalyzeOptions) []Match {
	compiled := compileRules(catalog.Effective(!opts.DisableBuiltins))

	var out []Match
	for _, fd := range files {
		for _, h := range fd.Hunks {
			hunkHits := make(map[string]bool)
			for _, added := range h.Added {
				for _, cr := range compiled {
					if !cr.inScope(fd.FilePath) {
						continue
					}
					sig, ok := cr.match(added.Text)
					if !ok {
						continue
					}
					m := Match{
						RuleID:  cr.rule.ID,
						File:    fd.FilePath,
						Line:    added.Line,
						Locator: unidiff.LineLocator(added.Line),
						Text:    added.Text,
						Summary: []string{headline(added.Text)},
						Signals: []string{sig},
					}
					if cr.hunkScoped {
						if hunkHits[cr.rule.ID] {
							continue
						}
						hunkHits[cr.rule.ID] = true
						m.Locator = h.Locator()
						m.Summary = []string{fmt.Sprintf("Hunk adds %s at line %d", headline(added.Text), added.Line)}
					}
					out = append(out, m)
				}

				edge, ok := boundary.ExtractEdge(fd.FilePath, added.Text)
				if !ok {
					continue
				}
				for _, br := range boundary.CheckForbidden(edge, boundaries) {
					out = append(out, boundaryMatch(fd.FilePath, added, edge, br))
				}
			}
		}
	}
	return out
}

func boundaryMatch(file string, added unidiff.AddedLine, edge boundary.Edge, br rules.BoundaryRule) Match {
	why := br.Explain
	if why == "" {
		why = fmt.Sprintf("Imports matching %s are forbidden from %s.", br.To.Glob, br.From.Glob)
	}
	suggestion := "Depend on the target's public API or a shared adapter instead."
	if len(br.AllowVia) > 0 {
		suggestion = "Route the import through an allowed entry point: " + strings.Join(br.AllowVia, ", ")
	}
	return Match{
		RuleID:     br.Rule,
		File:       file,
		Line:       added.Line,
		Locator:    unidiff.LineLocator(added.Line),
		Text:       added.Text,
		Summary:    []string{fmt.Sprintf("Forbidden import %q", edge.Specifier), headline(added.Text)},
		Severity:   boundaryDefaultSeverity,
		Area:       boundaryDefaultArea,
		Why:        why,
		Suggestion: suggestion,
		Signals:    []string{"import:" + edge.Specifier},
	}
}

type compiledRule struct {
	rule       rules.RuleItem
	hunkScoped bool
	scope      []string
	signals    []signalMatcher
}

type signalMatcher struct {
	raw   string
	match func(string) bool
}

// compileRules drops signals that fail to compile; a rule left with no
// usable signal never fires.
func compileRules(items []rules.RuleItem) []compiledRule {
	out := make([]compiledRule, 0, len(items))
	for _, r := range items {
		cr := compiledRule{rule: r, hunkScoped: r.Trigger.HunkScoped()}
		for _, s := range r.Scope {
			if strings.ContainsAny(s, "*/.") {
				cr.scope = append(cr.scope, s)
			}
		}
		for _, sig := range r.Trigger.Signals {
			if m, ok := compileSignal(sig); ok {
				cr.signals = append(cr.signals, m)
			}
		}
		if len(cr.signals) > 0 {
			out = append(out, cr)
		}
	}
	return out
}

func compileSignal(sig string) (signalMatcher, bool) {
	switch {
	case sig == "added-line-secret":
		return signalMatcher{raw: sig, match: redact.ContainsSecret}, true
	case strings.HasPrefix(sig, "added-line-regex:"):
		re, err := regexp.Compile(strings.TrimPrefix(sig, "added-line-regex:"))
		if err != nil {
			return signalMatcher{}, false
		}
		return signalMatcher{raw: sig, match: re.MatchString}, true
	case strings.HasPrefix(sig, "added-line:"):
		lit := strings.TrimPrefix(sig, "added-line:")
		if lit == "" {
			return signalMatcher{}, false
		}
		return signalMatcher{raw: sig, match: func(s string) bool { return strings.Contains(s, lit) }}, true
	default:
		return signalMatcher{}, false
	}
}

func (cr compiledRule) match(text string) (string, bool) {
	for _, s := range cr.signals {
		if s.match(text) {
			return s.raw, true
		}
	}
	return "", false
}

// inScope treats scope entries as file globs; a rule without globs applies
// everywhere.
func (cr compiledRule) inScope(file string) bool {
	if len(cr.scope) == 0 {
		return true
	}
	for _, g := range cr.scope {
		if ok, err := doublestar.Match(g, file); err == nil && ok {
			return true
		}
	}
	return false
}

// headline trims, redacts and shortens an added line for display.
func headline(text string) string {
	s := redact.Secrets(strings.TrimSpace(text))
	if utf8.RuneCountInString(s) > maxHeadlineLen {
		s = string([]rune(s)[:maxHeadlineLen]) + "…"
	}
	return s
}
