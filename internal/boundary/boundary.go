package boundary

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dshills/sentinel/internal/rules"
)

// Edge is an import from one file to a module specifier.
type Edge struct {
	FromFile  string `json:"fromFile"`
	Specifier string `json:"specifier"`
}

var (
	lineCommentRe  = regexp.MustCompile(`//.*$`)
	importPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bfrom\s+['"]([^'"]+)['"]`),
		regexp.MustCompile(`\bimport\s+['"]([^'"]+)['"]`),
		regexp.MustCompile(`\bexport\s+\*\s+from\s+['"]([^'"]+)['"]`),
		regexp.MustCompile(`\bexport\s+\{[^}]*\}\s+from\s+['"]([^'"]+)['"]`),
	}
	relativePrefixRe = regexp.MustCompile(`^(?:\.\.?/)+`)
)

// ExtractSpecifier returns the import specifier on line, if any. Trailing
// // comments are removed first and the first matching pattern wins.
func ExtractSpecifier(line string) (string, bool) {
	s := strings.TrimSpace(lineCommentRe.ReplaceAllString(line, ""))
	if s == "" {
		return "", false
	}
	for _, re := range importPatterns {
		if m := re.FindStringSubmatch(s); m != nil && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// ExtractEdge builds an Edge for an added line of file.
func ExtractEdge(file, line string) (Edge, bool) {
	spec, ok := ExtractSpecifier(line)
	if !ok {
		return Edge{}, false
	}
	return Edge{FromFile: ToPosix(file), Specifier: spec}, true
}

// ToPosix converts backslashes to slashes and collapses repeated slashes.
func ToPosix(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// NormalizeSpecifier strips leading ./ and ../ segments.
func NormalizeSpecifier(spec string) string {
	return relativePrefixRe.ReplaceAllString(spec, "")
}

// Violates reports whether edge breaks rule: the importer matches From, the
// normalized specifier matches no AllowVia glob, and it matches To.
func Violates(edge Edge, rule rules.BoundaryRule) bool {
	if !match(rule.From.Glob, edge.FromFile) {
		return false
	}
	spec := NormalizeSpecifier(edge.Specifier)
	for _, g := range rule.AllowVia {
		if match(g, spec) {
			return false
		}
	}
	return match(rule.To.Glob, spec)
}

// CheckForbidden returns every rule in b that edge violates, in catalog
// order. A nil catalog yields nil.
func CheckForbidden(edge Edge, b *rules.Boundaries) []rules.BoundaryRule {
	if b == nil {
		return nil
	}
	var out []rules.BoundaryRule
	for _, r := range b.Forbidden {
		if Violates(edge, r) {
			out = append(out, r)
		}
	}
	return out
}

// match treats an invalid or empty glob as matching nothing.
func match(pattern, name string) bool {
	if pattern == "" {
		return false
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
