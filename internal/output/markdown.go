package output

import (
	"io"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dshills/sentinel/internal/review"
)

// DefaultTitle is the heading of the human Markdown report.
const DefaultTitle = "Sentinel Review"

const noIssuesLine = "- ✅ No issues found"

// SeverityStyle overrides how a severity heading is displayed.
type SeverityStyle struct {
	Title string `json:"title,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// RenderOptions tunes the human-facing renderers.
type RenderOptions struct {
	// Title is the top-level heading. Empty means DefaultTitle.
	Title string
	// Template, when set, renders one line per finding with {{field}}
	// placeholders instead of the grouped layout.
	Template string
	// SeverityMap overrides the title and icon per severity.
	SeverityMap map[string]SeverityStyle
	NoColor     bool
	ToolVersion string
}

var templateVar = regexp.MustCompile(`\{\{\s*([.\w]+)\s*\}\}`)

// ApplyTemplate replaces {{key}} placeholders with values from ctx. Unknown
// keys render as the empty string.
func ApplyTemplate(tpl string, ctx map[string]string) string {
	return templateVar.ReplaceAllStringFunc(tpl, func(m string) string {
		key := templateVar.FindStringSubmatch(m)[1]
		return ctx[key]
	})
}

func (o RenderOptions) style(s review.Severity) (title, icon string) {
	title, icon = s.Title(), s.Icon()
	if st, ok := o.SeverityMap[string(s)]; ok {
		if st.Title != "" {
			title = st.Title
		}
		if st.Icon != "" {
			icon = st.Icon
		}
	}
	return title, icon
}

func (o RenderOptions) heading(s review.Severity) string {
	title, icon := o.style(s)
	if icon != "" {
		return "\n## " + icon + " " + title
	}
	return "\n## " + title
}

// RenderHuman renders findings as severity-grouped Markdown. All four
// severity headings are always present.
func RenderHuman(findings []review.Finding, opts RenderOptions) string {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	grouped := groupBySeverity(findings)
	out := []string{"# " + title}

	for _, sev := range review.Severities {
		out = append(out, opts.heading(sev))
		list := grouped[sev]
		if len(list) == 0 {
			out = append(out, noIssuesLine)
			continue
		}

		if opts.Template != "" {
			sevTitle, sevIcon := opts.style(sev)
			for _, f := range list {
				out = append(out, ApplyTemplate(opts.Template, map[string]string{
					"severity":       string(sev),
					"severity_title": sevTitle,
					"severity_icon":  sevIcon,
					"rule":           f.Rule,
					"area":           f.Area,
					"file":           f.File,
					"locator":        f.Locator,
					"what":           f.Headline(),
					"why":            f.Why,
					"suggestion":     f.Suggestion,
					"fingerprint":    f.Fingerprint,
				}))
			}
			continue
		}

		for _, g := range groupFindings(list) {
			rule := g.rule
			if rule == "" {
				rule = "unknown"
			}
			file := g.file
			if file == "" {
				file = "—"
			}
			out = append(out, "- **"+rule+"** in `"+file+"`")
			for _, f := range g.findings {
				out = append(out, "  - "+f.Headline())
				if f.Why != "" {
					out = append(out, "  - _Why:_ "+f.Why)
				}
				if f.Suggestion != "" {
					out = append(out, "  - _Fix:_ "+f.Suggestion)
				}
			}
		}
	}
	return strings.Join(out, "\n")
}

// groupBySeverity buckets findings and orders each bucket by area, then
// file, using locale-aware collation. Findings with an unknown severity
// are dropped from the view.
func groupBySeverity(findings []review.Finding) map[review.Severity][]review.Finding {
	m := make(map[review.Severity][]review.Finding)
	for _, f := range findings {
		if f.Severity.Valid() {
			m[f.Severity] = append(m[f.Severity], f)
		}
	}
	col := collate.New(language.Und)
	for _, list := range m {
		sort.SliceStable(list, func(i, j int) bool {
			if c := col.CompareString(list[i].Area, list[j].Area); c != 0 {
				return c < 0
			}
			return col.CompareString(list[i].File, list[j].File) < 0
		})
	}
	return m
}

type findingGroup struct {
	area     string
	file     string
	rule     string
	findings []review.Finding
}

// groupFindings groups findings by (area, file, rule) in first-seen order,
// so every heading names the rule of each finding beneath it. An empty area
// is reported as General.
func groupFindings(list []review.Finding) []*findingGroup {
	var groups []*findingGroup
	index := make(map[string]*findingGroup)
	for _, f := range list {
		area := f.Area
		if area == "" {
			area = "General"
		}
		key := area + "\x00" + f.File + "\x00" + f.Rule
		g, ok := index[key]
		if !ok {
			g = &findingGroup{area: area, file: f.File, rule: f.Rule}
			index[key] = g
			groups = append(groups, g)
		}
		g.findings = append(g.findings, f)
	}
	return groups
}

// MarkdownWriter outputs the human Markdown report.
type MarkdownWriter struct {
	Options RenderOptions
}

func (m *MarkdownWriter) Write(w io.Writer, run *review.Run) error {
	_, err := io.WriteString(w, RenderHuman(run.Findings, m.Options)+"\n")
	return err
}
