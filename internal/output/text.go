package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/sentinel/internal/review"
)

// TextWriter outputs a human-readable terminal report.
type TextWriter struct {
	NoColor bool
}

func (t *TextWriter) Write(w io.Writer, run *review.Run) error {
	ew := &errWriter{w: w}
	p := newPalette(t.NoColor)

	sum := review.Summarize(run.Findings)
	if run.Summary != nil {
		sum = *run.Summary
	}

	ew.printf("%s  run %s (provider: %s, profile: %s)\n",
		p.bold("Sentinel Review"), run.RunID, run.Provider, run.Profile)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Findings: %d total", sum.FindingsTotal)
	if sum.FindingsTotal > 0 {
		c := sum.FindingsBySeverity
		ew.printf(" (%d critical, %d major, %d minor, %d info)", c.Critical, c.Major, c.Minor, c.Info)
	}
	ew.println("")
	if sum.Risk != nil {
		ew.printf("Risk: %s (score %.0f)\n", p.risk(sum.Risk.Level), sum.Risk.Score)
	}
	ew.println(strings.Repeat("─", 60))

	if sum.FindingsTotal == 0 {
		ew.println("\n" + p.green("No issues found. Looks good!"))
		return ew.err
	}

	grouped := groupBySeverity(run.Findings)
	for _, sev := range review.Severities {
		findings := grouped[sev]
		if len(findings) == 0 {
			continue
		}

		ew.printf("\n%s %s\n", sev.Icon(), p.severity(sev, strings.ToUpper(string(sev))))
		ew.println(strings.Repeat("─", 40))

		for _, f := range findings {
			file := f.File
			if file == "" {
				file = "(no file)"
			}
			ew.printf("\n  %s %s  %s\n", file, p.dim(f.Locator), p.bold(f.Rule))
			if f.Area != "" {
				ew.printf("  Area: %s | Fingerprint: %s\n", f.Area, p.dim(f.Fingerprint))
			}
			for _, line := range f.Finding {
				for _, l := range wrapText(line, 70) {
					ew.printf("    %s\n", l)
				}
			}
			if f.Why != "" {
				ew.println("  Why:")
				for _, l := range wrapText(f.Why, 70) {
					ew.printf("    %s\n", l)
				}
			}
			if f.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, l := range wrapText(f.Suggestion, 70) {
					ew.printf("    %s\n", l)
				}
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	if run.StartedAt != "" {
		ew.printf("Started %s, finished %s\n", run.StartedAt, run.FinishedAt)
	}

	return ew.err
}

type palette struct {
	bold, dim, green, red, yellow, cyan func(a ...interface{}) string
}

func newPalette(noColor bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		bold:   mk(color.Bold),
		dim:    mk(color.Faint),
		green:  mk(color.FgGreen),
		red:    mk(color.FgRed, color.Bold),
		yellow: mk(color.FgYellow),
		cyan:   mk(color.FgCyan),
	}
}

func (p palette) severity(s review.Severity, text string) string {
	switch s {
	case review.SeverityCritical:
		return p.red(text)
	case review.SeverityMajor:
		return p.yellow(text)
	case review.SeverityMinor:
		return p.cyan(text)
	default:
		return p.dim(text)
	}
}

func (p palette) risk(level string) string {
	switch level {
	case review.RiskHigh:
		return p.red(level)
	case review.RiskMedium:
		return p.yellow(level)
	default:
		return p.green(level)
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
