package output

import (
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/dshills/sentinel/internal/review"
)

var (
	fenceLine  = regexp.MustCompile("^```(.*)$")
	hrLine     = regexp.MustCompile(`^---\s*$`)
	h1Line     = regexp.MustCompile(`^#\s+`)
	h2Line     = regexp.MustCompile(`^##\s+`)
	h3Line     = regexp.MustCompile(`^###\s+`)
	listLine   = regexp.MustCompile(`^\s*-\s+`)
	bareURL    = regexp.MustCompile(`\bhttps?://[^\s)"'<>]+`)
	inlineCode = regexp.MustCompile("`([^`]+)`")
)

// escapeHTML also escapes quotes so escaped text is safe inside attributes.
func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// inline escapes s, then links bare URLs and wraps code spans. Escaping
// first keeps markup in finding text inert.
func inline(s string) string {
	s = bareURL.ReplaceAllStringFunc(escapeHTML(s), func(u string) string {
		return `<a href="` + u + `" target="_blank" rel="noopener noreferrer">` + u + `</a>`
	})
	return inlineCode.ReplaceAllString(s, "<code>$1</code>")
}

// RenderHTML converts the Markdown subset produced by RenderHuman into a
// standalone HTML page.
func RenderHTML(markdown, title string) string {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	markdown = strings.ReplaceAll(markdown, "\r", "\n")

	var out []string
	var code []string
	inCode, inList := false, false

	flushList := func() {
		if inList {
			out = append(out, "</ul>")
			inList = false
		}
	}

	for _, line := range strings.Split(markdown, "\n") {
		if fenceLine.MatchString(line) {
			if inCode {
				out = append(out, "<pre><code>"+escapeHTML(strings.Join(code, "\n"))+"</code></pre>")
				inCode = false
			} else {
				inCode = true
				code = code[:0]
			}
			continue
		}
		if inCode {
			code = append(code, line)
			continue
		}

		switch {
		case hrLine.MatchString(line):
			flushList()
			out = append(out, "<hr/>")
		case h1Line.MatchString(line):
			flushList()
			out = append(out, "<h1>"+escapeHTML(h1Line.ReplaceAllString(line, ""))+"</h1>")
		case h2Line.MatchString(line):
			flushList()
			out = append(out, "<h2>"+escapeHTML(h2Line.ReplaceAllString(line, ""))+"</h2>")
		case h3Line.MatchString(line):
			flushList()
			out = append(out, "<h3>"+escapeHTML(h3Line.ReplaceAllString(line, ""))+"</h3>")
		case listLine.MatchString(line):
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+inline(listLine.ReplaceAllString(line, ""))+"</li>")
		case strings.TrimSpace(line) == "":
			flushList()
			out = append(out, "<br/>")
		default:
			flushList()
			out = append(out, "<p>"+inline(line)+"</p>")
		}
	}
	flushList()

	return htmlHead + "<title>" + escapeHTML(title) + "</title>\n" + htmlStyle +
		"<body>\n" + strings.Join(out, "\n") + "\n</body></html>"
}

// HTMLTitle returns the page title used for a run.
func HTMLTitle(run *review.Run, opts RenderOptions) string {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	return title + " — " + run.Profile
}

// HTMLWriter outputs the HTML report.
type HTMLWriter struct {
	Options RenderOptions
}

func (h *HTMLWriter) Write(w io.Writer, run *review.Run) error {
	md := RenderHuman(run.Findings, h.Options)
	_, err := io.WriteString(w, RenderHTML(md, HTMLTitle(run, h.Options)))
	return err
}

const htmlHead = `<!doctype html>
<html lang="en">
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
`

const htmlStyle = `<style>
  :root { color-scheme: light dark; }
  body {
    font: 14px/1.55 system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,'Helvetica Neue',Arial,sans-serif;
    max-width: 900px;
    margin: 32px auto;
    padding: 0 16px;
  }
  h1 { font-size: 22px; margin: .6em 0; }
  h2 { font-size: 18px; margin: 1.2em 0 .4em; }
  h3 { font-size: 16px; margin: 1em 0 .4em; }
  ul { margin: .3em 0 1em 1.2em; padding: 0; }
  li { margin: .25em 0; }
  a { text-decoration: underline; }
  code {
    font-family: ui-monospace,SFMono-Regular,Menlo,Monaco,Consolas,monospace;
    background: rgba(127,127,127,.12);
    padding: .1em .3em;
    border-radius: .25rem;
  }
  pre {
    background: rgba(127,127,127,.12);
    padding: 12px;
    border-radius: .5rem;
    overflow: auto;
  }
  hr { border: 0; height: 1px; background: linear-gradient(90deg,transparent,#ccc,transparent); margin: 1.2em 0; }
</style>
`
