package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RenderPretty renders Markdown for terminal display, wrapped at width
// columns.
func RenderPretty(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// WriteMarkdown writes markdown to f, rendered through glamour when pretty
// is set and f is a terminal.
func WriteMarkdown(f *os.File, markdown string, pretty bool) error {
	if pretty && IsTerminal(f) {
		out, err := RenderPretty(markdown, 0)
		if err == nil {
			_, err = io.WriteString(f, out)
			return err
		}
	}
	_, err := io.WriteString(f, markdown+"\n")
	return err
}
