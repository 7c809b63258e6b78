package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/sentinel/internal/review"
)

const (
	transportOpen  = "<!-- AI_REVIEW:DUAL:JSON -->"
	transportClose = "<!-- AI_REVIEW:DUAL:JSON:END -->"
	fenceOpen      = "```json\n"
	fenceClose     = "\n```"
)

// ErrNoTransportBlock is returned by ExtractJSON when the markers are absent.
var ErrNoTransportBlock = errors.New("no AI_REVIEW:DUAL:JSON block found")

// RenderTransport wraps the canonical JSON of run in a fenced block between
// paired markers.
func RenderTransport(run *review.Run) (string, error) {
	data, err := MarshalRun(run)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{
		transportOpen,
		"```json",
		string(data),
		"```",
		transportClose,
		"",
	}, "\n"), nil
}

// ExtractJSON returns the canonical JSON embedded in a transport document.
func ExtractJSON(md string) (string, error) {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	i := strings.Index(md, transportOpen)
	if i < 0 {
		return "", ErrNoTransportBlock
	}
	rest := md[i+len(transportOpen):]
	j := strings.Index(rest, transportClose)
	if j < 0 {
		return "", fmt.Errorf("%w: missing end marker", ErrNoTransportBlock)
	}
	block := strings.TrimSpace(rest[:j])
	if !strings.HasPrefix(block, fenceOpen) || !strings.HasSuffix(block, fenceClose) {
		return "", fmt.Errorf("%w: missing json fence", ErrNoTransportBlock)
	}
	return block[len(fenceOpen) : len(block)-len(fenceClose)], nil
}

// ParseTransport extracts and decodes the run embedded in md.
func ParseTransport(md string) (*review.Run, error) {
	js, err := ExtractJSON(md)
	if err != nil {
		return nil, err
	}
	return ParseRun([]byte(js))
}

// TransportWriter outputs the transport Markdown form of a run.
type TransportWriter struct{}

func (t *TransportWriter) Write(w io.Writer, run *review.Run) error {
	md, err := RenderTransport(run)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, md)
	return err
}
