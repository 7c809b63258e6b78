package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/sentinel/internal/review"
)

// MarshalRun returns the canonical pretty-printed JSON of run, without a
// trailing newline.
func MarshalRun(run *review.Run) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// JSONWriter outputs the full run as JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, run *review.Run) error {
	data, err := MarshalRun(run)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// ParseRun decodes a run from canonical JSON.
func ParseRun(data []byte) (*review.Run, error) {
	var run review.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing run: %w", err)
	}
	return &run, nil
}

// ReadRun loads a run from review.json or from a transport review.md.
func ReadRun(path string) (*review.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".md") {
		js, err := ExtractJSON(string(data))
		if err != nil {
			return nil, err
		}
		data = []byte(js)
	}
	return ParseRun(data)
}
