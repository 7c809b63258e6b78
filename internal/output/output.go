package output

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dshills/sentinel/internal/review"
)

// Writer writes a run in a specific format.
type Writer interface {
	Write(w io.Writer, run *review.Run) error
}

// Formats lists the names accepted by GetWriter.
var Formats = []string{"text", "json", "markdown", "transport", "html", "sarif"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string, opts RenderOptions) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{NoColor: opts.NoColor}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{Options: opts}, nil
	case "transport":
		return &TransportWriter{}, nil
	case "html":
		return &HTMLWriter{Options: opts}, nil
	case "sarif":
		return &SARIFWriter{ToolVersion: opts.ToolVersion}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteRun writes the run to the specified output (file path or stdout).
// A file is only replaced once the whole rendering has succeeded.
func WriteRun(run *review.Run, format, outPath string, opts RenderOptions) error {
	writer, err := GetWriter(format, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf, run); err != nil {
		return err
	}

	if outPath != "" {
		if err := WriteFileAtomic(outPath, buf.Bytes()); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		return nil
	}
	_, err = os.Stdout.Write(buf.Bytes())
	return err
}
