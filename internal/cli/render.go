package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/sentinel/internal/output"
	"github.com/dshills/sentinel/internal/review"
)

var (
	flagRenderFormat string
	flagRenderPretty bool
)

var renderCmd = &cobra.Command{
	Use:   "render <review.json|review.md>",
	Short: "Re-render a stored review",
	Long: "Read a review from review.json or a transport review.md and render it again. " +
		"The default \"human\" format prints the grouped Markdown view.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		run, err := readStoredRun(args[0])
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}
		opts := renderOptions(cfg, flagNoColor)

		if flagRenderFormat == "human" {
			md := output.RenderHuman(run.Findings, opts)
			if flagOut != "" {
				if err := output.WriteFileAtomic(flagOut, []byte(md+"\n")); err != nil {
					fail(ExitRuntimeError, "%v", err)
				}
				return nil
			}
			if err := output.WriteMarkdown(os.Stdout, md, flagRenderPretty); err != nil {
				fail(ExitRuntimeError, "%v", err)
			}
			return nil
		}

		if err := output.WriteRun(run, flagRenderFormat, flagOut, opts); err != nil {
			fail(ExitRuntimeError, "%v", err)
		}
		return nil
	},
}

// readStoredRun loads a run from review.json or from the JSON block of a
// transport Markdown file.
func readStoredRun(path string) (*review.Run, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return output.ReadRun(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading review: %w", err)
	}
	return output.ParseTransport(string(data))
}

func init() {
	renderCmd.Flags().StringVar(&flagRenderFormat, "format", "human", "Output format (human, "+strings.Join(output.Formats, ", ")+")")
	renderCmd.Flags().BoolVar(&flagRenderPretty, "pretty", false, "Render Markdown for the terminal")
	renderCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	renderCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored text output")
}
