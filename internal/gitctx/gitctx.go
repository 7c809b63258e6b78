package gitctx

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DiffOptions controls how diffs are gathered.
type DiffOptions struct {
	// Dir is the repository directory. Empty means the current directory.
	Dir          string
	MaxDiffBytes int
	Include      []string
	Exclude      []string
}

func (o DiffOptions) dir() string {
	if o.Dir == "" {
		return "."
	}
	return o.Dir
}

// DiffResult holds the collected diff and metadata.
type DiffResult struct {
	Diff      string
	Files     []string
	Mode      string
	Range     string
	Repo      RepoMeta
	Truncated bool
}

// Unstaged returns the diff of working tree vs index.
func Unstaged(ctx context.Context, opts DiffOptions) (DiffResult, error) {
	diff, err := gitOutput(ctx, opts.dir(), "diff", "--no-color", "--no-ext-diff")
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff: %w", err)
	}
	return buildResult(diff, "unstaged", "", opts), nil
}

// Staged returns the diff of index vs HEAD.
func Staged(ctx context.Context, opts DiffOptions) (DiffResult, error) {
	diff, err := gitOutput(ctx, opts.dir(), "diff", "--cached", "--no-color", "--no-ext-diff")
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff --cached: %w", err)
	}
	return buildResult(diff, "staged", "", opts), nil
}

// FromReader reads a unified diff from r, such as a patch file or stdin.
// source is recorded as the result's Range.
func FromReader(r io.Reader, source string, opts DiffOptions) (DiffResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return DiffResult{}, fmt.Errorf("reading diff: %w", err)
	}
	res := buildResult(string(data), "diff", source, opts)
	if meta, err := GetRepoMeta(opts.dir()); err == nil {
		res.Repo = meta
	}
	return res, nil
}

func buildResult(diff, mode, rangeStr string, opts DiffOptions) DiffResult {
	diff = strings.ReplaceAll(diff, "\r\n", "\n")

	// Filter before truncating so excluded files don't consume the byte budget.
	if len(opts.Include) > 0 || len(opts.Exclude) > 0 {
		diff = filterSections(diff, opts.Include, opts.Exclude)
	}
	files := extractFiles(diff)

	truncated := false
	if opts.MaxDiffBytes > 0 && len(diff) > opts.MaxDiffBytes {
		cut := diff[:opts.MaxDiffBytes]
		if i := strings.LastIndexByte(cut, '\n'); i >= 0 {
			cut = cut[:i+1]
		}
		diff = cut
		truncated = true
	}

	res := DiffResult{
		Diff:      diff,
		Files:     files,
		Mode:      mode,
		Range:     rangeStr,
		Truncated: truncated,
	}
	if mode == "unstaged" || mode == "staged" {
		if meta, err := GetRepoMeta(opts.dir()); err == nil {
			res.Repo = meta
		}
	}
	return res
}

func extractFiles(diff string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, section := range splitDiffSections(diff) {
		f := extractPathFromSection(section)
		if f != "" && !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	return files
}

// filterSections keeps the file sections whose path passes the include and
// exclude globs. Sections without a recognizable path are kept.
func filterSections(diff string, include, exclude []string) string {
	var kept []string
	for _, section := range splitDiffSections(diff) {
		path := extractPathFromSection(section)
		if path == "" || Included(path, include, exclude) {
			kept = append(kept, section)
		}
	}
	return strings.Join(kept, "")
}

func splitDiffSections(diff string) []string {
	if diff == "" {
		return nil
	}
	var sections []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// extractPathFromSection returns the new path of a file section, or the old
// path for a deletion.
func extractPathFromSection(section string) string {
	var oldPath string
	for _, line := range strings.Split(section, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ b/"):
			return strings.TrimPrefix(line, "+++ b/")
		case strings.HasPrefix(line, "--- a/"):
			oldPath = strings.TrimPrefix(line, "--- a/")
		case strings.HasPrefix(line, "@@"):
			return oldPath
		}
	}
	return oldPath
}

// Included reports whether path matches include (or include is empty) and
// matches none of exclude.
func Included(path string, include, exclude []string) bool {
	if len(include) > 0 && !MatchesAny(path, include) {
		return false
	}
	return !MatchesAny(path, exclude)
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// Patterns use doublestar syntax; a pattern without a slash also matches
// the base name of path.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			base := path[strings.LastIndexByte(path, '/')+1:]
			if ok, err := doublestar.Match(pattern, base); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
