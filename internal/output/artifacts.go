package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/sentinel/internal/review"
)

// Artifact file names inside a run directory.
const (
	FileReviewJSON    = "review.json"
	FileReviewMD      = "review.md"
	FileReviewHumanMD = "review.human.md"
	FileReviewHTML    = "review.html"
)

// ArtifactLayout says where the artifacts of one run go.
type ArtifactLayout struct {
	// Root is the output root; paths recorded in the run are relative to it.
	Root string
	// ReviewDir receives review.json, review.md and the optional views.
	ReviewDir string
	// ContextPath receives the context document. Empty skips it.
	ContextPath   string
	HumanMarkdown bool
	HTML          bool
}

// WriteArtifacts renders run into every configured format and writes each
// file atomically. The returned run carries the artifact paths and is the
// exact value serialized into review.json.
func WriteArtifacts(ctx context.Context, run review.Run, layout ArtifactLayout, contextMarkdown string, opts RenderOptions) (review.Run, error) {
	type file struct {
		path string
		data []byte
	}

	jsonPath := filepath.Join(layout.ReviewDir, FileReviewJSON)
	mdPath := filepath.Join(layout.ReviewDir, FileReviewMD)
	arts := &review.Artifacts{
		ReviewJSON: relTo(layout.Root, jsonPath),
		ReviewMD:   relTo(layout.Root, mdPath),
	}
	var humanPath, htmlPath string
	if layout.HumanMarkdown {
		humanPath = filepath.Join(layout.ReviewDir, FileReviewHumanMD)
		arts.ReviewHumanMD = relTo(layout.Root, humanPath)
	}
	if layout.HTML {
		htmlPath = filepath.Join(layout.ReviewDir, FileReviewHTML)
		arts.ReviewHTML = relTo(layout.Root, htmlPath)
	}
	if layout.ContextPath != "" {
		arts.Context = relTo(layout.Root, layout.ContextPath)
	}

	out := run
	out.Artifacts = arts

	jsonData, err := MarshalRun(&out)
	if err != nil {
		return run, err
	}
	transport, err := RenderTransport(&out)
	if err != nil {
		return run, err
	}
	files := []file{
		{jsonPath, jsonData},
		{mdPath, []byte(transport)},
	}

	human := RenderHuman(out.Findings, opts)
	if humanPath != "" {
		files = append(files, file{humanPath, []byte(human + "\n")})
	}
	if htmlPath != "" {
		files = append(files, file{htmlPath, []byte(RenderHTML(human, HTMLTitle(&out, opts)))})
	}
	if layout.ContextPath != "" {
		files = append(files, file{layout.ContextPath, []byte(contextMarkdown)})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return WriteFileAtomic(f.path, f.data)
		})
	}
	if err := g.Wait(); err != nil {
		return run, err
	}
	return out, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// into place, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".sentinel-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func relTo(root, p string) string {
	if root == "" {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
