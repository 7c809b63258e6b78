package contextdoc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupProfile(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "default")
	writeFile(t, filepath.Join(root, "docs", "rules", "rules.json"), `{"version":1,"rules":[{"id":"style.no-todo-comment","severity":"minor"}]}`)
	writeFile(t, filepath.Join(root, "docs", "rules", "boundaries.json"), `{"forbidden":[{"rule":"arch.modular-boundaries","from":{"glob":"src/**"},"to":{"glob":"**/internal/**"}}]}`)
	writeFile(t, filepath.Join(root, "docs", "handbook", "01-style.md"), "# Style\r\n\r\nKeep functions short.   \r\n")
	writeFile(t, filepath.Join(root, "docs", "handbook", "02-arch.md"), "\ufeff# Architecture\n\nLayers only point down.\n")
	writeFile(t, filepath.Join(root, "docs", "adr", "0001-record.md"), "# ADR 1\n\n"+strings.Repeat("decision words here ", 200))
	return root
}

func baseOptions() Options {
	return Options{
		Profile:           "default",
		IncludeADR:        true,
		IncludeBoundaries: true,
		GeneratedAt:       fixedTime,
	}
}

func TestBuild_Sections(t *testing.T) {
	root := setupProfile(t)

	res, err := Build(root, baseOptions())
	require.NoError(t, err)

	assert.Equal(t, Sections{Handbook: 2, ADR: 1, HasBoundaries: true}, res.Sections)
	assert.Equal(t, res.BaseHash, res.FinalHash)
	assert.Empty(t, res.Omitted)
	assert.Equal(t, len(res.Markdown), res.Bytes)
	assert.Equal(t, ApproxTokens(res.Markdown), res.ApproxTokens)

	md := res.Markdown
	order := []string{
		openMarker(SectionSummary),
		openMarker(SectionHandbook),
		openMarker(SectionRules),
		openMarker(SectionADR),
		"## Checksums",
	}
	last := -1
	for _, m := range order {
		i := strings.Index(md, m)
		require.Greater(t, i, last, "marker %q out of order", m)
		last = i
	}

	hb, ok := ExtractSection(md, SectionHandbook)
	require.True(t, ok)
	assert.Contains(t, hb, "- docs/handbook/01-style.md")
	assert.Contains(t, hb, "Keep functions short.\n")
	assert.NotContains(t, hb, "\r")
	assert.NotContains(t, hb, "\ufeff")

	rules, ok := ExtractSection(md, SectionRules)
	require.True(t, ok)
	assert.Contains(t, rules, `"id": "style.no-todo-comment"`)
	assert.Contains(t, rules, "## Boundaries")
	assert.Contains(t, md, `"baseHash": "`+res.BaseHash+`"`)
}

func TestBuild_Deterministic(t *testing.T) {
	root := setupProfile(t)
	a, err := Build(root, baseOptions())
	require.NoError(t, err)
	b, err := Build(root, baseOptions())
	require.NoError(t, err)
	assert.Equal(t, a.Markdown, b.Markdown)
	assert.Equal(t, a.FinalHash, b.FinalHash)
}

func TestBuild_TokenBudgetOmitsADR(t *testing.T) {
	root := setupProfile(t)
	opts := baseOptions()
	opts.MaxApproxTokens = 100

	res, err := Build(root, opts)
	require.NoError(t, err)

	assert.Contains(t, res.Markdown, tokenPlaceholder)
	assert.NotEqual(t, res.BaseHash, res.FinalHash)
	assert.Equal(t, []string{SectionADR}, res.Omitted)
	assert.NotContains(t, res.Markdown, "decision words here")

	hb, ok := ExtractSection(res.Markdown, SectionHandbook)
	require.True(t, ok)
	assert.Contains(t, hb, "Layers only point down.")
}

func TestBuild_ByteBudget(t *testing.T) {
	root := setupProfile(t)
	writeFile(t, filepath.Join(root, "docs", "handbook", "03-big.md"), strings.Repeat("lorem ipsum dolor sit amet\n", 2000))

	full, err := Build(root, baseOptions())
	require.NoError(t, err)

	const limit = 4000
	require.Greater(t, full.Bytes, limit)

	opts := baseOptions()
	opts.MaxBytes = limit
	res, err := Build(root, opts)
	require.NoError(t, err)

	footer := checksumFooter(res.BaseHash, res.FinalHash)
	assert.LessOrEqual(t, res.Bytes-len(footer), limit)
	assert.Contains(t, res.Markdown, bytesPlaceholder)
	assert.Equal(t, []string{SectionHandbook, SectionADR}, res.Omitted)
	assert.Equal(t, full.BaseHash, res.BaseHash)

	rules, ok := ExtractSection(res.Markdown, SectionRules)
	require.True(t, ok)
	assert.Contains(t, rules, "style.no-todo-comment")
}

func TestBuild_MissingRules(t *testing.T) {
	root := t.TempDir()
	_, err := Build(root, baseOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRulesNotFound))
	assert.Contains(t, err.Error(), filepath.Join(root, "docs", "rules", "rules.json"))
}

func TestBuild_OptionalSectionsMissing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "rules", "rules.json"), `{"rules":[]}`)

	res, err := Build(root, baseOptions())
	require.NoError(t, err)
	assert.Equal(t, Sections{}, res.Sections)
	assert.NotContains(t, res.Markdown, openMarker(SectionADR))
	_, ok := ExtractSection(res.Markdown, SectionHandbook)
	assert.True(t, ok)
}

func TestBuild_ExcludeADRAndBoundaries(t *testing.T) {
	root := setupProfile(t)
	opts := baseOptions()
	opts.IncludeADR = false
	opts.IncludeBoundaries = false

	res, err := Build(root, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sections.ADR)
	assert.False(t, res.Sections.HasBoundaries)
	assert.NotContains(t, res.Markdown, "## Boundaries")
}

func TestNormalize(t *testing.T) {
	in := "\ufeffline one  \r\nline two\t\rcafe\u0301"
	assert.Equal(t, "line one\nline two\ncaf\u00e9", normalize(in))
}

func TestApproxTokens(t *testing.T) {
	assert.Equal(t, 0, ApproxTokens("  \n\t"))
	assert.Equal(t, 3, ApproxTokens("a  b\nc"))
}

func TestResolveProfileRoot(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "profiles", "default"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "custom", "strict"), 0o755))

	got, err := ResolveProfileRoot(repo, "default", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo, "profiles", "default"), got)

	got, err = ResolveProfileRoot(repo, "strict", "custom")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo, "custom", "strict"), got)

	got, err = ResolveProfileRoot(repo, "./custom/strict", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo, "custom", "strict"), got)

	_, err = ResolveProfileRoot(repo, "missing", "")
	assert.Error(t, err)
}
