package contextdoc

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxBytes is the byte ceiling used when Options.MaxBytes is zero.
const DefaultMaxBytes = 1_500_000

// Section names used in the document markers.
const (
	SectionSummary  = "SUMMARY"
	SectionHandbook = "HANDBOOK"
	SectionRules    = "RULES"
	SectionADR      = "ADR"
)

const (
	tokenPlaceholder = "*Omitted due to context size constraints.*"
	bytesPlaceholder = "*Omitted due to size limit.*"
)

// ErrRulesNotFound is returned when the profile has no rules.json.
var ErrRulesNotFound = errors.New("rules.json not found")

// Options controls a Build.
type Options struct {
	Profile           string
	IncludeADR        bool
	IncludeBoundaries bool
	// MaxBytes is a hard ceiling on the document before the checksum
	// footer. Zero means DefaultMaxBytes.
	MaxBytes int
	// MaxApproxTokens is a soft ceiling in whitespace-delimited words.
	// Zero means unlimited.
	MaxApproxTokens int
	GeneratedAt     time.Time
	Logger          hclog.Logger
}

// Sections counts what went into the document.
type Sections struct {
	Handbook      int  `json:"handbook"`
	ADR           int  `json:"adr"`
	HasBoundaries bool `json:"hasBoundaries"`
}

// Result is the assembled context document.
type Result struct {
	Markdown     string   `json:"markdown"`
	Bytes        int      `json:"bytes"`
	ApproxTokens int      `json:"approxTokens"`
	BaseHash     string   `json:"baseHash"`
	FinalHash    string   `json:"finalHash"`
	Sections     Sections `json:"sections"`
	// Omitted lists the sections whose bodies were replaced by a budget
	// placeholder, in the order the budgets fired.
	Omitted []string `json:"omitted,omitempty"`
}

type blob struct {
	path    string
	content string
}

type metadata struct {
	Profile        string   `json:"profile"`
	ProfileRoot    string   `json:"profilesDir"`
	GeneratedAt    string   `json:"generatedAt"`
	HandbookFiles  []string `json:"handbookFiles"`
	RulesFile      string   `json:"rulesFile"`
	BoundariesFile *string  `json:"boundariesFile"`
	ADRFiles       []string `json:"adrFiles"`
}

// Build assembles the context document for the profile rooted at
// profileRoot. A missing rules.json is fatal; every other document is
// optional and logged at WARN when absent.
func Build(profileRoot string, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	profile := opts.Profile
	if profile == "" {
		profile = filepath.Base(profileRoot)
	}
	layout := LayoutFor(profileRoot)

	rulesRaw, err := os.ReadFile(layout.RulesFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrRulesNotFound, layout.RulesFile)
		}
		return Result{}, fmt.Errorf("reading rules file: %w", err)
	}
	rulesPretty := prettyJSON(normalize(string(rulesRaw)))

	handbook, err := readBlobs(layout.HandbookDir, log, "handbook")
	if err != nil {
		return Result{}, err
	}

	var boundariesPretty string
	var boundariesFile *string
	if opts.IncludeBoundaries {
		raw, err := os.ReadFile(layout.Boundaries)
		switch {
		case err == nil:
			boundariesPretty = prettyJSON(normalize(string(raw)))
			p := layout.Boundaries
			boundariesFile = &p
		case errors.Is(err, fs.ErrNotExist):
			log.Warn("boundaries document missing", "path", layout.Boundaries)
		default:
			return Result{}, fmt.Errorf("reading boundaries file: %w", err)
		}
	}

	var adr []blob
	if opts.IncludeADR {
		if adr, err = readBlobs(layout.ADRDir, log, "adr"); err != nil {
			return Result{}, err
		}
	}

	meta := metadata{
		Profile:        profile,
		ProfileRoot:    profileRoot,
		GeneratedAt:    generated.UTC().Format(time.RFC3339),
		HandbookFiles:  paths(handbook),
		RulesFile:      layout.RulesFile,
		BoundariesFile: boundariesFile,
		ADRFiles:       paths(adr),
	}
	metaCompact, err := json.Marshal(meta)
	if err != nil {
		return Result{}, fmt.Errorf("encoding context metadata: %w", err)
	}
	metaPretty, _ := json.MarshalIndent(meta, "", "  ")

	var parts []string
	parts = append(parts,
		"---",
		"title: Sentinel Review Context",
		"profile: "+profile,
		"generatedAt: "+meta.GeneratedAt,
		"hashSeed: "+sha1Hex(string(metaCompact)),
		"---",
		"",
	)

	parts = append(parts,
		openMarker(SectionSummary),
		"# Sentinel Review Context",
		"",
		"This document is the single source of truth for the current review run.",
		"",
		"## Metadata",
		"```json",
		string(metaPretty),
		"```",
		closeMarker(SectionSummary),
		"",
	)

	parts = append(parts, openMarker(SectionHandbook), "# Handbook", "")
	parts = append(parts, blobSection("Handbook", handbook, profileRoot)...)
	parts = append(parts, closeMarker(SectionHandbook), "")

	parts = append(parts,
		openMarker(SectionRules),
		"# Rules",
		"",
		"> Source: `docs/rules/rules.json`",
		"```json",
		rulesPretty,
		"```",
	)
	if boundariesPretty != "" {
		parts = append(parts,
			"",
			"## Boundaries",
			"> Source: `docs/rules/boundaries.json`",
			"```json",
			boundariesPretty,
			"```",
		)
	}
	parts = append(parts, closeMarker(SectionRules), "")

	if len(adr) > 0 {
		parts = append(parts, openMarker(SectionADR), "# ADR", "")
		parts = append(parts, blobSection("ADR", adr, profileRoot)...)
		parts = append(parts, closeMarker(SectionADR), "")
	}

	doc := strings.Join(parts, "\n")
	baseHash := sha1Hex(doc)

	var omitted []string
	if opts.MaxApproxTokens > 0 {
		if tokens := ApproxTokens(doc); tokens > opts.MaxApproxTokens {
			if out, ok := replaceSection(doc, SectionADR, "# ADR", tokenPlaceholder); ok {
				doc = out
				omitted = append(omitted, SectionADR)
				log.Info("context over token budget, ADR omitted", "tokens", tokens, "max", opts.MaxApproxTokens)
			}
		}
	}

	if len(doc) > maxBytes {
		size := len(doc)
		if out, ok := replaceSection(doc, SectionHandbook, "# Handbook", bytesPlaceholder); ok {
			doc = out
			omitted = append(omitted, SectionHandbook)
		}
		if out, ok := replaceSection(doc, SectionADR, "# ADR", bytesPlaceholder); ok {
			doc = out
			if !slices.Contains(omitted, SectionADR) {
				omitted = append(omitted, SectionADR)
			}
		}
		log.Info("context over byte budget, handbook omitted", "bytes", size, "max", maxBytes)
	}

	finalHash := sha1Hex(doc)
	doc += checksumFooter(baseHash, finalHash)

	return Result{
		Markdown:     doc,
		Bytes:        len(doc),
		ApproxTokens: ApproxTokens(doc),
		BaseHash:     baseHash,
		FinalHash:    finalHash,
		Sections: Sections{
			Handbook:      len(handbook),
			ADR:           len(adr),
			HasBoundaries: boundariesPretty != "",
		},
		Omitted: omitted,
	}, nil
}

// ApproxTokens counts whitespace-delimited words.
func ApproxTokens(s string) int {
	return len(strings.Fields(s))
}

// normalize strips a leading BOM, converts line endings to \n, trims
// trailing blanks from every line and applies Unicode NFC.
func normalize(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return norm.NFC.String(strings.Join(lines, "\n"))
}

func readBlobs(dir string, log hclog.Logger, label string) ([]blob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("optional context directory missing", "section", label, "path", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", label, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]blob, 0, len(names))
	for _, n := range names {
		p := filepath.Join(dir, n)
		data, err := os.ReadFile(p)
		if err != nil {
			log.Warn("skipping unreadable document", "path", p, "error", err)
			continue
		}
		content := normalize(string(data))
		if content == "" {
			continue
		}
		out = append(out, blob{path: p, content: content})
	}
	return out, nil
}

func blobSection(label string, blobs []blob, root string) []string {
	if len(blobs) == 0 {
		return nil
	}
	parts := []string{"### " + label + " TOC", ""}
	for _, b := range blobs {
		parts = append(parts, "- "+relPath(root, b.path))
	}
	parts = append(parts, "")
	for _, b := range blobs {
		parts = append(parts, "## "+filepath.Base(b.path), "", b.content, "", "---", "")
	}
	return parts
}

func relPath(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func paths(blobs []blob) []string {
	out := make([]string, len(blobs))
	for i, b := range blobs {
		out[i] = b.path
	}
	return out
}

func openMarker(name string) string  { return "<!-- AI_REVIEW:SECTION:" + name + " -->" }
func closeMarker(name string) string { return "<!-- AI_REVIEW:SECTION:" + name + ":END -->" }

// replaceSection swaps everything between the markers of name for a heading
// and placeholder. It reports false when the section is absent.
func replaceSection(doc, name, heading, placeholder string) (string, bool) {
	open, end := openMarker(name), closeMarker(name)
	i := strings.Index(doc, open)
	if i < 0 {
		return doc, false
	}
	j := strings.Index(doc[i:], end)
	if j < 0 {
		return doc, false
	}
	j += i + len(end)
	body := strings.Join([]string{open, heading, "", placeholder, end}, "\n")
	return doc[:i] + body + doc[j:], true
}

// ExtractSection returns the text between the markers of name.
func ExtractSection(doc, name string) (string, bool) {
	open, end := openMarker(name), closeMarker(name)
	i := strings.Index(doc, open)
	if i < 0 {
		return "", false
	}
	rest := doc[i+len(open):]
	j := strings.Index(rest, end)
	if j < 0 {
		return "", false
	}
	return strings.Trim(rest[:j], "\n"), true
}

func checksumFooter(base, final string) string {
	sums, _ := json.MarshalIndent(struct {
		BaseHash  string `json:"baseHash"`
		FinalHash string `json:"finalHash"`
	}{base, final}, "", "  ")
	return "\n---\n## Checksums\n```json\n" + string(sums) + "\n```\n"
}

func prettyJSON(raw string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(raw)), "", "  "); err != nil {
		return raw
	}
	return buf.String()
}

func sha1Hex(s string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(s)))
}
