package unidiff

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// AddedLine is a line introduced by a diff, numbered in the new file.
type AddedLine struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Hunk is one @@ block of a file diff. Added holds only the added lines that
// fall inside the hunk's new-file range.
type Hunk struct {
	OldStart int         `json:"oldStart"`
	OldLines int         `json:"oldLines"`
	NewStart int         `json:"newStart"`
	NewLines int         `json:"newLines"`
	Header   string      `json:"header"`
	Added    []AddedLine `json:"added"`
}

// FileDiff groups the hunks of a single destination file.
type FileDiff struct {
	FilePath string `json:"filePath"`
	Hunks    []Hunk `json:"hunks"`
}

// Locator returns the hunk-scoped locator, e.g. "HUNK:@@ -1,3 +1,4 @@".
func (h Hunk) Locator() string {
	return fmt.Sprintf("HUNK:@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
}

// Contains reports whether a new-file line number lies in the hunk's range.
// A hunk with no new lines covers only its start line.
func (h Hunk) Contains(line int) bool {
	if h.NewLines <= 0 {
		return line == h.NewStart
	}
	return line >= h.NewStart && line < h.NewStart+h.NewLines
}

// LineLocator returns the line-scoped locator, e.g. "L12".
func LineLocator(line int) string {
	return "L" + strconv.Itoa(line)
}

// AddedLines flattens the added lines of every hunk in file order.
func (f FileDiff) AddedLines() []AddedLine {
	var out []AddedLine
	for _, h := range f.Hunks {
		out = append(out, h.Added...)
	}
	return out
}

// rawHunk is a parsed header before added lines are attached.
type rawHunk struct {
	oldStart, oldLines int
	newStart, newLines int
	header             string
}

type rawFile struct {
	path  string
	hunks []rawHunk
	added map[int]string
}

// Parse converts unified diff text into FileDiffs in diff order. It never
// fails: malformed hunks are dropped and an unparseable diff yields nil.
func Parse(text string) []FileDiff {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw, err := parseStrict(text)
	if err != nil {
		raw = parseLenient(text)
	}
	return build(raw)
}

func parseStrict(text string) ([]rawFile, error) {
	parsed, err := diff.ParseMultiFileDiff([]byte(text))
	if err != nil {
		return nil, err
	}
	var files []rawFile
	for _, fd := range parsed {
		if fd == nil {
			continue
		}
		path := destPath(fd.NewName)
		if path == "" {
			continue
		}
		rf := rawFile{path: path, added: make(map[int]string)}
		for _, h := range fd.Hunks {
			if h == nil {
				continue
			}
			rh := rawHunk{
				oldStart: int(h.OrigStartLine),
				oldLines: int(h.OrigLines),
				newStart: int(h.NewStartLine),
				newLines: int(h.NewLines),
			}
			rh.header = formatHeader(rh, h.Section)
			rf.hunks = append(rf.hunks, rh)

			lineNo := rh.newStart
			if lineNo <= 0 {
				lineNo = 1
			}
			oldLeft, newLeft := rh.oldLines, rh.newLines
			for _, bodyLine := range bytes.Split(h.Body, []byte("\n")) {
				if oldLeft <= 0 && newLeft <= 0 {
					break
				}
				if len(bodyLine) == 0 {
					// Blank context line written without its leading space.
					lineNo++
					oldLeft--
					newLeft--
					continue
				}
				switch bodyLine[0] {
				case '+':
					rf.added[lineNo] = string(bodyLine[1:])
					lineNo++
					newLeft--
				case '-':
					oldLeft--
				case '\\':
				default:
					lineNo++
					oldLeft--
					newLeft--
				}
			}
		}
		files = append(files, rf)
	}
	return files, nil
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(.*)$`)

// parseLenient walks the diff line by line. A header that does not match
// hunkHeaderRe ends the current hunk and its body lines are ignored until
// the next valid header or file boundary.
func parseLenient(text string) []rawFile {
	var (
		files          []rawFile
		cur            *rawFile
		inHunk         bool
		lineNo         int
		oldLeft, nLeft int
	)
	flush := func() {
		if cur != nil && cur.path != "" {
			files = append(files, *cur)
		}
		cur = nil
		inHunk = false
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if inHunk && oldLeft <= 0 && nLeft <= 0 {
			inHunk = false
		}
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flush()
		case !inHunk && strings.HasPrefix(line, "--- "):
		case !inHunk && strings.HasPrefix(line, "+++ "):
			flush()
			cur = &rawFile{path: destPath(strings.TrimPrefix(line, "+++ ")), added: make(map[int]string)}
		case strings.HasPrefix(line, "@@"):
			inHunk = false
			if cur == nil {
				continue
			}
			m := hunkHeaderRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			rh := rawHunk{
				oldStart: atoi(m[1]),
				oldLines: atoi(m[2]),
				newStart: atoi(m[3]),
				newLines: atoi(m[4]),
			}
			rh.header = formatHeader(rh, strings.TrimSpace(m[5]))
			cur.hunks = append(cur.hunks, rh)
			oldLeft, nLeft = bodyCount(m[2]), bodyCount(m[4])
			inHunk = true
			lineNo = rh.newStart
			if lineNo <= 0 {
				lineNo = 1
			}
		case inHunk && cur != nil:
			if line == "" {
				lineNo++
				oldLeft--
				nLeft--
				continue
			}
			switch line[0] {
			case '+':
				cur.added[lineNo] = line[1:]
				lineNo++
				nLeft--
			case '-':
				oldLeft--
			case '\\':
			default:
				lineNo++
				oldLeft--
				nLeft--
			}
		}
	}
	flush()
	return files
}

// bodyCount is the number of body lines a header count promises; an omitted
// count means one line.
func bodyCount(s string) int {
	if s == "" {
		return 1
	}
	return atoi(s)
}

// build attaches each file's added lines to the hunks whose range holds them.
func build(raw []rawFile) []FileDiff {
	out := make([]FileDiff, 0, len(raw))
	for _, rf := range raw {
		lines := make([]int, 0, len(rf.added))
		for n := range rf.added {
			lines = append(lines, n)
		}
		sort.Ints(lines)

		fd := FileDiff{FilePath: rf.path, Hunks: make([]Hunk, 0, len(rf.hunks))}
		for _, rh := range rf.hunks {
			h := Hunk{
				OldStart: rh.oldStart,
				OldLines: rh.oldLines,
				NewStart: rh.newStart,
				NewLines: rh.newLines,
				Header:   rh.header,
				Added:    []AddedLine{},
			}
			for _, n := range lines {
				if h.Contains(n) {
					h.Added = append(h.Added, AddedLine{Line: n, Text: rf.added[n]})
				}
			}
			fd.Hunks = append(fd.Hunks, h)
		}
		out = append(out, fd)
	}
	return out
}

// destPath strips the b/ prefix and any trailing timestamp from a +++ name.
// Deleted files (/dev/null) have no destination and return "".
func destPath(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '\t'); i >= 0 {
		name = name[:i]
	}
	if name == "/dev/null" || name == "" {
		return ""
	}
	return strings.TrimPrefix(name, "b/")
}

func formatHeader(h rawHunk, section string) string {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldLines, h.newStart, h.newLines)
	if section != "" {
		header += " " + section
	}
	return header
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
