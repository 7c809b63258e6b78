// Package unidiff parses unified diff text into per-file hunks with the
// added lines each hunk contributes, numbered in new-file coordinates.
//
// Well-formed diffs are parsed with sourcegraph/go-diff. When that parser
// rejects the input (a corrupt hunk header, a truncated body) the package
// falls back to a line scanner that skips the bad hunk and keeps the rest,
// so one damaged section never hides findings elsewhere in the diff.
package unidiff
