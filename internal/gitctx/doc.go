// Package gitctx collects unified diffs for review.
//
// Working-tree modes (unstaged, staged) shell out to git. Commit and range
// modes read the object database through go-git, and a diff may also come
// from a file or stdin. Results are filtered by include/exclude globs and
// truncated to a configurable maximum byte size.
package gitctx
