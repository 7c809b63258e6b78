// Sentinel is a local-first CLI that checks code changes against a
// profile's rule catalog and module boundaries.
//
// It reviews unstaged, staged, commit, range and raw unified diffs, writes
// deterministic review artifacts (JSON, transport Markdown, human Markdown,
// HTML) and exits with codes suitable for CI gating and git hooks.
//
// Usage:
//
//	sentinel review unstaged                 # review working tree changes
//	sentinel review staged                   # review staged changes
//	sentinel review commit <rev>             # review a specific commit
//	sentinel review range origin/main..HEAD  # review a revision range
//	sentinel review diff change.patch        # review a patch file (or stdin)
//	sentinel context build --profile web     # assemble the context document
//	sentinel render .sentinel/reviews/<id>/review.json --pretty
//	sentinel github 42                       # review a pull request
package main
