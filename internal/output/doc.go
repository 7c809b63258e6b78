// Package output renders review runs.
//
// The canonical form of a run is its pretty-printed JSON (MarshalRun). Every
// other format is a view derived from it:
//   - transport — the canonical JSON fenced between AI_REVIEW:DUAL:JSON
//     markers, recoverable byte for byte with ExtractJSON
//   - markdown — human Markdown grouped by severity, then area and file,
//     with an optional {{field}} line template
//   - html     — a dependency-free Markdown to HTML transform of the human
//     Markdown; all text is escaped before links and code spans are added
//   - sarif    — SARIF v2.1.0 for code-scanning upload
//   - text     — colored terminal summary (default)
//
// Use [GetWriter] to obtain a [Writer] for a format string. [WriteArtifacts]
// writes the on-disk artifact set of a run, each file atomically.
package output
