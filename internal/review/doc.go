// Package review turns a unified diff into findings and reduces them to a
// summary.
//
// Analyze evaluates every added line against the effective pattern rules of
// a rules.Catalog (plus built-ins) and against a rules.Boundaries catalog of
// forbidden import directions. Raw matches become Findings through
// ToFinding, which merges rule metadata and stamps a deterministic
// fingerprint over (rule, file, locator, headline).
//
// Summarize counts findings per severity, picks the top severity and scores
// risk from fixed weights. Cap keeps the k most severe findings in stable
// order; Run.WithCap applies it to a copy of a Run and recomputes the
// summary from what was kept.
//
// Severity is a closed set: critical, major, minor, info. Strings from
// catalogs or providers pass through ParseSeverity, which applies alias
// maps and normalizes anything unknown to info.
//
// Exit-code policies (threshold and legacy) are provided for callers; the
// package itself never decides a process exit status.
package review
