// Package rules defines the rule catalog and boundary catalog a review is
// evaluated against, and loads them from JSON or YAML profile documents.
//
// A nil *Catalog is a valid, empty catalog: every accessor is nil-safe, so
// callers never probe whether a catalog was supplied. Built-in pattern rules
// (TODO comments, hardcoded secrets) are always available through Builtins
// and are overridden by catalog entries with the same id.
//
// Validate checks a loaded catalog for duplicate ids, unknown severities,
// bad trigger expressions and unparseable boundary globs.
package rules
