// Package cli wires together the Cobra command tree for the sentinel binary.
//
// It defines the root command and all subcommands (review, context, render,
// rules, config, hook, github, version), binds flags, reads configuration,
// runs the review pipeline, and returns deterministic exit codes for CI
// gating.
package cli
