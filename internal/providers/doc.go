// Package providers implements the Reviewer interface behind which a review
// run is produced.
//
// The local provider runs the rule engine over the diff. The mock provider
// returns fixed findings for TODO markers and internal imports, which is
// handy for exercising the artifact pipeline end to end.
//
// Use [New] to obtain a Reviewer by name.
package providers
