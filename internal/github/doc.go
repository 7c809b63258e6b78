// Package github fetches pull-request diffs and posts sentinel findings as
// pull-request reviews through the GitHub REST API.
//
// The client authenticates with the GITHUB_TOKEN environment variable and
// honors GITHUB_API_URL for GitHub Enterprise. Findings that land on a
// changed line become inline comments; the rest are listed in the review
// body under a severity summary table.
package github
