package github

import (
	"fmt"
	"strings"

	"github.com/dshills/sentinel/internal/output"
	"github.com/dshills/sentinel/internal/review"
)

// ReviewComment represents an inline comment on a PR review.
type ReviewComment struct {
	Path string
	Line int
	Body string
}

// ReviewRequest represents a PR review to post.
type ReviewRequest struct {
	Body     string
	Event    string
	Comments []ReviewComment
}

// BuildGitHubReview converts findings into a PR review. Findings on a file in
// diffFiles with a line locator become inline comments, most severe first,
// up to maxComments (0 means no limit). Everything else is listed in the
// summary body.
func BuildGitHubReview(findings []review.Finding, diffFiles map[string]bool, maxComments int) ReviewRequest {
	counts := review.Summarize(findings).FindingsBySeverity
	var bodyItems []string
	var comments []ReviewComment

	for _, f := range review.SortBySeverity(findings) {
		line := output.LocatorLine(f.Locator)
		inline := f.File != "" && diffFiles[f.File] && line > 0
		if inline && (maxComments <= 0 || len(comments) < maxComments) {
			comments = append(comments, ReviewComment{
				Path: f.File,
				Line: line,
				Body: formatInlineComment(f),
			})
			continue
		}
		bodyItems = append(bodyItems, formatFindingBody(f))
	}

	var sb strings.Builder
	sb.WriteString("## Sentinel Review\n\n")
	sb.WriteString("| Severity | Count |\n|----------|-------|\n")
	for _, s := range review.Severities {
		fmt.Fprintf(&sb, "| %s %s | %d |\n", s.Icon(), s.Title(), counts.Get(s))
	}
	sb.WriteString("\n")

	if len(bodyItems) > 0 {
		sb.WriteString("### General Findings\n\n")
		for _, item := range bodyItems {
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}

	return ReviewRequest{
		Body:     sb.String(),
		Event:    "COMMENT",
		Comments: comments,
	}
}

func formatInlineComment(f review.Finding) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s **%s** (%s", f.Severity.Icon(), f.Rule, f.Severity)
	if f.Area != "" {
		fmt.Fprintf(&sb, ", %s", f.Area)
	}
	sb.WriteString(")\n\n")
	sb.WriteString(strings.Join(f.Finding, "\n"))
	if f.Why != "" {
		fmt.Fprintf(&sb, "\n\n_Why:_ %s", f.Why)
	}
	if f.Suggestion != "" {
		fmt.Fprintf(&sb, "\n\n**Suggestion:** %s", f.Suggestion)
	}
	return sb.String()
}

func formatFindingBody(f review.Finding) string {
	loc := f.File
	if loc == "" {
		loc = "—"
	} else if f.Locator != "" {
		loc += " " + f.Locator
	}
	s := fmt.Sprintf("- **%s** (%s) `%s`: %s", f.Rule, f.Severity, loc, f.Headline())
	if f.Suggestion != "" {
		s += " _Suggestion: " + f.Suggestion + "_"
	}
	return s
}
