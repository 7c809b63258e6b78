package redact

import (
	"github.com/bmatcuk/doublestar/v4"
)

const placeholder = "[REDACTED]"

// Placeholder is the text substituted for redacted content.
const Placeholder = placeholder

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// ContainsSecret reports whether any secret heuristic matches text.
func ContainsSecret(text string) bool {
	for _, pat := range secretPatterns {
		if pat.MatchString(text) {
			return true
		}
	}
	return false
}

// ShouldRedactPath checks if a file path matches any of the redaction path
// patterns.
func ShouldRedactPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// Lines redacts each line, or replaces all of them when path matches
// redactPaths. The input slice is not modified.
func Lines(lines []string, path string, redactPaths []string) []string {
	out := make([]string, len(lines))
	whole := path != "" && ShouldRedactPath(path, redactPaths)
	for i, l := range lines {
		if whole {
			out[i] = placeholder + " (redacted by path policy)"
			continue
		}
		out[i] = Secrets(l)
	}
	return out
}
