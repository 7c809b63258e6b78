package review

import (
	"errors"
	"fmt"
	"strings"
)

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityInfo     Severity = "info"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo}

// ErrUnknownSeverity is returned by ParseSeverity for unrecognized input.
var ErrUnknownSeverity = errors.New("unknown severity")

// SeverityRank returns a numeric rank for sorting (higher = more severe).
// Unknown values rank below info.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityMajor:
		return 2
	case SeverityMinor:
		return 1
	case SeverityInfo:
		return 0
	default:
		return -1
	}
}

// Valid reports whether s is one of the four canonical severities.
func (s Severity) Valid() bool {
	return SeverityRank(s) >= 0
}

// Title returns the display name used in headings.
func (s Severity) Title() string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityMajor:
		return "Major"
	case SeverityMinor:
		return "Minor"
	case SeverityInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Icon returns the emoji shown beside a severity heading.
func (s Severity) Icon() string {
	switch s {
	case SeverityCritical:
		return "🛑"
	case SeverityMajor:
		return "⚠️"
	case SeverityMinor:
		return "🔧"
	case SeverityInfo:
		return "ℹ️"
	default:
		return "❔"
	}
}

// defaultAliases maps common severity vocabularies onto the canonical set.
var defaultAliases = map[string]Severity{
	"blocker": SeverityCritical,
	"fatal":   SeverityCritical,
	"high":    SeverityMajor,
	"error":   SeverityMajor,
	"medium":  SeverityMinor,
	"warning": SeverityMinor,
	"warn":    SeverityMinor,
	"low":     SeverityInfo,
	"note":    SeverityInfo,
}

// ParseSeverity normalizes s to a canonical severity. Caller aliases are
// consulted before the built-in ones. Unknown input yields SeverityInfo
// together with ErrUnknownSeverity so callers may choose to ignore it.
func ParseSeverity(s string, aliases map[string]string) (Severity, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if sev := Severity(key); sev.Valid() {
		return sev, nil
	}
	if v, ok := aliases[key]; ok {
		if sev := Severity(strings.ToLower(v)); sev.Valid() {
			return sev, nil
		}
	}
	if sev, ok := defaultAliases[key]; ok {
		return sev, nil
	}
	return SeverityInfo, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
}

// IsKnownSeverity reports whether ParseSeverity accepts s without error.
func IsKnownSeverity(s string, aliases map[string]string) bool {
	_, err := ParseSeverity(s, aliases)
	return err == nil
}

// MeetsThreshold returns true if severity is at or above the threshold.
// A threshold of "none" or "" never matches.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	t, err := ParseSeverity(threshold, nil)
	if err != nil {
		return false
	}
	return SeverityRank(s) >= SeverityRank(t)
}

// Finding is a single reported rule violation.
type Finding struct {
	Rule        string   `json:"rule"`
	Severity    Severity `json:"severity"`
	Area        string   `json:"area,omitempty"`
	File        string   `json:"file,omitempty"`
	Locator     string   `json:"locator,omitempty"`
	Finding     []string `json:"finding"`
	Why         string   `json:"why,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Signals     []string `json:"signals,omitempty"`
}

// Headline returns the canonical first summary line.
func (f Finding) Headline() string {
	if len(f.Finding) == 0 {
		return ""
	}
	return f.Finding[0]
}
