package review

import "sort"

// Risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// SeverityCounts holds a count for every severity, zero when absent.
type SeverityCounts struct {
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Info     int `json:"info"`
}

// Get returns the count for s.
func (c SeverityCounts) Get(s Severity) int {
	switch s {
	case SeverityCritical:
		return c.Critical
	case SeverityMajor:
		return c.Major
	case SeverityMinor:
		return c.Minor
	case SeverityInfo:
		return c.Info
	}
	return 0
}

func (c *SeverityCounts) add(s Severity) {
	switch s {
	case SeverityCritical:
		c.Critical++
	case SeverityMajor:
		c.Major++
	case SeverityMinor:
		c.Minor++
	default:
		c.Info++
	}
}

// RiskWeights is the per-severity contribution to the risk score.
type RiskWeights struct {
	Critical float64 `json:"critical"`
	Major    float64 `json:"major"`
	Minor    float64 `json:"minor"`
	Info     float64 `json:"info"`
}

// RiskModel pairs weights with level thresholds. Thresholds are inclusive
// lower bounds for the medium and high levels.
type RiskModel struct {
	Weights  RiskWeights
	MediumAt float64
	HighAt   float64
}

// DefaultRiskModel is used by Summarize.
var DefaultRiskModel = RiskModel{
	Weights:  RiskWeights{Critical: 40, Major: 15, Minor: 5, Info: 1},
	MediumAt: 30,
	HighAt:   70,
}

// RiskDetail records the weights a score was computed with.
type RiskDetail struct {
	Weights RiskWeights `json:"weights"`
}

// Risk is a bounded weighted score of severity counts.
type Risk struct {
	Score  float64     `json:"score"`
	Level  string      `json:"level"`
	Detail *RiskDetail `json:"detail,omitempty"`
}

// Summary aggregates a finding list.
type Summary struct {
	FindingsTotal      int            `json:"findingsTotal"`
	FindingsBySeverity SeverityCounts `json:"findingsBySeverity"`
	TopSeverity        *Severity      `json:"topSeverity"`
	Risk               *Risk          `json:"risk,omitempty"`
}

// Summarize aggregates findings with DefaultRiskModel.
func Summarize(findings []Finding) Summary {
	return SummarizeWith(findings, DefaultRiskModel)
}

// SummarizeWith aggregates findings using m for the risk score.
func SummarizeWith(findings []Finding, m RiskModel) Summary {
	var counts SeverityCounts
	var top *Severity
	for _, f := range findings {
		counts.add(f.Severity)
		if top == nil || SeverityRank(f.Severity) > SeverityRank(*top) {
			s := f.Severity
			top = &s
		}
	}
	return Summary{
		FindingsTotal:      len(findings),
		FindingsBySeverity: counts,
		TopSeverity:        top,
		Risk:               ScoreRisk(counts, m),
	}
}

// ScoreRisk computes a score clamped to [0,100] and buckets it.
func ScoreRisk(c SeverityCounts, m RiskModel) *Risk {
	w := m.Weights
	score := float64(c.Critical)*w.Critical +
		float64(c.Major)*w.Major +
		float64(c.Minor)*w.Minor +
		float64(c.Info)*w.Info
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	level := RiskLow
	switch {
	case score >= m.HighAt:
		level = RiskHigh
	case score >= m.MediumAt:
		level = RiskMedium
	}
	return &Risk{
		Score:  score,
		Level:  level,
		Detail: &RiskDetail{Weights: w},
	}
}

// Cap returns at most k findings, most severe first. Ties keep their
// original relative order. The input slice is not modified.
func Cap(findings []Finding, k int) []Finding {
	if k < 0 {
		k = 0
	}
	sorted := SortBySeverity(findings)
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// SortBySeverity returns a stably sorted copy, most severe first.
func SortBySeverity(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		return SeverityRank(out[i].Severity) > SeverityRank(out[j].Severity)
	})
	return out
}
