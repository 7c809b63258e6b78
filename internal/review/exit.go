package review

import "fmt"

// Legacy exit codes.
const (
	LegacyExitMajor    = 10
	LegacyExitCritical = 20
)

// ExitPolicy maps a run summary to a process exit code.
type ExitPolicy interface {
	ExitCode(s Summary) int
}

// ThresholdPolicy exits 1 when the top severity meets FailOn.
type ThresholdPolicy struct {
	FailOn string
}

// ExitCode implements ExitPolicy.
func (p ThresholdPolicy) ExitCode(s Summary) int {
	if s.TopSeverity == nil {
		return 0
	}
	if MeetsThreshold(*s.TopSeverity, p.FailOn) {
		return 1
	}
	return 0
}

// LegacyPolicy exits 20 for critical and 10 for major findings.
type LegacyPolicy struct{}

// ExitCode implements ExitPolicy.
func (LegacyPolicy) ExitCode(s Summary) int {
	if s.TopSeverity == nil {
		return 0
	}
	switch *s.TopSeverity {
	case SeverityCritical:
		return LegacyExitCritical
	case SeverityMajor:
		return LegacyExitMajor
	}
	return 0
}

// NewExitPolicy returns the policy registered under name.
func NewExitPolicy(name, failOn string) (ExitPolicy, error) {
	switch name {
	case "", "threshold":
		return ThresholdPolicy{FailOn: failOn}, nil
	case "legacy":
		return LegacyPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown exit policy %q (supported: threshold, legacy)", name)
	}
}
