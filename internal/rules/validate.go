package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
)

// Problem is one validation failure, located by a JSON-pointer-like path.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %s", p.Path, p.Message)
}

var validate = validator.New()

// Validate checks a catalog and boundary set. knownSeverity decides whether
// a rule's severity string is acceptable; a nil func accepts anything.
func Validate(c *Catalog, b *Boundaries, knownSeverity func(string) bool) []Problem {
	var problems []Problem

	if c != nil {
		problems = append(problems, structProblems(c)...)
		seen := make(map[string]int)
		for i, r := range c.Rules {
			path := fmt.Sprintf("/rules/%d", i)
			if prev, ok := seen[r.ID]; ok && r.ID != "" {
				problems = append(problems, Problem{path + "/id", fmt.Sprintf("duplicates /rules/%d", prev)})
			} else {
				seen[r.ID] = i
			}
			if knownSeverity != nil && r.Severity != "" && !knownSeverity(r.Severity) {
				problems = append(problems, Problem{path + "/severity", fmt.Sprintf("unknown severity %q", r.Severity)})
			}
			for j, sig := range r.Trigger.Signals {
				if err := CheckSignal(sig); err != nil {
					problems = append(problems, Problem{fmt.Sprintf("%s/trigger/signals/%d", path, j), err.Error()})
				}
			}
		}
	}

	if b != nil {
		problems = append(problems, structProblems(b)...)
		for i, r := range b.Forbidden {
			path := fmt.Sprintf("/forbidden/%d", i)
			if r.From.Glob != "" && !doublestar.ValidatePattern(r.From.Glob) {
				problems = append(problems, Problem{path + "/from", fmt.Sprintf("invalid glob %q", r.From.Glob)})
			}
			if r.To.Glob != "" && !doublestar.ValidatePattern(r.To.Glob) {
				problems = append(problems, Problem{path + "/to", fmt.Sprintf("invalid glob %q", r.To.Glob)})
			}
			for j, g := range r.AllowVia {
				if !doublestar.ValidatePattern(g) {
					problems = append(problems, Problem{fmt.Sprintf("%s/allowVia/%d", path, j), fmt.Sprintf("invalid glob %q", g)})
				}
			}
		}
	}
	return problems
}

// CheckSignal reports whether a trigger signal is well formed.
func CheckSignal(sig string) error {
	switch {
	case sig == "added-line-secret":
		return nil
	case strings.HasPrefix(sig, "added-line-regex:"):
		if _, err := regexp.Compile(strings.TrimPrefix(sig, "added-line-regex:")); err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		return nil
	case strings.HasPrefix(sig, "added-line:"):
		if strings.TrimPrefix(sig, "added-line:") == "" {
			return errors.New("empty literal")
		}
		return nil
	default:
		return fmt.Errorf("unknown signal %q", sig)
	}
}

func structProblems(v any) []Problem {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Problem{{"/", err.Error()}}
	}
	problems := make([]Problem, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, Problem{
			Path:    "/" + fieldPath(fe.Namespace()),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		})
	}
	return problems
}

// fieldPath turns "Catalog.Rules[0].ID" into "Rules[0].ID".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
