package rules

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Trigger selects the added lines a rule fires on. Signals use the forms
// "added-line:<literal>", "added-line-regex:<expr>" and "added-line-secret".
// Type "pattern" reports each matching line; "hunk-pattern" reports once
// per hunk.
type Trigger struct {
	Type    string   `json:"type" yaml:"type"`
	Signals []string `json:"signals,omitempty" yaml:"signals,omitempty"`
}

// IsPattern reports whether the trigger can be evaluated against added lines.
func (t Trigger) IsPattern() bool {
	return (t.Type == "" || t.Type == "pattern" || t.Type == "hunk-pattern") && len(t.Signals) > 0
}

// HunkScoped reports whether matches are reported once per hunk.
func (t Trigger) HunkScoped() bool {
	return t.Type == "hunk-pattern"
}

// Examples holds illustrative bad and good snippets for a rule.
type Examples struct {
	Bad  StringList `json:"bad,omitempty" yaml:"bad,omitempty"`
	Good StringList `json:"good,omitempty" yaml:"good,omitempty"`
}

// RuleItem is one entry of a profile's rules.json.
type RuleItem struct {
	ID          string     `json:"id" yaml:"id" validate:"required"`
	Area        string     `json:"area,omitempty" yaml:"area,omitempty"`
	Severity    string     `json:"severity" yaml:"severity" validate:"required"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Link        string     `json:"link,omitempty" yaml:"link,omitempty" validate:"omitempty,url"`
	Examples    *Examples  `json:"examples,omitempty" yaml:"examples,omitempty"`
	Scope       []string   `json:"scope,omitempty" yaml:"scope,omitempty"`
	Trigger     Trigger    `json:"trigger" yaml:"trigger"`
	Status      string     `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=active draft deprecated disabled"`
	Version     FlexString `json:"version,omitempty" yaml:"version,omitempty"`
}

// Active reports whether the rule participates in matching. An empty status
// counts as active.
func (r RuleItem) Active() bool {
	return r.Status == "" || r.Status == "active"
}

// Glob wraps a single glob pattern, matching the {"glob": "..."} shape.
type Glob struct {
	Glob string `json:"glob" yaml:"glob" validate:"required"`
}

// BoundaryRule forbids imports from files matching From to specifiers
// matching To, unless the specifier matches one of AllowVia.
type BoundaryRule struct {
	Rule     string   `json:"rule" yaml:"rule" validate:"required"`
	From     Glob     `json:"from" yaml:"from"`
	To       Glob     `json:"to" yaml:"to"`
	AllowVia []string `json:"allowVia,omitempty" yaml:"allowVia,omitempty"`
	Explain  string   `json:"explain,omitempty" yaml:"explain,omitempty"`
}

// Layer names an architectural layer. Layers are carried through to the
// context document but do not participate in matching.
type Layer struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Index int    `json:"index" yaml:"index"`
}

// Boundaries is the boundary catalog (boundaries.json).
type Boundaries struct {
	Layers    []Layer        `json:"layers,omitempty" yaml:"layers,omitempty"`
	Forbidden []BoundaryRule `json:"forbidden" yaml:"forbidden" validate:"dive"`
}

// Len returns the number of forbidden rules; nil-safe.
func (b *Boundaries) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Forbidden)
}

// FlexString accepts either a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// StringList accepts a single string or a list of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = StringList{s}
	return nil
}

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*l = StringList{value.Value}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}
