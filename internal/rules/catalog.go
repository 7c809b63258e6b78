package rules

// Catalog is the parsed rules.json document.
type Catalog struct {
	Version  FlexString     `json:"version,omitempty" yaml:"version,omitempty"`
	Domain   string         `json:"domain,omitempty" yaml:"domain,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Rules    []RuleItem     `json:"rules" yaml:"rules" validate:"dive"`
}

// Len returns the number of rules; nil-safe.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Rules)
}

// Lookup returns the rule with the given id. The first entry wins when ids
// are duplicated.
func (c *Catalog) Lookup(id string) (RuleItem, bool) {
	if c == nil {
		return RuleItem{}, false
	}
	for _, r := range c.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return RuleItem{}, false
}

// Effective returns the rules to evaluate against added lines, in order:
// active catalog rules first, then built-ins the catalog does not mention.
// A catalog entry without a pattern trigger borrows the built-in trigger of
// the same id.
func (c *Catalog) Effective(withBuiltins bool) []RuleItem {
	var out []RuleItem
	seen := make(map[string]bool)
	if c != nil {
		for _, r := range c.Rules {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			if !r.Active() {
				continue
			}
			if !r.Trigger.IsPattern() && withBuiltins {
				if b, ok := builtinByID(r.ID); ok {
					r.Trigger = b.Trigger
				}
			}
			if r.Trigger.IsPattern() {
				out = append(out, r)
			}
		}
	}
	if withBuiltins {
		for _, b := range Builtins() {
			if !seen[b.ID] {
				out = append(out, b)
			}
		}
	}
	return out
}

const (
	RuleNoTodo          = "style.no-todo-comment"
	RuleHardcodedSecret = "security.hardcoded-secret"
	RuleModularBoundary = "arch.modular-boundaries"
)

// Builtins returns the default pattern rules evaluated even without a
// catalog.
func Builtins() []RuleItem {
	return []RuleItem{
		{
			ID:          RuleNoTodo,
			Area:        "DX",
			Severity:    "minor",
			Description: "Inline TODOs get stale and hide tech debt.",
			Trigger:     Trigger{Type: "pattern", Signals: []string{`added-line-regex:\bTODO\b`}},
			Status:      "active",
			Version:     "1",
		},
		{
			ID:          RuleHardcodedSecret,
			Area:        "Security",
			Severity:    "major",
			Description: "Credentials committed to source control leak to everyone with read access.",
			Trigger:     Trigger{Type: "pattern", Signals: []string{"added-line-secret"}},
			Status:      "active",
			Version:     "1",
		},
	}
}

func builtinByID(id string) (RuleItem, bool) {
	for _, b := range Builtins() {
		if b.ID == id {
			return b, true
		}
	}
	return RuleItem{}, false
}
