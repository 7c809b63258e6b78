package contextdoc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout holds the document locations inside a profile root.
type Layout struct {
	Root        string
	HandbookDir string
	RulesFile   string
	Boundaries  string
	ADRDir      string
}

// LayoutFor returns the standard layout under root.
func LayoutFor(root string) Layout {
	docs := filepath.Join(root, "docs")
	return Layout{
		Root:        root,
		HandbookDir: filepath.Join(docs, "handbook"),
		RulesFile:   filepath.Join(docs, "rules", "rules.json"),
		Boundaries:  filepath.Join(docs, "rules", "boundaries.json"),
		ADRDir:      filepath.Join(docs, "adr"),
	}
}

// ResolveProfileRoot locates the directory of profile. A profile that looks
// like a path is used as is (relative to repoRoot). Otherwise profilesDir is
// tried first, then <repoRoot>/profiles and <repoRoot>/packages/profiles.
func ResolveProfileRoot(repoRoot, profile, profilesDir string) (string, error) {
	if strings.Contains(profile, "/") || strings.HasPrefix(profile, ".") || filepath.IsAbs(profile) {
		abs := profile
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(repoRoot, profile)
		}
		if !exists(abs) {
			return "", fmt.Errorf("profile path not found: %s", abs)
		}
		return abs, nil
	}

	if profilesDir != "" {
		base := profilesDir
		if !filepath.IsAbs(base) {
			base = filepath.Join(repoRoot, base)
		}
		if candidate := filepath.Join(base, profile); exists(candidate) {
			return candidate, nil
		}
	}

	candidates := []string{
		filepath.Join(repoRoot, "profiles", profile),
		filepath.Join(repoRoot, "packages", "profiles", profile),
	}
	for _, c := range candidates {
		if exists(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("profile %q not found (tried: %s)", profile, strings.Join(candidates, ", "))
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
