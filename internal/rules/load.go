package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadCatalog loads a rules catalog from disk. Returns nil Catalog and nil
// error if path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var c Catalog
	if err := decode(path, data, &c); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	return &c, nil
}

// LoadBoundaries loads a boundary catalog from disk. Returns nil Boundaries
// and nil error if path is empty or the file does not exist, since
// boundaries are optional.
func LoadBoundaries(path string) (*Boundaries, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading boundaries file: %w", err)
	}
	var b Boundaries
	if err := decode(path, data, &b); err != nil {
		return nil, fmt.Errorf("parsing boundaries file %s: %w", path, err)
	}
	return &b, nil
}

// ParseCatalog decodes rules.json content.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ParseBoundaries decodes boundaries.json content.
func ParseBoundaries(data []byte) (*Boundaries, error) {
	var b Boundaries
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}
