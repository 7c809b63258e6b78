package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "SENTINEL_"
	// LocalFile is the per-repository config file name.
	LocalFile = ".sentinel.json"
)

// Config represents the sentinel configuration.
type Config struct {
	Profile         string            `koanf:"profile" json:"profile" validate:"required"`
	ProfilesDir     string            `koanf:"profilesDir" json:"profilesDir,omitempty"`
	Provider        string            `koanf:"provider" json:"provider" validate:"oneof=local mock"`
	Format          string            `koanf:"format" json:"format" validate:"oneof=text json markdown transport html sarif"`
	FailOn          string            `koanf:"failOn" json:"failOn" validate:"oneof=none info minor major critical"`
	ExitPolicy      string            `koanf:"exitPolicy" json:"exitPolicy" validate:"oneof=threshold legacy"`
	MaxComments     int               `koanf:"maxComments" json:"maxComments" validate:"min=0"`
	OutDir          string            `koanf:"outDir" json:"outDir" validate:"required"`
	ReviewsDir      string            `koanf:"reviewsDir" json:"reviewsDir" validate:"required"`
	ContextDir      string            `koanf:"contextDir" json:"contextDir" validate:"required"`
	Include         []string          `koanf:"include" json:"include"`
	Exclude         []string          `koanf:"exclude" json:"exclude"`
	MaxDiffBytes    int               `koanf:"maxDiffBytes" json:"maxDiffBytes" validate:"min=0"`
	Builtins        bool              `koanf:"builtins" json:"builtins"`
	Redact          bool              `koanf:"redact" json:"redact"`
	RedactPaths     []string          `koanf:"redactPaths" json:"redactPaths,omitempty"`
	SeverityAliases map[string]string `koanf:"severityAliases" json:"severityAliases,omitempty" validate:"dive,oneof=critical major minor info"`
	LogLevel        string            `koanf:"logLevel" json:"logLevel,omitempty" validate:"omitempty,oneof=trace debug info warn warning error off"`
	Render          RenderConfig      `koanf:"render" json:"render"`
	Context         ContextConfig     `koanf:"context" json:"context"`
}

// RenderConfig controls the human-facing artifacts.
type RenderConfig struct {
	Title         string                   `koanf:"title" json:"title,omitempty"`
	Template      string                   `koanf:"template" json:"template,omitempty"`
	SeverityMap   map[string]SeverityStyle `koanf:"severityMap" json:"severityMap,omitempty" validate:"dive,keys,oneof=critical major minor info,endkeys"`
	HumanMarkdown bool                     `koanf:"humanMarkdown" json:"humanMarkdown"`
	HTML          bool                     `koanf:"html" json:"html"`
}

// SeverityStyle overrides the heading of one severity.
type SeverityStyle struct {
	Title string `koanf:"title" json:"title,omitempty"`
	Icon  string `koanf:"icon" json:"icon,omitempty"`
}

// ContextConfig controls context document assembly.
type ContextConfig struct {
	IncludeADR        bool `koanf:"includeAdr" json:"includeAdr"`
	IncludeBoundaries bool `koanf:"includeBoundaries" json:"includeBoundaries"`
	MaxBytes          int  `koanf:"maxBytes" json:"maxBytes" validate:"min=1"`
	MaxApproxTokens   int  `koanf:"maxApproxTokens" json:"maxApproxTokens" validate:"min=0"`
}

type kind int

const (
	kindString kind = iota
	kindInt
	kindBool
	kindList
)

// scalarKeys lists every fixed key and its value kind.
var scalarKeys = map[string]kind{
	"profile":                   kindString,
	"profilesDir":               kindString,
	"provider":                  kindString,
	"format":                    kindString,
	"failOn":                    kindString,
	"exitPolicy":                kindString,
	"maxComments":               kindInt,
	"outDir":                    kindString,
	"reviewsDir":                kindString,
	"contextDir":                kindString,
	"include":                   kindList,
	"exclude":                   kindList,
	"maxDiffBytes":              kindInt,
	"builtins":                  kindBool,
	"redact":                    kindBool,
	"redactPaths":               kindList,
	"logLevel":                  kindString,
	"render.title":              kindString,
	"render.template":           kindString,
	"render.humanMarkdown":      kindBool,
	"render.html":               kindBool,
	"context.includeAdr":        kindBool,
	"context.includeBoundaries": kindBool,
	"context.maxBytes":          kindInt,
	"context.maxApproxTokens":   kindInt,
}

// ErrUnknownKey is returned for keys that do not name a config field.
var ErrUnknownKey = errors.New("unknown config key")

// defaults returns the built-in values keyed by koanf path.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"profile":                   "default",
		"provider":                  "local",
		"format":                    "text",
		"failOn":                    "none",
		"exitPolicy":                "threshold",
		"maxComments":               0,
		"outDir":                    ".sentinel",
		"reviewsDir":                "reviews",
		"contextDir":                "context",
		"include":                   []string{"**/*"},
		"exclude":                   []string{"vendor/**", "**/node_modules/**", "**/dist/**"},
		"maxDiffBytes":              500000,
		"builtins":                  true,
		"redact":                    true,
		"redactPaths":               []string{"**/.env", "**/*secrets*"},
		"render.humanMarkdown":      true,
		"render.html":               true,
		"context.includeAdr":        true,
		"context.includeBoundaries": true,
		"context.maxBytes":          1500000,
		"context.maxApproxTokens":   0,
	}
}

// Keys returns the fixed config keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(scalarKeys))
	for k := range scalarKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns a Config with all defaults applied.
func Default() Config {
	k := koanf.New(".")
	for key, value := range defaults() {
		_ = k.Set(key, value)
	}
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return cfg
}

// ConfigDir returns the platform-appropriate config directory for sentinel.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sentinel"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "sentinel"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "sentinel"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "sentinel"), nil
	default:
		return filepath.Join(home, ".config", "sentinel"), nil
	}
}

// ConfigPath returns the full path to the global config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load builds the effective config by merging:
// defaults <- global file <- local file <- env <- overrides.
//
// localPath names an explicit local config file, which must exist. When it
// is empty, ./.sentinel.json is used if present. The overrides map comes
// from CLI flags; empty values are ignored.
func Load(localPath string, overrides map[string]string) (Config, error) {
	k := koanf.New(".")
	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return Config{}, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if globalPath, err := ConfigPath(); err == nil {
		if err := loadFileIfExists(k, globalPath); err != nil {
			return Config{}, fmt.Errorf("loading global config: %w", err)
		}
	}

	if localPath != "" {
		if _, err := os.Stat(localPath); err != nil {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(localPath), json.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config %s: %w", localPath, err)
		}
	} else if err := loadFileIfExists(k, LocalFile); err != nil {
		return Config{}, fmt.Errorf("loading local config: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	for key, value := range overrides {
		if value == "" {
			continue
		}
		v, err := parseValue(key, value)
		if err != nil {
			return Config{}, err
		}
		if err := k.Set(key, v); err != nil {
			return Config{}, fmt.Errorf("setting %s: %w", key, err)
		}
	}

	return unmarshal(k)
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return k.Load(file.Provider(path), json.Parser())
}

func unmarshal(k *koanf.Koanf) (Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envIndex maps a key with dots and case removed to its koanf path, so
// SENTINEL_CONTEXT_MAX_BYTES resolves to context.maxBytes.
var envIndex = func() map[string]string {
	idx := make(map[string]string, len(scalarKeys))
	for key := range scalarKeys {
		idx[squash(key)] = key
	}
	return idx
}()

func squash(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(".", "", "_", "").Replace(s)
}

// envTransform converts environment variables to config keys. Unknown
// variables are dropped; list values are comma separated.
func envTransform(name, value string) (string, interface{}) {
	key, ok := envIndex[squash(strings.TrimPrefix(name, EnvPrefix))]
	if !ok {
		return "", nil
	}
	if scalarKeys[key] == kindList {
		return key, splitList(value)
	}
	return key, value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseValue converts a textual value for key into its typed form.
func parseValue(key, value string) (interface{}, error) {
	if k, ok := scalarKeys[key]; ok {
		switch k {
		case kindInt:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer: %w", key, err)
			}
			return n, nil
		case kindBool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("%s must be a boolean: %w", key, err)
			}
			return b, nil
		case kindList:
			return splitList(value), nil
		default:
			return value, nil
		}
	}
	if isMapKey(key) {
		return value, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// isMapKey accepts severityAliases.<alias> and
// render.severityMap.<severity>.(title|icon).
func isMapKey(key string) bool {
	if alias, ok := strings.CutPrefix(key, "severityAliases."); ok {
		return alias != "" && !strings.Contains(alias, ".")
	}
	if rest, ok := strings.CutPrefix(key, "render.severityMap."); ok {
		parts := strings.Split(rest, ".")
		return len(parts) == 2 && parts[0] != "" && (parts[1] == "title" || parts[1] == "icon")
	}
	return false
}
