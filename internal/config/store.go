package config

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/v2"
)

// ErrExists is returned by Init when the target file is already present.
var ErrExists = errors.New("config file already exists")

// Save writes cfg to path as indented JSON.
func Save(path string, cfg Config) error {
	data, err := stdjson.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return atomicWrite(path, append(data, '\n'))
}

// Init writes the default config to path unless it already exists and
// force is false.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	return Save(path, Default())
}

// SetField sets a single key in the config file at path, creating the file
// when needed. Only the keys present in the file are written back. The
// result is validated against the defaults before it is saved.
func SetField(path, key, value string) error {
	v, err := parseValue(key, value)
	if err != nil {
		return err
	}

	k := koanf.New(".")
	if err := loadFileIfExists(k, path); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := k.Set(key, v); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	merged := koanf.New(".")
	for dk, dv := range defaults() {
		_ = merged.Set(dk, dv)
	}
	if err := merged.Merge(k); err != nil {
		return fmt.Errorf("merging config: %w", err)
	}
	if _, err := unmarshal(merged); err != nil {
		return err
	}

	data, err := k.Marshal(json.Parser())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("formatting config: %w", err)
	}
	buf.WriteByte('\n')
	return atomicWrite(path, buf.Bytes())
}

// atomicWrite writes data to a file atomically using temp file + os.Rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".sentinel-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}
