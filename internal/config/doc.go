// Package config loads and merges sentinel configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SENTINEL_PROVIDER, SENTINEL_FAIL_ON, SENTINEL_CONTEXT_MAX_BYTES, etc.)
//  3. Local config file (./.sentinel.json or --config)
//  4. Global config file ($XDG_CONFIG_HOME/sentinel/config.json)
//  5. Built-in defaults
//
// Use [Load] to obtain a merged, validated [Config], [Save] to write a config
// file, and [SetField] to update a single key in a config file.
package config
