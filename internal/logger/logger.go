package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// EnvLevel names the environment variable that overrides the log level.
const EnvLevel = "SENTINEL_LOG_LEVEL"

// Options configures New.
type Options struct {
	// Level is used when SENTINEL_LOG_LEVEL is unset. Empty means INFO.
	Level string
	// JSON switches to JSON-formatted log lines.
	JSON bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a named hclog.Logger.
func New(name string, opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		Level:       determineLogLevel(opts.Level),
		JSONFormat:  opts.JSON,
		DisableTime: !opts.JSON,
		Output:      out,
	})
}

// determineLogLevel prefers the environment variable over the configured
// level and falls back to INFO.
func determineLogLevel(configured string) hclog.Level {
	if env := os.Getenv(EnvLevel); env != "" {
		return parseLogLevel(env)
	}
	return parseLogLevel(configured)
}

// parseLogLevel converts a level name to hclog.Level. Unknown names map
// to INFO.
func parseLogLevel(level string) hclog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "WARN", "WARNING":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		return hclog.Info
	}
}
