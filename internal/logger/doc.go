// Package logger builds the hclog loggers used by the sentinel CLI.
//
// Diagnostics always go to stderr so stdout stays free for reports. The
// level comes from SENTINEL_LOG_LEVEL when set.
package logger
