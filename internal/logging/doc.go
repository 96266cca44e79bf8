// Package logging configures structured slog output for dorindex.
//
// Commands log to stderr by default. With --debug, JSON logs are also written
// to ~/.dorindex/logs/dorindex.log with size-based rotation.
package logging
