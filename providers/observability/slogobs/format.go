package slogobs

import (
	"log/slog"
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes (default).
	// Example: 2026-10-19 10:40:35  INFO recovered → {"file.path":"a.ipynb"}
	FormatCompact Format = "compact"

	// FormatPretty is a multi-line format with one attribute per line.
	// Example:
	// 2026-10-19 10:40:35 INFO   recovered
	//                    └─ file.path: a.ipynb
	FormatPretty Format = "pretty"

	// FormatJSON is one JSON object per record, for log aggregation.
	FormatJSON Format = "json"
)

// Environment variables read by FormatFromEnv and LevelFromEnv. The
// NBREPAIR_ variables take precedence over the generic ones.
const (
	EnvLogFormat        = "NBREPAIR_LOG_FORMAT"
	EnvLogFormatGeneric = "LOG_FORMAT"
	EnvLogLevel         = "NBREPAIR_LOG_LEVEL"
	EnvLogLevelGeneric  = "LOG_LEVEL"
)

// ParseFormat parses a format string and returns the corresponding Format.
// If the format is invalid, it returns FormatCompact (default).
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "pretty":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// FormatFromEnv returns the log format configured in the environment, or
// FormatCompact when none is set.
func FormatFromEnv() Format {
	return ParseFormat(firstEnv(EnvLogFormat, EnvLogFormatGeneric))
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

// ParseLogLevel parses DEBUG, INFO, WARN/WARNING or ERROR, ignoring case and
// surrounding space. Anything else yields INFO.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromEnv returns the log level configured in the environment, or INFO.
func LevelFromEnv() slog.Level {
	return ParseLogLevel(firstEnv(EnvLogLevel, EnvLogLevelGeneric))
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
