// Package ucplog provides the ambient structured-logging setup shared by
// cmd/ucp's subcommands: a log/slog handler factory selected by
// --log-level/--log-format, mirroring the teacher-adjacent example's log
// package almost verbatim.
package ucplog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// Format is the log output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatLogfmt  Format = "logfmt"
	defaultLevel         = "info"
	defaultFormat        = "logfmt"
)

var (
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// CreateHandlerWithStrings parses logLevel/logFormat and returns a handler
// writing to w.
func CreateHandlerWithStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	lvl, err := GetLevel(logLevel)
	if err != nil {
		return nil, err
	}
	logFmt, err := GetFormat(logFormat)
	if err != nil {
		return nil, err
	}
	return CreateHandler(w, lvl, logFmt), nil
}

// CreateHandler builds a slog.Handler for the given level and format.
func CreateHandler(w io.Writer, lvl slog.Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// GetLevel parses a log level string.
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// GetFormat parses a log format string.
func GetFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatLogfmt, "":
		return FormatLogfmt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// GetAllLevelStrings lists the recognized --log-level values, for flag help
// text and shell completion.
func GetAllLevelStrings() []string {
	return []string{"debug", "info", "warn", "error"}
}

// GetAllFormatStrings lists the recognized --log-format values.
func GetAllFormatStrings() []string {
	return []string{string(FormatLogfmt), string(FormatJSON)}
}

// Flags holds CLI flag names for logging configuration.
type Flags struct {
	Level  string
	Format string
}

// Config holds CLI flag values for logging configuration. Create one with
// NewConfig, register its flags with RegisterFlags, and build a handler
// with NewHandler once flags are parsed.
type Config struct {
	Flags  Flags
	Level  string
	Format string
}

// NewConfig returns a Config with the conventional --log-level/--log-format
// flag names.
func NewConfig() *Config {
	return &Config{Flags: Flags{Level: "log-level", Format: "log-format"}}
}

// RegisterFlags adds logging flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, defaultLevel,
		fmt.Sprintf("log level, one of: %s", GetAllLevelStrings()))
	flags.StringVar(&c.Format, c.Flags.Format, defaultFormat,
		fmt.Sprintf("log format, one of: %s", GetAllFormatStrings()))
}

// NewHandler builds a slog.Handler writing to w from the parsed flag values.
func (c *Config) NewHandler(w io.Writer) (slog.Handler, error) {
	return CreateHandlerWithStrings(w, c.Level, c.Format)
}
