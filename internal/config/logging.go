package config

import (
	"log/slog"

	"git.home.luguber.info/inful/lotbuilder/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel maps the configured level onto slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch NormalizeLogLevel(string(l)) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// LastmodSource selects where sitemap lastmod dates come from.
type LastmodSource string

const (
	// LastmodAuto uses the build date for the index and listing pages and
	// the fingerprint date for detail pages.
	LastmodAuto        LastmodSource = "auto"
	LastmodBuild       LastmodSource = "build"
	LastmodFingerprint LastmodSource = "fingerprint"
	LastmodGit         LastmodSource = "git"
)

var lastmodNormalizer = normalization.NewNormalizer("sitemap lastmod source", map[string]LastmodSource{
	"auto":        LastmodAuto,
	"build":       LastmodBuild,
	"fingerprint": LastmodFingerprint,
	"git":         LastmodGit,
}, LastmodAuto)

// NormalizeLastmodSource parses a lastmod source, rejecting unknown values.
func NormalizeLastmodSource(raw string) (LastmodSource, error) {
	return lastmodNormalizer.NormalizeWithError(raw)
}
