package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
	With(key string, value any) Logger
}

type defaultLogger struct {
	level int
	inner zerolog.Logger
}

// NewLogger returns a human readable logger writing to stderr.
func NewLogger(level int) *defaultLogger {
	return New(level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// NewJSONLogger returns a logger writing one JSON object per line to stdout.
func NewJSONLogger(level int) *defaultLogger {
	return New(level, os.Stdout)
}

func New(level int, w io.Writer) *defaultLogger {
	return &defaultLogger{
		level: level,
		inner: zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger(),
	}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	l.inner.Debug().Msgf(msg, a...)
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	l.inner.Info().Msgf(msg, a...)
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	l.inner.Warn().Msgf(msg, a...)
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	l.inner.Error().Msgf(msg, a...)
}

func (l *defaultLogger) With(key string, value any) Logger {
	return &defaultLogger{
		level: l.level,
		inner: l.inner.With().Interface(key, value).Logger(),
	}
}

// ParseLevel maps a config value to a level. Unknown values fall back to INFO.
func ParseLevel(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	case "silence", "off":
		return SILENCE
	default:
		return INFO
	}
}

func toZerologLevel(level int) zerolog.Level {
	switch level {
	case DEBUG:
		return zerolog.DebugLevel
	case INFO:
		return zerolog.InfoLevel
	case WARNING:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}
