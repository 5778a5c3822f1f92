package application

import (
	"strings"

	"github.com/luxfi/log"

	"github.com/luxfi/cfdump/pkg/core"
)

// Level is a minimum log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel validates a --log-level value.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, core.ErrInvalidConfigf(KeyLogLevel, "unknown level %q (want debug, info, warn or error)", s)
	}
}

// leveledLogger drops messages below min. Errors always pass.
type leveledLogger struct {
	log.Logger
	min Level
}

// NewLogger returns a named logger filtered at level.
func NewLogger(name string, level Level) log.Logger {
	return &leveledLogger{Logger: log.NewLogger(name), min: level}
}

func (l *leveledLogger) Debug(msg string, ctx ...interface{}) {
	if l.min <= LevelDebug {
		l.Logger.Debug(msg, ctx...)
	}
}

func (l *leveledLogger) Info(msg string, ctx ...interface{}) {
	if l.min <= LevelInfo {
		l.Logger.Info(msg, ctx...)
	}
}

func (l *leveledLogger) Warn(msg string, ctx ...interface{}) {
	if l.min <= LevelWarn {
		l.Logger.Warn(msg, ctx...)
	}
}
