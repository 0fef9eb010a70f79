// Package logging provides the small leveled wrapper around the standard
// library logger used throughout this module, grounded on gcsfuse's
// gcsproxy/logger.go (a stdlib *log.Logger gated by a debug flag) but
// extended with an explicit level and an environment variable instead of
// a single on/off command-line flag, since this core has no single
// long-lived command-line process of its own (see cmd/mkfs and
// cmd/blockfsd).
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level orders verbosity from quietest to loudest.
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

// EnvVar is the environment variable that sets the default level, per
// SPEC_FULL.md §6.
const EnvVar = "BLOCKFS_LOG_LEVEL"

func levelFromString(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a leveled wrapper over *log.Logger.
type Logger struct {
	level Level
	std   *log.Logger
}

// New returns a Logger writing to w at the given level.
func New(w io.Writer, level Level, prefix string) *Logger {
	return &Logger{level: level, std: log.New(w, prefix, log.LstdFlags)}
}

// Default returns the package-wide logger: level taken from BLOCKFS_LOG_LEVEL
// (defaulting to info), writing to stderr.
func Default() *Logger {
	return New(os.Stderr, levelFromString(os.Getenv(EnvVar)), "blockfs: ")
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	l.std.Output(3, fmt.Sprintf(format, args...))
}

// Errorf always logs, regardless of level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// Infof logs at LevelInfo and above.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

// Debugf logs only at LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}
