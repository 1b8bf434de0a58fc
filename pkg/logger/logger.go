// Package logger provides a leveled logger backed by zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Level represents the logging level.
type Level int

// Log levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return ""
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error", "none")
// into a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug, nil
	case "info", "INFO", "":
		return LevelInfo, nil
	case "warn", "WARN", "warning":
		return LevelWarn, nil
	case "error", "ERROR":
		return LevelError, nil
	case "none", "off", "disabled":
		return LevelNone, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

const component = "fhircodes"

// Logger provides logging functionality.
type Logger struct {
	mu    sync.Mutex
	level Level
	zl    zerolog.Logger
}

var defaultLogger = New(os.Stderr, LevelInfo)

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// New creates a logger writing JSON lines to output.
func New(output io.Writer, level Level) *Logger {
	zl := zerolog.New(output).With().Timestamp().Str("component", component).Logger()
	return &Logger{
		level: level,
		zl:    zl.Level(level.zerolog()),
	}
}

// NewConsole creates a logger writing human-readable lines to output.
func NewConsole(output io.Writer, level Level) *Logger {
	return New(zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}, level)
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.zl = l.zl.Level(level.zerolog())
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl = l.zl.Output(w)
}

// With returns a child logger that adds key=value to every line.
func (l *Logger) With(key, value string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		level: l.level,
		zl:    l.zl.With().Str(key, value).Logger(),
	}
}

// WithInt is With for integer values.
func (l *Logger) WithInt(key string, value int) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		level: l.level,
		zl:    l.zl.With().Int(key, value).Logger(),
	}
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	zl, threshold := l.zl, l.level
	l.mu.Unlock()

	if level < threshold {
		return
	}
	zl.WithLevel(level.zerolog()).Msgf(format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Package-level convenience functions.

// Debug logs a debug message using the default logger.
func Debug(format string, args ...any) {
	defaultLogger.Debug(format, args...)
}

// Info logs an info message using the default logger.
func Info(format string, args ...any) {
	defaultLogger.Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...any) {
	defaultLogger.Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...any) {
	defaultLogger.Error(format, args...)
}

// SetLevel sets the level of the default logger.
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// SetOutput sets the output of the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// Disable disables all logging.
func Disable() {
	defaultLogger.SetLevel(LevelNone)
}
