// Package logger provides a structured logging interface based on zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Interface defines the leveled logging operations used across the module.
type Interface interface {
	// Debug logs a debug message with optional arguments.
	Debug(message interface{}, args ...interface{})
	// Info logs an info message with optional arguments.
	Info(message string, args ...interface{})
	// Warn logs a warning message with optional arguments.
	Warn(message string, args ...interface{})
	// Error logs an error message with optional arguments.
	Error(message interface{}, args ...interface{})
}

// Logger implements Interface using zerolog as the underlying logger.
type Logger struct {
	logger *zerolog.Logger
}

var _ Interface = (*Logger)(nil)

// New creates a new Logger writing to stdout at the specified log level.
// Supported levels: "debug", "info", "warn", "error". Unknown levels
// default to "info".
//
// Example:
//
//	l := logger.New("debug")
//	l.Info("connected to %s", addr)
func New(level string) *Logger {
	return NewWriter(level, os.Stdout)
}

// NewWriter creates a new Logger writing to the given writer.
func NewWriter(level string, w io.Writer) *Logger {
	var l zerolog.Level

	switch strings.ToLower(level) {
	case "error":
		l = zerolog.ErrorLevel
	case "warn":
		l = zerolog.WarnLevel
	case "debug":
		l = zerolog.DebugLevel
	default:
		l = zerolog.InfoLevel
	}

	logger := zerolog.New(w).Level(l).With().Timestamp().Logger()

	return &Logger{logger: &logger}
}

// Discard returns a Logger that drops everything. Useful as a default
// when the caller supplied no logger.
func Discard() *Logger {
	logger := zerolog.Nop()
	return &Logger{logger: &logger}
}

// Debug logs a debug-level message with optional formatting arguments.
func (l *Logger) Debug(message interface{}, args ...interface{}) {
	l.emit(l.logger.Debug(), message, args...)
}

// Info logs an info-level message with optional formatting arguments.
func (l *Logger) Info(message string, args ...interface{}) {
	l.emit(l.logger.Info(), message, args...)
}

// Warn logs a warning-level message with optional formatting arguments.
func (l *Logger) Warn(message string, args ...interface{}) {
	l.emit(l.logger.Warn(), message, args...)
}

// Error logs an error-level message with optional formatting arguments.
func (l *Logger) Error(message interface{}, args ...interface{}) {
	l.emit(l.logger.Error(), message, args...)
}

func (l *Logger) emit(ev *zerolog.Event, message interface{}, args ...interface{}) {
	var msg string

	switch m := message.(type) {
	case error:
		msg = m.Error()
	case string:
		msg = m
	default:
		msg = fmt.Sprintf("%v", message)
	}

	if len(args) == 0 {
		ev.Msg(msg)
	} else {
		ev.Msgf(msg, args...)
	}
}
