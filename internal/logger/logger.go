package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the levelled key/value logger shared by every package.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Error(msg string, kv ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
	With(kv ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New returns a text logger writing to stderr at the given level.
func New(level string) Logger {
	return NewWithWriter(os.Stderr, level)
}

func NewWithWriter(w io.Writer, level string) Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &slogLogger{l: slog.New(h)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *slogLogger) Debug(msg string, kv ...any) {
	s.l.Debug(msg, kv...)
}

func (s *slogLogger) Info(msg string, kv ...any) {
	s.l.Info(msg, kv...)
}

func (s *slogLogger) Error(msg string, kv ...any) {
	s.l.Error(msg, kv...)
}

func (s *slogLogger) Infof(format string, args ...any) {
	s.l.Info(fmt.Sprintf(format, args...))
}

func (s *slogLogger) Errorf(format string, args ...any) {
	s.l.Error(fmt.Sprintf(format, args...))
}

func (s *slogLogger) With(kv ...any) Logger {
	return &slogLogger{l: s.l.With(kv...)}
}

type noopLogger struct{}

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any) {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Infof(string, ...any) {}
func (noopLogger) Errorf(string, ...any) {}
func (n noopLogger) With(...any) Logger { return n }
