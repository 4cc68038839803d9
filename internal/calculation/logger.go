package calculation

import (
	"context"
	"fmt"
	"log/slog"
)

// Logger is the minimal logging surface the engine writes to
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// SlogLogger adapts a *slog.Logger to Logger
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l; a nil l falls back to slog.Default()
func NewSlogLogger(l *slog.Logger) SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return SlogLogger{l: l}
}

func (s SlogLogger) Debugf(format string, args ...any) { s.log(slog.LevelDebug, format, args) }
func (s SlogLogger) Infof(format string, args ...any)  { s.log(slog.LevelInfo, format, args) }
func (s SlogLogger) Warnf(format string, args ...any)  { s.log(slog.LevelWarn, format, args) }
func (s SlogLogger) Errorf(format string, args ...any) { s.log(slog.LevelError, format, args) }

func (s SlogLogger) log(level slog.Level, format string, args []any) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}
	s.l.Log(ctx, level, fmt.Sprintf(format, args...))
}

func orNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
