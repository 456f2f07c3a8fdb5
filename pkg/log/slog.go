package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	izierrors "github.com/YuminosukeSato/iziml/pkg/errors"
)

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.l.Debug(msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.l.Info(msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.l.Warn(msg, fields...) }

// Error logs msg; a leading error becomes the ErrAttrKey attribute so that
// ErrFmtHandler can add its stack trace.
func (l *slogLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttr(err)}, fields[1:]...)
		}
	}
	l.l.Error(msg, fields...)
}

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: l.l.With(fields...)}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.l.Enabled(ctx, slog.Level(level))
}

// SlogProvider is a LoggerProvider backed by log/slog.
type SlogProvider struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// NewSlogProvider wraps logger. level is the LevelVar its handler reads, so
// SetLevel takes effect immediately; it may be nil.
func NewSlogProvider(logger *slog.Logger, level *slog.LevelVar) *SlogProvider {
	if level == nil {
		level = new(slog.LevelVar)
	}
	return &SlogProvider{logger: logger, level: level}
}

func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{l: p.logger}
}

func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{l: p.logger.With(ComponentKey, name)}
}

func (p *SlogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

// InstallWarnings routes pkg/errors warnings through this provider.
func (p *SlogProvider) InstallWarnings() {
	izierrors.SetZerologWarnFunc(nil)
	izierrors.SetWarningHandler(func(w error) {
		p.logger.Warn(w.Error(), ErrorTypeKey, warningType(w))
	})
}

// warningType returns the bare type name, e.g. "UndefinedMetricWarning".
func warningType(w error) string {
	t := fmt.Sprintf("%T", w)
	return t[strings.LastIndex(t, ".")+1:]
}
