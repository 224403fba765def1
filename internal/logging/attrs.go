package logging

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Hint tells the operator what to change before the next run.
func Hint(text string) Attr { return slog.String(FieldErrorHint, text) }

// Impact describes what the warning means for the saved deck.
func Impact(text string) Attr { return slog.String(FieldImpact, text) }

// previewRunes bounds deck text copied into log records.
const previewRunes = 48

// Preview records at most previewRunes of text, so slide content stays
// recognisable without flooding the log.
func Preview(key, text string) Attr {
	if utf8.RuneCountInString(text) <= previewRunes {
		return slog.String(key, text)
	}
	runes := []rune(text)
	return slog.String(key, string(runes[:previewRunes])+"...")
}

func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(nopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

func hasAttr(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// WarnWithContext logs a degraded-but-continuing event. Missing event_type,
// error_hint and impact fields get defaults so every warning is filterable.
func WarnWithContext(ctx context.Context, logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	if !hasAttr(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !hasAttr(attrs, FieldErrorHint) {
		attrs = append(attrs, Hint("rerun with --log-level debug for backend detail"))
	}
	if !hasAttr(attrs, FieldImpact) {
		attrs = append(attrs, Impact("translation continues"))
	}
	WithContext(ctx, logger).Warn(msg, Args(attrs...)...)
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (nopHandler) Handle(context.Context, slog.Record) error { return nil }

func (nopHandler) WithAttrs([]slog.Attr) slog.Handler { return nopHandler{} }

func (nopHandler) WithGroup(string) slog.Handler { return nopHandler{} }
