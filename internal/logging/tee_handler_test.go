package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(nopHandler); !ok {
		t.Fatal("expected nop handler when both sides are nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(inner, nil); h != inner {
		t.Fatal("expected console handler to be returned unwrapped")
	}
	if h := newTeeHandler(nil, inner); h != inner {
		t.Fatal("expected file handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsPerSideLevels(t *testing.T) {
	var console, file bytes.Buffer
	h := newTeeHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee to be enabled when the file accepts the level")
	}

	logger := slog.New(h).With("component", "walker")
	logger.Debug("run skipped")
	logger.Warn("translation rejected")

	if strings.Contains(console.String(), "run skipped") {
		t.Fatalf("console handler should drop debug records: %q", console.String())
	}
	if !strings.Contains(console.String(), "translation rejected") {
		t.Fatalf("console handler missing warning: %q", console.String())
	}
	for _, want := range []string{"run skipped", "translation rejected", `"component":"walker"`} {
		if !strings.Contains(file.String(), want) {
			t.Fatalf("file handler missing %q: %q", want, file.String())
		}
	}
}

func TestPreviewTruncatesLongText(t *testing.T) {
	short := Preview("text", "Hola")
	if short.Value.String() != "Hola" {
		t.Fatalf("unexpected short preview %q", short.Value.String())
	}
	long := Preview("text", strings.Repeat("á", previewRunes+10))
	want := strings.Repeat("á", previewRunes) + "..."
	if long.Value.String() != want {
		t.Fatalf("unexpected long preview %q", long.Value.String())
	}
}
