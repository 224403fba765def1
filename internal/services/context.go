package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	slideKey contextKey = "slide"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSlide annotates context with the 1-based slide number being processed.
func WithSlide(ctx context.Context, number int) context.Context {
	if number <= 0 {
		return ctx
	}
	return context.WithValue(ctx, slideKey, number)
}

// SlideFromContext returns the slide number if present.
func SlideFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(slideKey)
	switch val := v.(type) {
	case int:
		return val, val > 0
	case int64:
		return int(val), val > 0
	default:
		return 0, false
	}
}
