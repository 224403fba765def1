// Package logging assembles structured slog loggers and formatting helpers used
// across pptx-translator.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can automatically tag log
// lines with the run ID and slide number. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// The console handler is what operators read while a deck is translated:
// "Slide i of N" progress, terminology imports, skipped runs and the final
// save path all flow through it. When a log directory is configured every
// record, debug included, is also appended as JSON lines to
// pptx-translator.log whatever the console level.
package logging
