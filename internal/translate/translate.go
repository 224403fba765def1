// Package translate defines the remote capabilities the deck pipeline
// depends on: text translation, terminology upload and notes generation.
//
// Backends live under internal/services; tests substitute in-memory fakes.
package translate

import (
	"context"
	"errors"
	"strings"

	"pptx-translator/internal/services"
)

// ErrValidation marks a backend rejecting the submitted text itself
// (malformed, too long). It is the only recoverable translation failure.
var ErrValidation = services.ErrValidation

// AutoSource asks the backend to detect the source language.
const AutoSource = "auto"

// Request is one translation call.
type Request struct {
	Text        string
	Source      string
	Target      string
	Terminology []string // names of previously imported terminologies
	// TerminologyDigest fingerprints the glossary content behind Terminology.
	// Names are reused across imports, so caches key on this instead.
	TerminologyDigest string
}

// Translator translates a single piece of text.
type Translator interface {
	Translate(ctx context.Context, req Request) (string, error)
}

const (
	FormatCSV      = "CSV"
	MergeOverwrite = "OVERWRITE"
)

// Terminology is a custom glossary upload.
type Terminology struct {
	Name          string
	Data          []byte
	Format        string
	MergeStrategy string
}

// TerminologyImporter uploads a glossary that later Requests reference by name.
type TerminologyImporter interface {
	ImportTerminology(ctx context.Context, term Terminology) error
}

// NotesGenerator writes short speaker notes for a slide.
type NotesGenerator interface {
	GenerateNotes(ctx context.Context, slideText, target string) (string, error)
}

// Outcome is the typed result of one translation call.
type Outcome int

const (
	OutcomeTranslated Outcome = iota
	OutcomeSkipped
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTranslated:
		return "translated"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "fatal"
	}
}

// Classify maps a Translate error onto an Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeTranslated
	case errors.Is(err, ErrValidation):
		return OutcomeSkipped
	default:
		return OutcomeFatal
	}
}

// Validation wraps err as a recoverable validation failure.
func Validation(backend, message string, err error) error {
	return services.Wrap(services.ErrValidation, backend, "translate", message, err)
}

// inputMarkers are phrases backends use when the submitted text itself is
// the problem, as opposed to the model, key or request shape.
var inputMarkers = []string{
	"context length",
	"context_length",
	"context window",
	"maximum context",
	"too long",
	"too large",
	"too many tokens",
	"token limit",
	"content policy",
	"content_filter",
	"content filter",
	"moderation",
	"flagged",
	"invalid utf",
	"text size",
}

// InputRejected reports whether a backend error message blames the
// submitted text. Bad request errors that do not are configuration faults.
func InputRejected(message string) bool {
	msg := strings.ToLower(message)
	for _, marker := range inputMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
