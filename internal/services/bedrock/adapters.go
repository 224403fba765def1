package bedrock

import (
	"context"
	"log/slog"

	"pptx-translator/internal/logging"
	"pptx-translator/internal/translate"
)

// Invoker is the subset of Client used by the adapters.
type Invoker interface {
	Invoke(ctx context.Context, msg Message) (string, error)
}

// Translator implements translate.Translator with deterministic sampling.
// Terminology names are not resolvable on Bedrock and are ignored.
type Translator struct {
	invoker   Invoker
	maxTokens int
	logger    *slog.Logger
}

// NewTranslator wraps inv for translation calls.
func NewTranslator(inv Invoker, maxTokens int, logger *slog.Logger) *Translator {
	return &Translator{invoker: inv, maxTokens: maxTokens, logger: logging.NewComponentLogger(logger, "bedrock-translate")}
}

// Translate asks the model for the translation of req.Text.
func (t *Translator) Translate(ctx context.Context, req translate.Request) (string, error) {
	if len(req.Terminology) > 0 {
		logging.WithContext(ctx, t.logger).Debug("terminology ignored by bedrock backend",
			logging.Int("terminologies", len(req.Terminology)))
	}
	out, err := t.invoker.Invoke(ctx, Message{
		System:    translate.TranslationSystemPrompt,
		User:      translate.TranslationPrompt(req, nil),
		MaxTokens: t.maxTokens,
	})
	if err != nil {
		return "", classify(err, "translate")
	}
	return out, nil
}

// NotesGenerator implements translate.NotesGenerator.
type NotesGenerator struct {
	invoker     Invoker
	instruction string
	temperature float64
	maxTokens   int
}

// NewNotesGenerator builds a generator; instruction may be empty.
func NewNotesGenerator(inv Invoker, instruction string, temperature float64, maxTokens int) *NotesGenerator {
	return &NotesGenerator{invoker: inv, instruction: instruction, temperature: temperature, maxTokens: maxTokens}
}

// GenerateNotes asks the model for speaker notes in the target language.
func (g *NotesGenerator) GenerateNotes(ctx context.Context, slideText, target string) (string, error) {
	out, err := g.invoker.Invoke(ctx, Message{
		System:      translate.NotesSystemPrompt,
		User:        translate.NotesPrompt(slideText, target, g.instruction),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", classify(err, "generate notes")
	}
	return out, nil
}
