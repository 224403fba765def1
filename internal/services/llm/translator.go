package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pptx-translator/internal/logging"
	"pptx-translator/internal/services"
	"pptx-translator/internal/translate"
)

const backendName = "llm"

// Completer is the subset of Client used by the adapters.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Translator implements translate.Translator and translate.TerminologyImporter
// on top of a chat model.
type Translator struct {
	client    Completer
	maxTokens int
	logger    *slog.Logger

	mu         sync.Mutex
	glossaries map[string]*translate.Glossary
}

// NewTranslator wraps client. maxTokens of 0 lets the endpoint decide.
func NewTranslator(client Completer, maxTokens int, logger *slog.Logger) *Translator {
	return &Translator{
		client:     client,
		maxTokens:  maxTokens,
		logger:     logging.NewComponentLogger(logger, "llm-translate"),
		glossaries: make(map[string]*translate.Glossary),
	}
}

// Translate sends one run of text to the model.
func (t *Translator) Translate(ctx context.Context, req translate.Request) (string, error) {
	terms := t.terms(req)
	if len(terms) > 0 {
		logging.WithContext(ctx, t.logger).Debug("applying glossary", logging.Int("terms", len(terms)))
	}
	out, err := t.client.Complete(ctx, Prompt{
		System:    translate.TranslationSystemPrompt,
		User:      translate.TranslationPrompt(req, terms),
		MaxTokens: t.maxTokens,
	})
	if err != nil {
		return "", classify(err, "translate")
	}
	return cleanReply(out, req.Text), nil
}

// ImportTerminology keeps the glossary in process; later requests naming it
// get matching term pairs injected into their prompt.
func (t *Translator) ImportTerminology(_ context.Context, term translate.Terminology) error {
	if term.Format != "" && term.Format != translate.FormatCSV {
		return services.Wrap(services.ErrConfiguration, backendName, "import terminology",
			fmt.Sprintf("unsupported format %q", term.Format), nil)
	}
	g, err := translate.ParseGlossary(term.Data)
	if err != nil {
		return services.Wrap(services.ErrValidation, backendName, "import terminology", "invalid terminology data", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.glossaries[term.Name] = g
	return nil
}

func (t *Translator) terms(req translate.Request) [][2]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out [][2]string
	for _, name := range req.Terminology {
		out = append(out, t.glossaries[name].Matches(req.Text, req.Source, req.Target)...)
	}
	return out
}

// NotesGenerator implements translate.NotesGenerator.
type NotesGenerator struct {
	client      Completer
	instruction string
	temperature float64
	maxTokens   int
}

// NewNotesGenerator builds a generator; instruction may be empty.
func NewNotesGenerator(client Completer, instruction string, temperature float64, maxTokens int) *NotesGenerator {
	return &NotesGenerator{client: client, instruction: instruction, temperature: temperature, maxTokens: maxTokens}
}

// GenerateNotes asks the model for speaker notes in the target language.
func (g *NotesGenerator) GenerateNotes(ctx context.Context, slideText, target string) (string, error) {
	out, err := g.client.Complete(ctx, Prompt{
		System:      translate.NotesSystemPrompt,
		User:        translate.NotesPrompt(slideText, target, g.instruction),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", classify(err, "generate notes")
	}
	return cleanReply(out, slideText), nil
}

func classify(err error, op string) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Rejected():
			return translate.Validation(backendName, "prompt rejected", err)
		case statusErr.Misconfigured():
			return services.Wrap(services.ErrConfiguration, backendName, op, "endpoint refused the request; check llm.api_key and llm.model", err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, backendName, op, "request cancelled", err)
	}
	return services.Wrap(services.ErrExternal, backendName, op, "chat completion failed", err)
}
