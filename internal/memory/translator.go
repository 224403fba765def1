package memory

import (
	"context"
	"log/slog"

	"pptx-translator/internal/logging"
	"pptx-translator/internal/services"
	"pptx-translator/internal/translate"
)

// Translator is a read-through cache in front of another translate.Translator.
type Translator struct {
	next    translate.Translator
	store   *Store
	backend string
	logger  *slog.Logger

	hits   int
	misses int
}

// NewTranslator wraps next. backend is part of every key, so switching
// backends never serves another backend's output.
func NewTranslator(next translate.Translator, store *Store, backend string, logger *slog.Logger) *Translator {
	return &Translator{
		next:    next,
		store:   store,
		backend: backend,
		logger:  logging.NewComponentLogger(logger, "memory"),
	}
}

// Translate returns the stored translation when one exists, otherwise calls
// the wrapped translator and stores its successful result. Store failures
// are logged and never fail the translation.
func (t *Translator) Translate(ctx context.Context, req translate.Request) (string, error) {
	key := Key{
		Source:            req.Source,
		Target:            req.Target,
		Backend:           t.backend,
		Terminology:       req.Terminology,
		TerminologyDigest: req.TerminologyDigest,
		Text:              req.Text,
	}
	logger := logging.WithContext(ctx, t.logger)

	cached, ok, err := t.store.Lookup(ctx, key)
	if err != nil {
		logging.WarnWithContext(ctx, t.logger, "translation memory lookup failed", "memory_lookup_failed",
			logging.Error(err),
			logging.Impact("text is sent to the backend"),
		)
	}
	if ok {
		t.hits++
		logger.Debug("translation memory hit")
		return cached, nil
	}
	t.misses++

	out, err := t.next.Translate(ctx, req)
	if err != nil {
		return "", err
	}
	runID, _ := services.RunIDFromContext(ctx)
	if err := t.store.Put(ctx, Entry{Key: key, Translation: out, RunID: runID}); err != nil {
		logging.WarnWithContext(ctx, t.logger, "translation memory store failed", "memory_store_failed",
			logging.Error(err),
			logging.Impact("translation will be requested again next run"),
		)
	}
	return out, nil
}

// Counts returns cache hits and misses for this translator.
func (t *Translator) Counts() (hits, misses int) {
	return t.hits, t.misses
}
