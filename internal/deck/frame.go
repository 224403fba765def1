package deck

import (
	"context"
	"log/slog"
	"strings"

	"pptx-translator/internal/language"
	"pptx-translator/internal/logging"
	"pptx-translator/internal/pptx"
	"pptx-translator/internal/translate"
)

// Params is the language pair and terminology used for every run.
type Params struct {
	Source      string
	Target      language.Language
	Terminology []string
	// TerminologyDigest is copied onto every request; see translate.Request.
	TerminologyDigest string
}

// FrameTranslator translates the runs of one text frame.
type FrameTranslator struct {
	translator translate.Translator
	params     Params
	logger     *slog.Logger
	counters   *Counters
}

// NewFrameTranslator binds a translator to one language pair. counters may
// be nil.
func NewFrameTranslator(t translate.Translator, params Params, counters *Counters, logger *slog.Logger) *FrameTranslator {
	if counters == nil {
		counters = &Counters{}
	}
	return &FrameTranslator{
		translator: t,
		params:     params,
		logger:     logging.NewComponentLogger(logger, "frame"),
		counters:   counters,
	}
}

// Translate replaces every non-blank run of frame with its translation and
// tags it with the target locale. Runs the backend rejects keep their text.
// The result is the space-joined text of all non-blank runs after
// processing. Any error other than a validation rejection is returned
// unchanged and leaves the remaining runs untouched.
func (f *FrameTranslator) Translate(ctx context.Context, frame *pptx.TextFrame) (string, error) {
	if frame == nil {
		return "", nil
	}
	var parts []string
	for _, para := range frame.Paragraphs() {
		for _, run := range para.Runs() {
			text := run.Text()
			if strings.TrimSpace(text) == "" {
				f.counters.RunsBlank++
				continue
			}
			out, err := f.translator.Translate(ctx, translate.Request{
				Text:              text,
				Source:            f.params.Source,
				Target:            f.params.Target.Code,
				Terminology:       f.params.Terminology,
				TerminologyDigest: f.params.TerminologyDigest,
			})
			switch translate.Classify(err) {
			case translate.OutcomeTranslated:
				run.SetText(out)
				run.SetLanguage(f.params.Target.Locale)
				f.counters.RunsTranslated++
				parts = append(parts, out)
			case translate.OutcomeSkipped:
				f.counters.RunsRejected++
				logging.WarnWithContext(ctx, f.logger, "translation rejected, keeping original text", "run_skipped",
					logging.Preview("text", text),
					logging.Int("chars", len([]rune(text))),
					logging.Error(err),
					logging.Hint("shorten or clean up the text in the source deck"),
					logging.Impact("run left in the source language"),
				)
				parts = append(parts, text)
			default:
				return "", err
			}
		}
	}
	return strings.Join(parts, " "), nil
}
