package deck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pptx-translator/internal/logging"
	"pptx-translator/internal/pptx"
	"pptx-translator/internal/translate"
)

// NotesMode holds the two notes flags. Overwrite wins when both are set.
type NotesMode struct {
	Overwrite  bool
	AddMissing bool
}

// NotesAction is the single path the policy takes for a slide.
type NotesAction int

const (
	NotesNone NotesAction = iota
	NotesGenerate
	NotesTranslate
)

func (a NotesAction) String() string {
	switch a {
	case NotesGenerate:
		return "generate"
	case NotesTranslate:
		return "translate"
	default:
		return "none"
	}
}

// Decide picks the notes action for a slide whose current notes text is
// existing. Whitespace-only notes count as missing.
func Decide(mode NotesMode, existing string) NotesAction {
	hasText := strings.TrimSpace(existing) != ""
	switch {
	case mode.Overwrite:
		return NotesGenerate
	case mode.AddMissing && !hasText:
		return NotesGenerate
	case hasText:
		return NotesTranslate
	default:
		return NotesNone
	}
}

// NotesPolicy applies Decide to a slide.
type NotesPolicy struct {
	mode      NotesMode
	generator translate.NotesGenerator
	frames    *FrameTranslator
	locale    string
	target    string
	logger    *slog.Logger
	counters  *Counters
}

// NewNotesPolicy builds a policy. generator may be nil when neither flag is
// set; frames translates existing notes.
func NewNotesPolicy(mode NotesMode, generator translate.NotesGenerator, frames *FrameTranslator, logger *slog.Logger) *NotesPolicy {
	return &NotesPolicy{
		mode:      mode,
		generator: generator,
		frames:    frames,
		locale:    frames.params.Target.Locale,
		target:    frames.params.Target.Code,
		logger:    logging.NewComponentLogger(logger, "notes"),
		counters:  frames.counters,
	}
}

// Apply runs the policy for slide. slideText is the aggregated translated
// text of the slide. Generation failures are logged and leave the notes as
// they were; translation and document errors are returned.
func (p *NotesPolicy) Apply(ctx context.Context, slide *pptx.Slide, slideText string) (NotesAction, error) {
	frame, ok := slide.Notes()
	existing := ""
	if ok {
		existing = frame.Text()
	}

	action := Decide(p.mode, existing)
	switch action {
	case NotesGenerate:
		return action, p.generate(ctx, slide, slideText)
	case NotesTranslate:
		if _, err := p.frames.Translate(ctx, frame); err != nil {
			return action, err
		}
		p.counters.NotesTranslated++
	}
	return action, nil
}

func (p *NotesPolicy) generate(ctx context.Context, slide *pptx.Slide, slideText string) error {
	if p.generator == nil {
		return fmt.Errorf("notes generation requested without a notes backend")
	}
	notes, err := p.generator.GenerateNotes(ctx, slideText, p.target)
	if err != nil {
		p.counters.NotesFailed++
		logging.WarnWithContext(ctx, p.logger, "notes generation failed", "notes_generation_failed",
			logging.Error(err),
			logging.Hint("check the notes backend settings"),
			logging.Impact("existing notes left unchanged"),
		)
		return nil
	}
	frame, err := slide.EnsureNotes()
	if err != nil {
		return fmt.Errorf("create notes: %w", err)
	}
	frame.SetText(strings.TrimSpace(notes))
	frame.SetLanguage(p.locale)
	p.counters.NotesGenerated++
	logging.WithContext(ctx, p.logger).Debug("notes generated", logging.Int("chars", len([]rune(notes))))
	return nil
}
