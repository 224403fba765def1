package deck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pptx-translator/internal/logging"
	"pptx-translator/internal/pptx"
	"pptx-translator/internal/services"
	"pptx-translator/internal/translate"
)

const (
	cellSeparator = " | "
	lineSeparator = "\n"
)

// Walker translates whole slides.
type Walker struct {
	frames *FrameTranslator
	notes  *NotesPolicy
	logger *slog.Logger

	counters Counters
}

// NewWalker wires the frame translator and notes policy for one run.
func NewWalker(t translate.Translator, gen translate.NotesGenerator, params Params, mode NotesMode, logger *slog.Logger) *Walker {
	w := &Walker{logger: logging.NewComponentLogger(logger, "walker")}
	w.frames = NewFrameTranslator(t, params, &w.counters, logger)
	w.notes = NewNotesPolicy(mode, gen, w.frames, logger)
	return w
}

// Counters returns the running totals.
func (w *Walker) Counters() Counters { return w.counters }

// WalkSlide translates every shape of slide in document order, then applies
// the notes policy with the aggregated slide text. It returns that text.
func (w *Walker) WalkSlide(ctx context.Context, slide *pptx.Slide) (string, error) {
	ctx = services.WithSlide(ctx, slide.Index()+1)
	var buf strings.Builder
	if err := w.walkShapes(ctx, slide.Shapes(), &buf); err != nil {
		return "", fmt.Errorf("slide %d: %w", slide.Index()+1, err)
	}
	text := buf.String()

	action, err := w.notes.Apply(ctx, slide, text)
	if err != nil {
		return "", fmt.Errorf("slide %d notes: %w", slide.Index()+1, err)
	}
	w.counters.Slides++
	logging.WithContext(ctx, w.logger).Debug("slide walked",
		logging.String("notes_action", action.String()),
		logging.Int("chars", len([]rune(text))),
	)
	return text, nil
}

func (w *Walker) walkShapes(ctx context.Context, shapes []pptx.Shape, buf *strings.Builder) error {
	for _, shape := range shapes {
		w.counters.Shapes++
		switch sh := shape.(type) {
		case *pptx.TextShape:
			out, err := w.frames.Translate(ctx, sh.TextFrame())
			if err != nil {
				return fmt.Errorf("shape %q: %w", sh.Name(), err)
			}
			buf.WriteString(out)
			buf.WriteString(lineSeparator)
		case *pptx.TableShape:
			if err := w.walkTable(ctx, sh, buf); err != nil {
				return err
			}
		case *pptx.GroupShape:
			if err := w.walkShapes(ctx, sh.Shapes(), buf); err != nil {
				return err
			}
		case *pptx.OtherShape:
		default:
			logging.WithContext(ctx, w.logger).Debug("unhandled shape kind",
				logging.String("shape", shape.Name()),
				logging.String("kind", fmt.Sprintf("%T", shape)),
			)
		}
	}
	return nil
}

func (w *Walker) walkTable(ctx context.Context, sh *pptx.TableShape, buf *strings.Builder) error {
	table := sh.Table()
	for r, row := range table.Rows() {
		for c, cell := range row.Cells() {
			out, err := w.frames.Translate(ctx, cell.TextFrame())
			if err != nil {
				return fmt.Errorf("table %q cell %d,%d: %w", sh.Name(), r+1, c+1, err)
			}
			if cell.Merged() {
				continue
			}
			buf.WriteString(out)
			buf.WriteString(cellSeparator)
		}
	}
	return nil
}
