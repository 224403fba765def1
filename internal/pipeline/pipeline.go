package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pptx-translator/internal/config"
	"pptx-translator/internal/deck"
	"pptx-translator/internal/fileutil"
	"pptx-translator/internal/language"
	"pptx-translator/internal/logging"
	"pptx-translator/internal/pptx"
	"pptx-translator/internal/preflight"
	"pptx-translator/internal/services"
	"pptx-translator/internal/terminology"
	"pptx-translator/internal/translate"
)

// Options describes one translation run.
type Options struct {
	Input       string
	Source      string // language code or "auto"
	Target      string
	Terminology string // optional CSV path
	Notes       deck.NotesMode
}

// Report summarises a finished run.
type Report struct {
	RunID        string
	Input        string
	Output       string
	Source       string
	Target       language.Language
	Terminology  []string
	Counters     deck.Counters
	MemoryHits   int
	MemoryMisses int
	Duration     time.Duration
}

// Pipeline translates decks with a fixed set of backends.
type Pipeline struct {
	cfg       *config.Config
	languages language.Table
	backends  *Backends
	logger    *slog.Logger
}

// New builds a pipeline. The language table defaults to language.Standard.
func New(cfg *config.Config, backends *Backends, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		languages: language.Standard(),
		backends:  backends,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
}

// OutputPath inserts "-<target>" before the extension of input.
func OutputPath(input, target string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-" + target + ext
}

// ResolveLanguages validates the language pair against table. Source may be
// "auto" or empty for detection.
func ResolveLanguages(table language.Table, source, target string) (string, language.Language, error) {
	tgt, err := table.Lookup(target)
	if err != nil {
		return "", language.Language{}, services.Wrap(services.ErrConfiguration, "pipeline", "languages",
			fmt.Sprintf("target language %q", target), err)
	}
	source = strings.TrimSpace(source)
	if source == "" || strings.EqualFold(source, translate.AutoSource) {
		return translate.AutoSource, tgt, nil
	}
	src, err := table.Lookup(source)
	if err != nil {
		return "", language.Language{}, services.Wrap(services.ErrConfiguration, "pipeline", "languages",
			fmt.Sprintf("source language %q", source), err)
	}
	return src.Code, tgt, nil
}

// Run executes one translation. Nothing is written unless every slide was
// processed; the output appears atomically.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Report, error) {
	started := time.Now()
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, p.logger)

	source, target, err := ResolveLanguages(p.languages, opts.Source, opts.Target)
	if err != nil {
		return Report{}, err
	}
	output := OutputPath(opts.Input, target.Code)
	report := Report{RunID: runID, Input: opts.Input, Output: output, Source: source, Target: target}

	checks := preflight.RunAll(ctx, p.cfg, preflight.Target{Input: opts.Input, Output: output}, preflight.Options{})
	if err := preflight.Err(checks); err != nil {
		return report, err
	}
	if (opts.Notes.Overwrite || opts.Notes.AddMissing) && p.backends.Notes == nil {
		return report, services.Wrap(services.ErrConfiguration, "pipeline", "notes",
			"notes flags require a notes backend", nil)
	}

	pres, err := pptx.Open(opts.Input)
	if err != nil {
		marker := services.ErrConfiguration
		if errors.Is(err, fs.ErrPermission) {
			marker = services.ErrExternal
		}
		return report, services.Wrap(marker, "pipeline", "load", opts.Input, err)
	}
	defer pres.Close()
	slides := pres.Slides()
	logger.Info("deck loaded",
		logging.String("input", opts.Input),
		logging.Int("slides", len(slides)),
		logging.String("source", source),
		logging.String("target", target.Code),
	)

	var digest string
	if opts.Terminology != "" {
		if p.backends.Importer == nil {
			return report, services.Wrap(services.ErrConfiguration, "pipeline", "terminology",
				"translation backend cannot import terminology", nil)
		}
		loader := terminology.NewLoader(p.backends.Importer, p.cfg.TerminologyLockPath(), p.logger)
		defer loader.Release()
		ids, err := loader.Import(ctx, opts.Terminology)
		if err != nil {
			return report, err
		}
		report.Terminology = ids
		digest = loader.Digest()
	}

	walker := deck.NewWalker(p.backends.Translator, p.backends.Notes, deck.Params{
		Source:            source,
		Target:            target,
		Terminology:       report.Terminology,
		TerminologyDigest: digest,
	}, opts.Notes, p.logger)

	for i, slide := range slides {
		logger.Info(fmt.Sprintf("Slide %d of %d", i+1, len(slides)),
			logging.String(logging.FieldEventType, "slide_progress"))
		if _, err := walker.WalkSlide(ctx, slide); err != nil {
			report.Counters = walker.Counters()
			return report, err
		}
	}
	report.Counters = walker.Counters()

	if err := fileutil.WriteFileAtomic(output, 0o644, pres.Save); err != nil {
		return report, services.Wrap(services.ErrExternal, "pipeline", "save", output, err)
	}
	report.MemoryHits, report.MemoryMisses = p.backends.MemoryCounts()
	report.Duration = time.Since(started)
	logger.Info("Saved "+output,
		logging.String(logging.FieldEventType, "deck_saved"),
		logging.Int("runs_translated", report.Counters.RunsTranslated),
		logging.Int("runs_rejected", report.Counters.RunsRejected),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}
