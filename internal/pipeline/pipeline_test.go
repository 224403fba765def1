package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pptx-translator/internal/deck"
	"pptx-translator/internal/memory"
	"pptx-translator/internal/pipeline"
	"pptx-translator/internal/pptx"
	"pptx-translator/internal/services"
	"pptx-translator/internal/terminology"
	"pptx-translator/internal/testsupport"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, target, want string
	}{
		{"deck.pptx", "pt", "deck-pt.pptx"},
		{"deck.pptx", "zh-TW", "deck-zh-TW.pptx"},
		{filepath.Join("talks", "q3.review.pptx"), "de", filepath.Join("talks", "q3.review-de.pptx")},
		{"noext", "fr", "noext-fr"},
	}
	for _, tc := range tests {
		if got := pipeline.OutputPath(tc.input, tc.target); got != tc.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tc.input, tc.target, got, tc.want)
		}
	}
}

type fixture struct {
	input      string
	translator *testsupport.FakeTranslator
	notes      *testsupport.FakeNotes
	pipeline   *pipeline.Pipeline
}

func newFixture(t *testing.T, slides ...testsupport.Slide) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithLLM("http://127.0.0.1:1", "test-key"))
	input := filepath.Join(t.TempDir(), "deck.pptx")
	testsupport.WriteDeck(t, input, slides...)

	f := &fixture{
		input:      input,
		translator: &testsupport.FakeTranslator{},
		notes:      &testsupport.FakeNotes{Text: "Generated notes"},
	}
	f.pipeline = pipeline.New(cfg, &pipeline.Backends{
		Translator: f.translator,
		Importer:   f.translator,
		Notes:      f.notes,
	}, nil)
	return f
}

func twoSlides() []testsupport.Slide {
	return []testsupport.Slide{
		{Shapes: []testsupport.Shape{testsupport.TextShape("Title", testsupport.Para("Hello"))}},
		{
			Shapes: []testsupport.Shape{testsupport.TableShape("Table", []string{"World"})},
			Notes:  []string{"Old note"},
		},
	}
}

func TestRunTranslatesAndSaves(t *testing.T) {
	f := newFixture(t, twoSlides()...)
	original, err := os.ReadFile(f.input)
	if err != nil {
		t.Fatal(err)
	}

	report, err := f.pipeline.Run(context.Background(), pipeline.Options{
		Input:  f.input,
		Source: "en",
		Target: "es",
		Notes:  deck.NotesMode{AddMissing: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Output != filepath.Join(filepath.Dir(f.input), "deck-es.pptx") {
		t.Fatalf("unexpected output %q", report.Output)
	}
	if report.RunID == "" {
		t.Fatal("expected a run id")
	}
	if c := report.Counters; c.Slides != 2 || c.RunsTranslated != 3 || c.NotesGenerated != 1 || c.NotesTranslated != 1 {
		t.Fatalf("unexpected counters %+v", c)
	}

	after, err := os.ReadFile(f.input)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(original, after) {
		t.Fatal("input deck was modified")
	}

	out, err := pptx.Open(report.Output)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer out.Close()
	slides := out.Slides()
	if got := slides[0].Shapes()[0].(*pptx.TextShape).TextFrame().Text(); got != "[es] Hello" {
		t.Fatalf("slide 1 text %q", got)
	}
	if notes, ok := slides[0].Notes(); !ok || notes.Text() != "Generated notes" {
		t.Fatal("slide 1 notes not generated")
	}
	if notes, _ := slides[1].Notes(); notes.Text() != "[es] Old note" {
		t.Fatalf("slide 2 notes %q", notes.Text())
	}
}

func TestRunKeepsCallerRunID(t *testing.T) {
	f := newFixture(t, twoSlides()...)
	ctx := services.WithRunID(context.Background(), "fixed-id")
	report, err := f.pipeline.Run(ctx, pipeline.Options{Input: f.input, Source: "auto", Target: "fr"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID != "fixed-id" || report.Source != "auto" {
		t.Fatalf("unexpected report %+v", report)
	}
	for _, req := range f.translator.Requests() {
		if req.Source != "auto" || req.Target != "fr" {
			t.Fatalf("unexpected request languages %+v", req)
		}
	}
}

func TestRunRejectsUnknownLanguageBeforeWork(t *testing.T) {
	for _, opts := range []pipeline.Options{
		{Source: "en", Target: "xx"},
		{Source: "klingon", Target: "de"},
	} {
		f := newFixture(t, twoSlides()...)
		opts.Input = f.input
		_, err := f.pipeline.Run(context.Background(), opts)
		if !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("expected configuration error for %+v, got %v", opts, err)
		}
		if len(f.translator.Requests()) != 0 {
			t.Fatal("no translation may happen with an unknown language")
		}
	}
}

func TestRunImportsTerminologyFirst(t *testing.T) {
	f := newFixture(t, twoSlides()...)
	csvPath := filepath.Join(filepath.Dir(f.input), "terms.csv")
	testsupport.WriteTerminology(t, csvPath, []string{"en", "es"}, []string{"World", "Mundo"})

	report, err := f.pipeline.Run(context.Background(), pipeline.Options{
		Input:       f.input,
		Source:      "en",
		Target:      "es",
		Terminology: csvPath,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if imported := f.translator.Imported(); len(imported) != 1 || imported[0].Name != terminology.Name {
		t.Fatalf("unexpected imports %+v", imported)
	}
	if len(report.Terminology) != 1 {
		t.Fatalf("unexpected report terminology %v", report.Terminology)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read terminology: %v", err)
	}
	for _, req := range f.translator.Requests() {
		if len(req.Terminology) != 1 || req.Terminology[0] != terminology.Name {
			t.Fatalf("request %q lacks terminology: %v", req.Text, req.Terminology)
		}
		if req.TerminologyDigest != terminology.Digest(data) {
			t.Fatalf("request %q has digest %q", req.Text, req.TerminologyDigest)
		}
	}
}

func TestRunMemoryMissesAfterGlossaryEdit(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLLM("http://127.0.0.1:1", "test-key"))
	dir := t.TempDir()
	input := filepath.Join(dir, "deck.pptx")
	testsupport.WriteDeck(t, input, testsupport.Slide{
		Shapes: []testsupport.Shape{testsupport.TextShape("Title", testsupport.Para("Cloud"))},
	})
	store, err := memory.Open(filepath.Join(dir, "memory.db"))
	if err != nil {
		t.Fatalf("memory.Open: %v", err)
	}
	defer store.Close()
	fake := &testsupport.FakeTranslator{}
	p := pipeline.New(cfg, &pipeline.Backends{
		Translator: memory.NewTranslator(fake, store, "amazon", nil),
		Importer:   fake,
	}, nil)

	csvPath := filepath.Join(dir, "terms.csv")
	run := func() {
		t.Helper()
		if _, err := p.Run(context.Background(), pipeline.Options{
			Input: input, Source: "en", Target: "es", Terminology: csvPath,
		}); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	testsupport.WriteTerminology(t, csvPath, []string{"en", "es"}, []string{"Cloud", "Nube"})
	run()
	run()
	if got := len(fake.Requests()); got != 1 {
		t.Fatalf("unchanged glossary should be served from memory, got %d backend calls", got)
	}

	testsupport.WriteTerminology(t, csvPath, []string{"en", "es"}, []string{"Cloud", "Nube privada"})
	run()
	if got := len(fake.Requests()); got != 2 {
		t.Fatalf("edited glossary must reach the backend, got %d backend calls", got)
	}
}

func TestRunMissingTerminologyAbortsBeforeMutation(t *testing.T) {
	f := newFixture(t, twoSlides()...)
	report, err := f.pipeline.Run(context.Background(), pipeline.Options{
		Input:       f.input,
		Source:      "en",
		Target:      "es",
		Terminology: filepath.Join(t.TempDir(), "missing.csv"),
	})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(f.translator.Requests()) != 0 {
		t.Fatal("translation started despite terminology failure")
	}
	if _, err := os.Stat(report.Output); !os.IsNotExist(err) {
		t.Fatalf("output must not exist: %v", err)
	}
}

func TestRunFatalErrorWritesNothing(t *testing.T) {
	f := newFixture(t, twoSlides()...)
	f.translator.Fail = map[string]bool{"World": true}

	report, err := f.pipeline.Run(context.Background(), pipeline.Options{Input: f.input, Source: "en", Target: "es"})
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external error, got %v", err)
	}
	if _, statErr := os.Stat(report.Output); !os.IsNotExist(statErr) {
		t.Fatalf("output must not exist after a fatal error: %v", statErr)
	}
	entries, _ := os.ReadDir(filepath.Dir(f.input))
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	f := newFixture(t, twoSlides()...)
	_, err := f.pipeline.Run(context.Background(), pipeline.Options{
		Input:  filepath.Join(t.TempDir(), "absent.pptx"),
		Source: "en",
		Target: "es",
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunRejectsCorruptDeck(t *testing.T) {
	f := newFixture(t, twoSlides()...)
	testsupport.WriteFile(t, f.input, []byte("not a zip archive"))
	_, err := f.pipeline.Run(context.Background(), pipeline.Options{Input: f.input, Source: "en", Target: "es"})
	if !errors.Is(err, services.ErrConfiguration) || !errors.Is(err, pptx.ErrInvalidDocument) {
		t.Fatalf("expected invalid document error, got %v", err)
	}
}

func TestNewBackendsLLMWithMemory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLLM("http://127.0.0.1:1", "key"), testsupport.WithMemory())
	b, err := pipeline.NewBackends(context.Background(), cfg, true, nil)
	if err != nil {
		t.Fatalf("NewBackends: %v", err)
	}
	defer b.Close()
	if _, ok := b.Translator.(*memory.Translator); !ok {
		t.Fatalf("expected memory decorator, got %T", b.Translator)
	}
	if b.Importer == nil || b.Notes == nil {
		t.Fatalf("expected importer and notes generator: %+v", b)
	}
	if _, err := os.Stat(cfg.Memory.Path); err != nil {
		t.Fatalf("expected memory database: %v", err)
	}
}

func TestNewBackendsWithoutNotes(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithLLM("http://127.0.0.1:1", "key"))
	b, err := pipeline.NewBackends(context.Background(), cfg, false, nil)
	if err != nil {
		t.Fatalf("NewBackends: %v", err)
	}
	if b.Notes != nil {
		t.Fatal("notes generator should not be built")
	}
	cfg.Translation.Backend = "deepl"
	if _, err := pipeline.NewBackends(context.Background(), cfg, false, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
