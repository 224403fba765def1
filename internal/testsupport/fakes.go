package testsupport

import (
	"context"
	"errors"
	"sync"

	"pptx-translator/internal/services"
	"pptx-translator/internal/translate"
)

// FakeTranslator translates by prefixing the target code ("[es] Hello")
// unless Responses has an exact entry. Texts listed in Reject fail with a
// validation error; texts in Fail fail with an external error.
type FakeTranslator struct {
	Responses map[string]string
	Reject    map[string]bool
	Fail      map[string]bool

	mu       sync.Mutex
	requests []translate.Request
	imported []translate.Terminology
}

// Translate implements translate.Translator.
func (f *FakeTranslator) Translate(_ context.Context, req translate.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	switch {
	case f.Reject[req.Text]:
		return "", translate.Validation("fake", "text rejected", nil)
	case f.Fail[req.Text]:
		return "", services.Wrap(services.ErrExternal, "fake", "translate", "backend unavailable", errors.New("connection refused"))
	}
	if out, ok := f.Responses[req.Text]; ok {
		return out, nil
	}
	return "[" + req.Target + "] " + req.Text, nil
}

// ImportTerminology implements translate.TerminologyImporter.
func (f *FakeTranslator) ImportTerminology(_ context.Context, term translate.Terminology) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imported = append(f.imported, term)
	return nil
}

// Requests returns every translation request received so far.
func (f *FakeTranslator) Requests() []translate.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]translate.Request(nil), f.requests...)
}

// Texts returns the text of every request in call order.
func (f *FakeTranslator) Texts() []string {
	var out []string
	for _, r := range f.Requests() {
		out = append(out, r.Text)
	}
	return out
}

// Imported returns the uploaded terminologies.
func (f *FakeTranslator) Imported() []translate.Terminology {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]translate.Terminology(nil), f.imported...)
}

// FakeNotes returns Text (or Err) for every call and records the slide text
// it was given.
type FakeNotes struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls []string
}

// GenerateNotes implements translate.NotesGenerator.
func (f *FakeNotes) GenerateNotes(_ context.Context, slideText, _ string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, slideText)
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// Calls returns the slide texts passed to GenerateNotes.
func (f *FakeNotes) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
