package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"pptx-translator/internal/config"
	"pptx-translator/internal/pptx"
	"pptx-translator/internal/services"
	"pptx-translator/internal/testsupport"
)

type cliEnv struct {
	configPath string
	cfg        *config.Config
	dir        string
	requests   *atomic.Int32
}

func setupCLITestEnv(t *testing.T, reply string, opts ...testsupport.ConfigOption) *cliEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": reply}},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithLLM(server.URL, "test-key")}, opts...)...)
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	dir := testsupport.BaseDir(cfg)
	configPath := filepath.Join(dir, "config.toml")
	testsupport.WriteFile(t, configPath, data)

	return &cliEnv{configPath: configPath, cfg: cfg, dir: dir, requests: &requests}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeHelloDeck(t *testing.T, dir string) string {
	t.Helper()
	input := filepath.Join(dir, "talk.pptx")
	testsupport.WriteDeck(t, input, testsupport.Slide{
		Shapes: []testsupport.Shape{testsupport.TextShape("Title", testsupport.Para("Hello"))},
	})
	return input
}

func TestTranslateCommandSavesDeck(t *testing.T) {
	env := setupCLITestEnv(t, "Hola")
	input := writeHelloDeck(t, env.dir)

	stdout, _, err := runCLI(t, []string{"en", "es", input}, env.configPath)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	output := filepath.Join(env.dir, "talk-es.pptx")
	if !strings.Contains(stdout, "Saved "+output) {
		t.Fatalf("expected saved line, got %q", stdout)
	}
	if !strings.Contains(stdout, "Runs translated") {
		t.Fatalf("expected summary table, got %q", stdout)
	}

	pres, err := pptx.Open(output)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer pres.Close()
	text := pres.Slides()[0].Shapes()[0].(*pptx.TextShape).TextFrame().Text()
	if text != "Hola" {
		t.Fatalf("unexpected translated text %q", text)
	}
}

func TestTranslateCommandRejectsUnknownLanguage(t *testing.T) {
	env := setupCLITestEnv(t, "Hola")
	input := writeHelloDeck(t, env.dir)

	_, _, err := runCLI(t, []string{"en", "xx", input, "--memory"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for unknown target language, got %v", err)
	}
	if _, statErr := os.Stat(env.cfg.Memory.Path); !os.IsNotExist(statErr) {
		t.Fatalf("expected no memory database before languages resolve, stat err=%v", statErr)
	}
	if env.requests.Load() != 0 {
		t.Fatalf("expected no backend calls, got %d", env.requests.Load())
	}
	if _, statErr := os.Stat(filepath.Join(env.dir, "talk-xx.pptx")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file, stat err=%v", statErr)
	}
}

func TestTranslateCommandArgs(t *testing.T) {
	env := setupCLITestEnv(t, "Hola")
	if _, _, err := runCLI(t, []string{"en", "es"}, env.configPath); err == nil {
		t.Fatal("expected argument count error")
	}
	input := writeHelloDeck(t, env.dir)
	_, _, err := runCLI(t, []string{"en", "es", input, "--backend", "deepl"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "translation.backend") {
		t.Fatalf("expected backend validation error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"en", "es", input, "--backend", "llm", "--use-bedrock"}, env.configPath)
	if err == nil {
		t.Fatal("expected mutually exclusive flag error")
	}
}

func TestTranslateCommandGeneratesNotes(t *testing.T) {
	env := setupCLITestEnv(t, "Notas nuevas")
	input := writeHelloDeck(t, env.dir)

	stdout, _, err := runCLI(t, []string{"en", "es", input, "--add-missing-notes"}, env.configPath)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if !strings.Contains(stdout, "Notes generated") {
		t.Fatalf("expected notes counters, got %q", stdout)
	}
	pres, err := pptx.Open(filepath.Join(env.dir, "talk-es.pptx"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer pres.Close()
	notes, ok := pres.Slides()[0].Notes()
	if !ok || notes.Text() != "Notas nuevas" {
		t.Fatalf("expected generated notes, ok=%v", ok)
	}
}

func TestLanguagesCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	stdout, _, err := runCLI(t, []string{"languages"}, "")
	if err != nil {
		t.Fatalf("languages: %v", err)
	}
	for _, want := range []string{"Code", "Spanish", "es-ES", "zh-TW"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestPreflightCommandReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t, "Hola")
	input := writeHelloDeck(t, env.dir)

	stdout, _, err := runCLI(t, []string{"preflight", input, "es"}, env.configPath)
	if err != nil {
		t.Fatalf("preflight: %v\n%s", err, stdout)
	}
	if strings.Contains(stdout, "FAIL") {
		t.Fatalf("unexpected failure:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, []string{"preflight", filepath.Join(env.dir, "missing.pptx"), "es"}, env.configPath)
	if err == nil {
		t.Fatal("expected preflight error for missing input")
	}
	if !strings.Contains(stdout, "FAIL") {
		t.Fatalf("expected FAIL row:\n%s", stdout)
	}
}

func TestTerminologyImportCommand(t *testing.T) {
	env := setupCLITestEnv(t, "Hola")
	csvPath := filepath.Join(env.dir, "terms.csv")
	testsupport.WriteTerminology(t, csvPath, []string{"en", "es"}, []string{"deck", "presentación"})

	stdout, _, err := runCLI(t, []string{"terminology", "import", csvPath}, env.configPath)
	if err != nil {
		t.Fatalf("terminology import: %v", err)
	}
	if !strings.Contains(stdout, "pptx-translator-terminology") {
		t.Fatalf("unexpected output %q", stdout)
	}

	if _, _, err := runCLI(t, []string{"terminology", "import", filepath.Join(env.dir, "none.csv")}, env.configPath); err == nil {
		t.Fatal("expected error for missing terminology file")
	}
}

func TestMemoryCommands(t *testing.T) {
	env := setupCLITestEnv(t, "Hola")
	input := writeHelloDeck(t, env.dir)

	if _, _, err := runCLI(t, []string{"en", "es", input, "--memory"}, env.configPath); err != nil {
		t.Fatalf("first run: %v", err)
	}
	stdout, _, err := runCLI(t, []string{"en", "es", input, "--memory"}, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if env.requests.Load() != 1 {
		t.Fatalf("expected second run to be served from memory, got %d requests", env.requests.Load())
	}
	if !strings.Contains(stdout, "Memory hits") {
		t.Fatalf("expected memory rows in summary:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, []string{"memory", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("memory stats: %v", err)
	}
	if !strings.Contains(stdout, "Entries: 1") || !strings.Contains(stdout, "en>es") {
		t.Fatalf("unexpected stats output:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, []string{"memory", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("memory clear: %v", err)
	}
	if !strings.Contains(stdout, "Removed 1 entries") {
		t.Fatalf("unexpected clear output %q", stdout)
	}
}
