package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pptx-translator/internal/config"
	"pptx-translator/internal/deck"
	"pptx-translator/internal/language"
	"pptx-translator/internal/pipeline"
	"pptx-translator/internal/services"
)

type translateFlags struct {
	terminology     string
	overwriteNotes  bool
	addMissingNotes bool
	backend         string
	useBedrock      bool
	notesBackend    string
	memory          bool
}

func attachTranslateRun(cmd *cobra.Command, ctx *commandContext) {
	var flags translateFlags

	cmd.Flags().StringVar(&flags.terminology, "terminology", "", "CSV terminology file to import before translating")
	cmd.Flags().BoolVar(&flags.overwriteNotes, "overwrite-notes", false, "Generate new speaker notes for every slide")
	cmd.Flags().BoolVar(&flags.addMissingNotes, "add-missing-notes", false, "Generate speaker notes only where none exist")
	cmd.Flags().StringVar(&flags.backend, "backend", "", "Translation backend (amazon, bedrock, llm)")
	cmd.Flags().BoolVar(&flags.useBedrock, "use-bedrock", false, "Translate with the Bedrock model (same as --backend bedrock)")
	cmd.Flags().StringVar(&flags.notesBackend, "notes-backend", "", "Notes generation backend (bedrock, llm)")
	cmd.Flags().BoolVar(&flags.memory, "memory", false, "Reuse and record translations in the local memory store")
	cmd.MarkFlagsMutuallyExclusive("backend", "use-bedrock")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return err
		}
		if err := flags.apply(cfg); err != nil {
			return err
		}
		// Unknown languages fail before any backend or memory store is opened.
		if _, _, err := pipeline.ResolveLanguages(language.Standard(), args[0], args[1]); err != nil {
			return err
		}

		logger, err := ctx.logger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
		mode := deck.NotesMode{Overwrite: flags.overwriteNotes, AddMissing: flags.addMissingNotes}

		backends, err := pipeline.NewBackends(runCtx, cfg, mode.Overwrite || mode.AddMissing, logger)
		if err != nil {
			return err
		}
		defer backends.Close()

		report, err := pipeline.New(cfg, backends, logger).Run(runCtx, pipeline.Options{
			Input:       args[2],
			Source:      args[0],
			Target:      args[1],
			Terminology: flags.terminology,
			Notes:       mode,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Saved %s\n", report.Output)
		printReport(out, cfg, report)
		return nil
	}
}

// apply folds command-line overrides into cfg and revalidates it.
func (f translateFlags) apply(cfg *config.Config) error {
	if f.useBedrock {
		cfg.Translation.Backend = config.BackendBedrock
	}
	if b := strings.ToLower(strings.TrimSpace(f.backend)); b != "" {
		cfg.Translation.Backend = b
	}
	if b := strings.ToLower(strings.TrimSpace(f.notesBackend)); b != "" {
		cfg.Notes.Backend = b
	}
	if f.memory {
		cfg.Memory.Enabled = true
		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "flags", "invalid option", err)
	}
	return nil
}

func printReport(w io.Writer, cfg *config.Config, report pipeline.Report) {
	c := report.Counters
	rows := [][]string{
		{"Backend", cfg.Translation.Backend},
		{"Languages", report.Source + " -> " + report.Target.Code},
		{"Slides", strconv.Itoa(c.Slides)},
		{"Shapes", strconv.Itoa(c.Shapes)},
		{"Runs translated", strconv.Itoa(c.RunsTranslated)},
		{"Runs blank", strconv.Itoa(c.RunsBlank)},
		{"Runs rejected", strconv.Itoa(c.RunsRejected)},
		{"Notes translated", strconv.Itoa(c.NotesTranslated)},
		{"Notes generated", strconv.Itoa(c.NotesGenerated)},
		{"Notes failed", strconv.Itoa(c.NotesFailed)},
	}
	if len(report.Terminology) > 0 {
		rows = append(rows, []string{"Terminology", strings.Join(report.Terminology, ", ")})
	}
	if cfg.Memory.Enabled {
		rows = append(rows, []string{"Memory hits", strconv.Itoa(report.MemoryHits)})
		rows = append(rows, []string{"Memory misses", strconv.Itoa(report.MemoryMisses)})
	}
	rows = append(rows, []string{"Duration", report.Duration.Round(time.Millisecond).String()})

	fmt.Fprintln(w, renderTable(w, []string{"Metric", "Value"}, rows, 1))
}
