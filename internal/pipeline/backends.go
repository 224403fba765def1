package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"

	"pptx-translator/internal/config"
	"pptx-translator/internal/memory"
	"pptx-translator/internal/services"
	"pptx-translator/internal/services/awsconf"
	"pptx-translator/internal/services/awstranslate"
	"pptx-translator/internal/services/bedrock"
	"pptx-translator/internal/services/llm"
	"pptx-translator/internal/translate"
)

// Backends holds the capability objects one run talks to.
type Backends struct {
	Translator translate.Translator
	Importer   translate.TerminologyImporter
	Notes      translate.NotesGenerator

	memory  *memory.Translator
	closers []func() error
}

// Close releases resources opened by NewBackends.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	b.closers = nil
	return errors.Join(errs...)
}

// MemoryCounts returns translation memory hits and misses, or zeros when
// the memory is disabled.
func (b *Backends) MemoryCounts() (hits, misses int) {
	if b.memory == nil {
		return 0, 0
	}
	return b.memory.Counts()
}

// NewBackends builds the translation, terminology and notes backends selected
// in cfg. Notes are only wired when withNotes is set.
func NewBackends(ctx context.Context, cfg *config.Config, withNotes bool, logger *slog.Logger) (*Backends, error) {
	b := &Backends{}
	var (
		awsCfg    *aws.Config
		llmClient *llm.Client
		bedrockC  *bedrock.Client
	)
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconf.Load(ctx, cfg.AWS)
		if err != nil {
			return aws.Config{}, err
		}
		awsCfg = &c
		return c, nil
	}
	bedrockClient := func() (*bedrock.Client, error) {
		if bedrockC != nil {
			return bedrockC, nil
		}
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		bedrockC = bedrock.NewFromConfig(c, cfg.Bedrock, logger)
		return bedrockC, nil
	}
	chatClient := func() *llm.Client {
		if llmClient == nil {
			llmClient = llm.NewClient(llm.FromConfig(cfg.LLM))
		}
		return llmClient
	}

	switch cfg.Translation.Backend {
	case config.BackendAmazon:
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		client := awstranslate.NewFromConfig(c, logger)
		b.Translator, b.Importer = client, client
	case config.BackendBedrock:
		bc, err := bedrockClient()
		if err != nil {
			return nil, err
		}
		b.Translator = bedrock.NewTranslator(bc, cfg.Bedrock.MaxTokens, logger)
		b.Importer = awstranslate.NewFromConfig(*awsCfg, logger)
	case config.BackendLLM:
		t := llm.NewTranslator(chatClient(), 0, logger)
		b.Translator, b.Importer = t, t
	default:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "backends",
			fmt.Sprintf("unknown translation backend %q", cfg.Translation.Backend), nil)
	}

	if withNotes {
		switch cfg.Notes.Backend {
		case config.BackendBedrock:
			bc, err := bedrockClient()
			if err != nil {
				return nil, err
			}
			b.Notes = bedrock.NewNotesGenerator(bc, cfg.Notes.Prompt, cfg.Notes.Temperature, cfg.Notes.MaxTokens)
		case config.BackendLLM:
			b.Notes = llm.NewNotesGenerator(chatClient(), cfg.Notes.Prompt, cfg.Notes.Temperature, cfg.Notes.MaxTokens)
		default:
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "backends",
				fmt.Sprintf("unknown notes backend %q", cfg.Notes.Backend), nil)
		}
	}

	if cfg.Memory.Enabled {
		store, err := memory.Open(cfg.Memory.Path)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "memory", "open translation memory", err)
		}
		b.closers = append(b.closers, store.Close)
		b.memory = memory.NewTranslator(b.Translator, store, cfg.Translation.Backend, logger)
		b.Translator = b.memory
	}
	return b, nil
}
