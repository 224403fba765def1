package config

const (
	defaultStateDir            = "~/.local/state/pptx-translator"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultAWSMaxAttempts      = 10
	defaultAWSRetryMode        = "standard"
	defaultTranslationBackend  = BackendAmazon
	defaultNotesBackend        = BackendBedrock
	defaultNotesMaxTokens      = 400
	defaultNotesTemperature    = 0.2
	defaultBedrockModelID      = "anthropic.claude-3-sonnet-20240229-v1:0"
	defaultBedrockVersion      = "bedrock-2023-05-31"
	defaultBedrockMaxTokens    = 1000
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "google/gemini-3-flash-preview"
	defaultLLMTitle            = "PPTX Translator"
	defaultLLMTimeoutSeconds   = 60
	defaultMemoryDatabaseName  = "memory.db"
	defaultTerminologyLockName = "terminology.lock"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		AWS: AWS{
			MaxAttempts: defaultAWSMaxAttempts,
			RetryMode:   defaultAWSRetryMode,
		},
		Translation: Translation{
			Backend: defaultTranslationBackend,
		},
		Notes: Notes{
			Backend:     defaultNotesBackend,
			MaxTokens:   defaultNotesMaxTokens,
			Temperature: defaultNotesTemperature,
		},
		Bedrock: Bedrock{
			ModelID:          defaultBedrockModelID,
			AnthropicVersion: defaultBedrockVersion,
			MaxTokens:        defaultBedrockMaxTokens,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
