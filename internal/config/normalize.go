package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAWS()
	c.normalizeBackends()
	c.normalizeBedrock()
	c.normalizeLLM()
	if err := c.normalizeMemory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAWS() {
	c.AWS.Region = strings.TrimSpace(c.AWS.Region)
	if c.AWS.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			c.AWS.Region = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("AWS_DEFAULT_REGION"); ok {
			c.AWS.Region = strings.TrimSpace(value)
		}
	}
	c.AWS.Profile = strings.TrimSpace(c.AWS.Profile)
	if c.AWS.MaxAttempts == 0 {
		c.AWS.MaxAttempts = defaultAWSMaxAttempts
	}
	c.AWS.RetryMode = strings.ToLower(strings.TrimSpace(c.AWS.RetryMode))
	if c.AWS.RetryMode == "" {
		c.AWS.RetryMode = defaultAWSRetryMode
	}
}

func (c *Config) normalizeBackends() {
	c.Translation.Backend = strings.ToLower(strings.TrimSpace(c.Translation.Backend))
	if c.Translation.Backend == "" {
		c.Translation.Backend = defaultTranslationBackend
	}
	c.Translation.SourceLanguage = strings.TrimSpace(c.Translation.SourceLanguage)
	c.Notes.Backend = strings.ToLower(strings.TrimSpace(c.Notes.Backend))
	if c.Notes.Backend == "" {
		c.Notes.Backend = defaultNotesBackend
	}
	if c.Notes.MaxTokens == 0 {
		c.Notes.MaxTokens = defaultNotesMaxTokens
	}
	c.Notes.Prompt = strings.TrimSpace(c.Notes.Prompt)
}

func (c *Config) normalizeBedrock() {
	c.Bedrock.ModelID = strings.TrimSpace(c.Bedrock.ModelID)
	if c.Bedrock.ModelID == "" {
		c.Bedrock.ModelID = defaultBedrockModelID
	}
	c.Bedrock.AnthropicVersion = strings.TrimSpace(c.Bedrock.AnthropicVersion)
	if c.Bedrock.AnthropicVersion == "" {
		c.Bedrock.AnthropicVersion = defaultBedrockVersion
	}
	if c.Bedrock.MaxTokens == 0 {
		c.Bedrock.MaxTokens = defaultBedrockMaxTokens
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeMemory() error {
	var err error
	c.Memory.Path = strings.TrimSpace(c.Memory.Path)
	if c.Memory.Path == "" {
		c.Memory.Path = filepath.Join(c.Paths.StateDir, defaultMemoryDatabaseName)
	}
	if c.Memory.Path, err = expandPath(c.Memory.Path); err != nil {
		return fmt.Errorf("memory.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
