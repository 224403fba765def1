package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBackends(); err != nil {
		return err
	}
	if err := c.validateAWS(); err != nil {
		return err
	}
	if err := c.validateNotes(); err != nil {
		return err
	}
	if c.Bedrock.MaxTokens <= 0 {
		return errors.New("bedrock.max_tokens must be positive")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBackends() error {
	switch c.Translation.Backend {
	case BackendAmazon, BackendBedrock, BackendLLM:
	default:
		return fmt.Errorf("translation.backend: unsupported value %q (want amazon, bedrock or llm)", c.Translation.Backend)
	}
	switch c.Notes.Backend {
	case BackendBedrock, BackendLLM:
	default:
		return fmt.Errorf("notes.backend: unsupported value %q (want bedrock or llm)", c.Notes.Backend)
	}
	return nil
}

func (c *Config) validateAWS() error {
	if c.AWS.MaxAttempts < 0 {
		return errors.New("aws.max_attempts must be positive")
	}
	switch c.AWS.RetryMode {
	case "standard", "adaptive":
	default:
		return fmt.Errorf("aws.retry_mode: unsupported value %q (want standard or adaptive)", c.AWS.RetryMode)
	}
	return nil
}

func (c *Config) validateNotes() error {
	if c.Notes.MaxTokens < 0 {
		return errors.New("notes.max_tokens must be positive")
	}
	if c.Notes.Temperature < 0 || c.Notes.Temperature > 1 {
		return errors.New("notes.temperature must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
