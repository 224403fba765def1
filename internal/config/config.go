package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"pptx-translator/internal/fileutil"
)

// EnvConfigPath names a config file used when no --config flag is given.
const EnvConfigPath = "PPTX_TRANSLATOR_CONFIG"

//go:embed sample_config.toml
var sampleConfig string

// Backend names accepted by translation.backend and notes.backend.
const (
	BackendAmazon  = "amazon"
	BackendBedrock = "bedrock"
	BackendLLM     = "llm"
)

// Paths contains directories used for run state and optional log files.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// AWS contains shared settings for the Amazon Translate and Bedrock clients.
type AWS struct {
	Region      string `toml:"region"`
	Profile     string `toml:"profile"`
	MaxAttempts int    `toml:"max_attempts"`
	RetryMode   string `toml:"retry_mode"`
}

// Translation selects the machine translation backend.
type Translation struct {
	Backend        string `toml:"backend"`
	SourceLanguage string `toml:"source_language"`
}

// Notes configures speaker-notes generation.
type Notes struct {
	Backend     string  `toml:"backend"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	// Prompt replaces the built-in system prompt when set.
	Prompt string `toml:"prompt"`
}

// Bedrock contains settings for Anthropic models invoked through Bedrock.
type Bedrock struct {
	ModelID          string `toml:"model_id"`
	AnthropicVersion string `toml:"anthropic_version"`
	MaxTokens        int    `toml:"max_tokens"`
}

// LLM contains OpenAI-compatible chat completion settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Memory configures the local translation memory.
type Memory struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pptx-translator.
//
// Configuration sections by subsystem:
//   - Paths: state directory (locks, memory database) and optional log directory
//   - AWS: region, profile and retry policy shared by AWS clients
//   - Translation: translation backend (amazon, bedrock, llm)
//   - Notes: notes generation backend and sampling settings
//   - Bedrock: model and payload settings for Bedrock
//   - LLM: OpenAI-compatible endpoint settings
//   - Memory: optional SQLite translation memory
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	AWS         AWS         `toml:"aws"`
	Translation Translation `toml:"translation"`
	Notes       Notes       `toml:"notes"`
	Bedrock     Bedrock     `toml:"bedrock"`
	LLM         LLM         `toml:"llm"`
	Memory      Memory      `toml:"memory"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pptx-translator/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pptx-translator.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and, when configured, the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Memory.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.Memory.Path), 0o755); err != nil {
			return fmt.Errorf("create memory directory: %w", err)
		}
	}
	return nil
}

// TerminologyLockPath returns the lock file guarding the shared terminology name.
func (c *Config) TerminologyLockPath() string {
	return filepath.Join(c.Paths.StateDir, defaultTerminologyLockName)
}

// UsesAWS reports whether any selected backend talks to AWS.
func (c *Config) UsesAWS() bool {
	return c.Translation.Backend == BackendAmazon ||
		c.Translation.Backend == BackendBedrock ||
		c.Notes.Backend == BackendBedrock
}

// UsesLLM reports whether any selected backend talks to the OpenAI-compatible endpoint.
func (c *Config) UsesLLM() bool {
	return c.Translation.Backend == BackendLLM || c.Notes.Backend == BackendLLM
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	err := fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, sampleConfig)
		return err
	})
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
