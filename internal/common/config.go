package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// Config represents the application configuration. Each conversion run
// takes a read-only snapshot of it at run start.
type Config struct {
	Output      OutputConfig      `toml:"output"`
	Book        BookConfig        `toml:"book"`
	LLM         LLMConfig         `toml:"llm"`
	Subtitles   SubtitlesConfig   `toml:"subtitles"`
	Images      ImagesConfig      `toml:"images"`
	Cache       CacheConfig       `toml:"cache"`
	History     HistoryConfig     `toml:"history"`
	Accumulator AccumulatorConfig `toml:"accumulator"`
	Logging     LoggingConfig     `toml:"logging"`
}

type OutputConfig struct {
	Dir        string `toml:"dir"`        // Destination directory for packaged books
	Style      string `toml:"style"`      // Built-in CSS profile name: "default", "minimal", "modern"
	Stylesheet string `toml:"stylesheet"` // Optional path to a user-supplied CSS file (overrides Style)
}

type BookConfig struct {
	Author       string `toml:"author"`
	Language     string `toml:"language"`
	ChapterWords int    `toml:"chapter_words" validate:"gte=1"` // Word budget per chapter
}

// ProviderName selects the LLM backend.
type ProviderName string

const (
	ProviderAnthropic  ProviderName = "anthropic"
	ProviderOpenRouter ProviderName = "openrouter"
)

// LLMConfig contains provider selection, credentials, global defaults and
// the prompt slots. Per-prompt overrides merge on top of the defaults;
// environment credentials take precedence over values persisted here.
type LLMConfig struct {
	Provider     ProviderName          `toml:"provider" validate:"oneof=anthropic openrouter"`
	Anthropic    AnthropicConfig       `toml:"anthropic"`
	OpenRouter   OpenRouterConfig      `toml:"openrouter"`
	MaxTokens    int                   `toml:"max_tokens"`
	Temperature  float64               `toml:"temperature"`
	TimeoutSecs  int                   `toml:"timeout_seconds"` // 0 = scale with max_tokens
	RetryCount   int                   `toml:"retry_count"`
	RateLimit    string                `toml:"rate_limit"` // Minimum interval between provider calls, e.g. "1s"
	Prompts      []models.PromptConfig `toml:"prompts" validate:"max=5,dive"`
	ActivePrompt int                   `toml:"active_prompt"` // Index into Prompts for hotkey-triggered use
}

type AnthropicConfig struct {
	APIKey string `toml:"api_key"` // ANTHROPIC_API_KEY overrides
	Model  string `toml:"model"`
}

type OpenRouterConfig struct {
	APIKey string `toml:"api_key"` // OPENROUTER_API_KEY overrides
	Model  string `toml:"model"`
}

type SubtitlesConfig struct {
	Languages    []string `toml:"languages" validate:"max=3"` // Preference order, lowercase ISO codes
	PreferNative bool     `toml:"prefer_native"`              // Native tracks before auto-generated
	Binary       string   `toml:"binary"`                     // yt-dlp executable name or path
	TimeoutSecs  int      `toml:"timeout_seconds"`
}

type ImagesConfig struct {
	EnableOCR    bool   `toml:"enable_ocr"`
	OCRBinary    string `toml:"ocr_binary"`    // tesseract executable name or path
	MaxFetchSize int    `toml:"max_fetch_size"` // Max bytes for a remote image
	FetchTimeout int    `toml:"fetch_timeout_seconds"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Badger database directory
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
}

type AccumulatorConfig struct {
	MaxClips int  `toml:"max_clips"`
	Strict   bool `toml:"strict"` // Require explicit reset before a new session
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Output: OutputConfig{
			Dir:   home + string(os.PathSeparator) + "Books",
			Style: "default",
		},
		Book: BookConfig{
			Author:       "Unknown Author",
			Language:     "en",
			ChapterWords: 5000,
		},
		LLM: LLMConfig{
			Provider: ProviderOpenRouter,
			Anthropic: AnthropicConfig{
				Model: "claude-sonnet-4-20250514",
			},
			OpenRouter: OpenRouterConfig{
				Model: "anthropic/claude-sonnet-4.5",
			},
			MaxTokens:   2048,
			Temperature: 0.2,
			TimeoutSecs: 0, // scale with max_tokens
			RetryCount:  10,
			RateLimit:   "1s",
		},
		Subtitles: SubtitlesConfig{
			Languages:    []string{"en", "es", "pt"},
			PreferNative: true,
			Binary:       "yt-dlp",
			TimeoutSecs:  120,
		},
		Images: ImagesConfig{
			EnableOCR:    false,
			OCRBinary:    "tesseract",
			MaxFetchSize: 10 * 1024 * 1024,
			FetchTimeout: 30,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "./data",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Accumulator: AccumulatorConfig{
			MaxClips: 50,
			Strict:   false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// An empty path loads defaults plus environment overrides only.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	normalize(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Credentials from the environment always win over persisted values.
func applyEnvOverrides(config *Config) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.Anthropic.APIKey = key
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		config.LLM.OpenRouter.APIKey = key
	}
	if dir := os.Getenv("CLIPTOEPUB_OUTPUT_DIR"); dir != "" {
		config.Output.Dir = dir
	}
	if level := os.Getenv("CLIPTOEPUB_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if timeout := os.Getenv("CLIPTOEPUB_YTDLP_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil && t > 0 {
			config.Subtitles.TimeoutSecs = t
		}
	}
}

// normalize trims obviously broken values back to safe ones so a sloppy
// config file degrades instead of failing validation.
func normalize(config *Config) {
	if config.Book.ChapterWords <= 0 {
		config.Book.ChapterWords = 5000
	}
	if len(config.Subtitles.Languages) > 3 {
		config.Subtitles.Languages = config.Subtitles.Languages[:3]
	}
	if len(config.Subtitles.Languages) == 0 {
		config.Subtitles.Languages = []string{"en", "es", "pt"}
	}
	if config.Accumulator.MaxClips <= 0 {
		config.Accumulator.MaxClips = 50
	}
	if config.LLM.ActivePrompt < 0 || config.LLM.ActivePrompt >= len(config.LLM.Prompts) {
		config.LLM.ActivePrompt = 0
	}
	if len(config.LLM.Prompts) > models.MaxPromptSlots {
		config.LLM.Prompts = config.LLM.Prompts[:models.MaxPromptSlots]
	}
}

// Validate runs struct validation over the configuration.
func Validate(config *Config) error {
	v := validator.New()
	if err := v.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ActivePrompt returns the prompt slot selected for hotkey-triggered use,
// or nil when no prompts are configured.
func (c *LLMConfig) GetActivePrompt() *models.PromptConfig {
	if len(c.Prompts) == 0 {
		return nil
	}
	idx := c.ActivePrompt
	if idx < 0 || idx >= len(c.Prompts) {
		idx = 0
	}
	return &c.Prompts[idx]
}
