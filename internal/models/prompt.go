package models

// MaxPromptSlots is the number of prompt configurations that can coexist.
const MaxPromptSlots = 5

// PromptOverrides are per-prompt parameter overrides. Zero values mean
// "inherit the global default"; resolution never passes a zero through
// to a provider.
type PromptOverrides struct {
	Model          string  `toml:"model" json:"model,omitempty"`
	MaxTokens      int     `toml:"max_tokens" json:"max_tokens,omitempty"`
	Temperature    float64 `toml:"temperature" json:"temperature,omitempty"`
	TimeoutSeconds int     `toml:"timeout_seconds" json:"timeout_seconds,omitempty"`
	RetryCount     int     `toml:"retry_count" json:"retry_count,omitempty"`
}

// PromptConfig is one named prompt slot. Template is the system prompt
// text sent alongside the captured content.
type PromptConfig struct {
	Name      string          `toml:"name" json:"name" validate:"required"`
	Template  string          `toml:"template" json:"template" validate:"required"`
	Overrides PromptOverrides `toml:"overrides" json:"overrides"`
}

// Identity returns a stable string identifying the prompt for cache
// fingerprinting: same name + template + overrides means same identity.
func (p PromptConfig) Identity() string {
	return p.Name + "\x00" + p.Template + "\x00" + p.Overrides.Model
}

// CompletionRequest carries fully resolved parameters (post-override
// merge) and the rendered prompt. Providers receive it as-is.
type CompletionRequest struct {
	SystemPrompt string
	Input        string
	Model        string
	MaxTokens    int
	Temperature  float64
	RetryCount   int
}

// CompletionResponse is the provider's answer: rewritten Markdown text.
type CompletionResponse struct {
	Text  string
	Model string
}
