package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// NewProvider creates the configured LLM provider backend.
func NewProvider(cfg *common.LLMConfig, logger arbor.ILogger) (interfaces.LLMProvider, error) {
	switch cfg.Provider {
	case common.ProviderAnthropic:
		return NewAnthropicProvider(cfg.Anthropic.APIKey, logger)
	case common.ProviderOpenRouter:
		return NewOpenRouterProvider(cfg.OpenRouter.APIKey, logger)
	default:
		return nil, models.NewPipelineError(models.ErrKindLLMValidation,
			fmt.Errorf("unknown LLM provider %q", cfg.Provider))
	}
}

// defaultModel returns the configured model for the active provider.
func defaultModel(cfg *common.LLMConfig) string {
	if cfg.Provider == common.ProviderAnthropic {
		return cfg.Anthropic.Model
	}
	return cfg.OpenRouter.Model
}
