package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// AnthropicProvider sends completion requests to the Anthropic API.
type AnthropicProvider struct {
	client anthropic.Client
	logger arbor.ILogger
}

// NewAnthropicProvider creates an Anthropic-backed provider. The API
// key must already be resolved (environment beats persisted config).
func NewAnthropicProvider(apiKey string, logger arbor.ILogger) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, models.NewPipelineError(models.ErrKindLLMAuth,
			fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or llm.anthropic.api_key)"))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}, nil
}

var _ interfaces.LLMProvider = (*AnthropicProvider)(nil)

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Send(ctx context.Context, req models.CompletionRequest) (*models.CompletionResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Input)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, p.translateError(ctx, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, models.NewPipelineError(models.ErrKindLLMValidation,
			fmt.Errorf("empty completion from model %s", req.Model))
	}

	return &models.CompletionResponse{
		Text:  text.String(),
		Model: string(resp.Model),
	}, nil
}

// translateError maps an SDK error onto the shared failure taxonomy.
func (p *AnthropicProvider) translateError(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		kind := classifyStatus(apiErr.StatusCode)
		return models.NewPipelineError(kind, fmt.Errorf("anthropic: %w", err))
	}
	return models.NewPipelineError(classifyTransport(ctx, err), fmt.Errorf("anthropic: %w", err))
}
