package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterProvider sends completion requests through OpenRouter's
// OpenAI-compatible chat completions API. Anthropic models routed this
// way use names like "anthropic/claude-sonnet-4.5".
type OpenRouterProvider struct {
	client *http.Client
	apiKey string
	logger arbor.ILogger
}

// NewOpenRouterProvider creates an OpenRouter-backed provider. The API
// key must already be resolved (environment beats persisted config).
// Request timeouts come from the per-call context.
func NewOpenRouterProvider(apiKey string, logger arbor.ILogger) (*OpenRouterProvider, error) {
	if apiKey == "" {
		return nil, models.NewPipelineError(models.ErrKindLLMAuth,
			fmt.Errorf("OpenRouter API key is required (set OPENROUTER_API_KEY or llm.openrouter.api_key)"))
	}

	return &OpenRouterProvider{
		client: &http.Client{},
		apiKey: apiKey,
		logger: logger,
	}, nil
}

var _ interfaces.LLMProvider = (*OpenRouterProvider)(nil)

func (p *OpenRouterProvider) Name() string {
	return "openrouter"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (p *OpenRouterProvider) Send(ctx context.Context, req models.CompletionRequest) (*models.CompletionResponse, error) {
	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Input})

	payload, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindInternal, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if ref := os.Getenv("OPENROUTER_REFERRER"); ref != "" {
		httpReq.Header.Set("HTTP-Referer", ref)
	}
	if title := os.Getenv("OPENROUTER_TITLE"); title != "" {
		httpReq.Header.Set("X-Title", title)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, models.NewPipelineError(classifyTransport(ctx, err), fmt.Errorf("openrouter: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewPipelineError(classifyTransport(ctx, err), fmt.Errorf("openrouter: %w", err))
	}

	if resp.StatusCode >= 400 {
		return nil, p.translateHTTPError(resp.StatusCode, body, req.Model)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, models.NewPipelineError(models.ErrKindInternal,
			fmt.Errorf("openrouter: malformed response: %w", err))
	}
	if parsed.Error != nil {
		return nil, models.NewPipelineError(models.ErrKindLLMValidation,
			fmt.Errorf("openrouter: %s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, models.NewPipelineError(models.ErrKindLLMValidation,
			fmt.Errorf("empty completion from model %s", req.Model))
	}

	model := parsed.Model
	if model == "" {
		model = req.Model
	}
	return &models.CompletionResponse{
		Text:  parsed.Choices[0].Message.Content,
		Model: model,
	}, nil
}

// translateHTTPError maps an OpenRouter error status onto the shared
// failure taxonomy, surfacing unknown-model errors distinctly.
func (p *OpenRouterProvider) translateHTTPError(status int, body []byte, model string) error {
	detail := extractErrorDetail(body)

	if detail != "" && strings.Contains(strings.ToLower(detail), "model") &&
		strings.Contains(strings.ToLower(detail), "not") &&
		strings.Contains(strings.ToLower(detail), "found") {
		return models.NewPipelineError(models.ErrKindLLMValidation,
			fmt.Errorf("openrouter model not found: %q (example: \"anthropic/claude-sonnet-4.5\")", model))
	}

	kind := classifyStatus(status)
	if detail == "" {
		return models.NewPipelineError(kind, fmt.Errorf("openrouter: HTTP %d", status))
	}
	return models.NewPipelineError(kind, fmt.Errorf("openrouter: HTTP %d: %s", status, detail))
}

func extractErrorDetail(body []byte) string {
	var parsed struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return parsed.Error.Message
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(body))
}
