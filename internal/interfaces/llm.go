package interfaces

import (
	"context"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// LLMProvider is the capability both backends implement. The orchestrator
// presents an identical request/response contract regardless of provider;
// provider-specific error codes are translated into the shared failure
// taxonomy before they leave Send.
type LLMProvider interface {
	// Name returns the provider identifier ("anthropic" or "openrouter").
	Name() string

	// Send submits one completion request. Errors carry a models.ErrorKind
	// so the orchestrator can classify them as retriable or terminal.
	Send(ctx context.Context, req models.CompletionRequest) (*models.CompletionResponse, error)
}

// RewriteService is the orchestrator surface consumed by the pipeline:
// one in-flight call per conversion run, retry and timeout policy applied
// internally.
type RewriteService interface {
	// Rewrite sends text through the configured provider with the given
	// prompt and returns rewritten Markdown.
	Rewrite(ctx context.Context, text string, prompt *models.PromptConfig) (string, error)
}
