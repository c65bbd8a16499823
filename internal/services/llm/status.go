package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/moisescabello/cliptoepub/internal/models"
)

// classifyStatus translates a provider HTTP status into the shared
// failure taxonomy. Request timeouts map to the timeout kind; other
// transient statuses map to the rate-limited kind so the retry loop
// treats them uniformly.
func classifyStatus(status int) models.ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return models.ErrKindLLMAuth
	case status == http.StatusRequestTimeout || status == http.StatusTooEarly:
		return models.ErrKindLLMTimeout
	case status == http.StatusTooManyRequests || status == http.StatusConflict:
		return models.ErrKindLLMRateLimited
	case status >= 500:
		return models.ErrKindLLMRateLimited
	case status >= 400:
		return models.ErrKindLLMValidation
	default:
		return models.ErrKindInternal
	}
}

// classifyTransport translates non-HTTP failures (context expiry,
// connection errors) into the taxonomy.
func classifyTransport(ctx context.Context, err error) models.ErrorKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return models.ErrKindLLMTimeout
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return models.ErrKindCancelled
	default:
		// Connection resets and DNS failures are worth retrying.
		return models.ErrKindLLMRateLimited
	}
}
