// Package llm contains the rewrite orchestrator and its provider
// backends. The orchestrator owns retry, timeout, and rate-limit
// policy; providers only translate wire errors into the shared
// failure taxonomy.
package llm

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// requestState tracks one request through the orchestrator.
type requestState string

const (
	statePending   requestState = "pending"
	stateSending   requestState = "sending"
	stateRetrying  requestState = "retrying"
	stateSucceeded requestState = "succeeded"
	stateFailed    requestState = "failed"
)

const (
	backoffBase = 500 * time.Millisecond
	backoffCap  = 10 * time.Second
	jitterSpan  = 250 * time.Millisecond

	minRequestTimeout = 30 * time.Second
	maxRequestTimeout = 300 * time.Second
)

// Service drives completion requests against a provider with retry,
// adaptive timeout, and rate limiting applied uniformly.
type Service struct {
	provider interfaces.LLMProvider
	cfg      *common.LLMConfig
	limiter  *rate.Limiter
	logger   arbor.ILogger
}

// NewService creates the rewrite orchestrator for the configured
// provider.
func NewService(cfg *common.LLMConfig, provider interfaces.LLMProvider, logger arbor.ILogger) *Service {
	interval := time.Second
	if cfg.RateLimit != "" {
		if d, err := time.ParseDuration(cfg.RateLimit); err == nil && d > 0 {
			interval = d
		}
	}
	return &Service{
		provider: provider,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		logger:   logger,
	}
}

var _ interfaces.RewriteService = (*Service)(nil)

// Rewrite sends text through the provider with the prompt's resolved
// parameters. Retriable failures are retried with truncated
// exponential backoff; the caller only sees terminal outcomes.
func (s *Service) Rewrite(ctx context.Context, text string, prompt *models.PromptConfig) (string, error) {
	if prompt == nil {
		return "", models.NewPipelineError(models.ErrKindLLMValidation,
			fmt.Errorf("no prompt configured"))
	}

	req, timeout := s.resolveRequest(text, prompt)

	s.logger.Info().
		Str("provider", s.provider.Name()).
		Str("model", req.Model).
		Str("prompt", prompt.Name).
		Str("state", string(statePending)).
		Dur("timeout", timeout).
		Int("retry_budget", req.RetryCount).
		Msg("Starting rewrite")

	var lastErr error
	for attempt := 0; attempt <= req.RetryCount; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", models.NewPipelineError(models.ErrKindCancelled, err)
		}

		s.logger.Debug().
			Str("state", string(stateSending)).
			Int("attempt", attempt+1).
			Msg("Submitting request")

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := s.provider.Send(attemptCtx, req)
		cancel()

		if err == nil {
			s.logger.Info().
				Str("state", string(stateSucceeded)).
				Str("model", resp.Model).
				Int("attempts", attempt+1).
				Int("response_length", len(resp.Text)).
				Msg("Rewrite succeeded")
			return resp.Text, nil
		}

		lastErr = err
		kind := models.KindOf(err)

		if ctx.Err() != nil {
			return "", models.NewPipelineError(models.ErrKindCancelled, ctx.Err())
		}
		if !kind.Retriable() {
			s.logger.Error().
				Err(err).
				Str("state", string(stateFailed)).
				Str("kind", string(kind)).
				Int("attempt", attempt+1).
				Msg("Rewrite failed")
			return "", err
		}
		if attempt == req.RetryCount {
			break
		}

		delay := backoffDelay(attempt)
		s.logger.Warn().
			Err(err).
			Str("state", string(stateRetrying)).
			Str("kind", string(kind)).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Retriable failure, backing off")

		if err := sleepCtx(ctx, delay); err != nil {
			return "", models.NewPipelineError(models.ErrKindCancelled, err)
		}
	}

	s.logger.Error().
		Err(lastErr).
		Str("state", string(stateFailed)).
		Int("retry_budget", req.RetryCount).
		Msg("Retry budget exhausted")
	return "", models.NewPipelineError(models.ErrKindLLMExhaustedRetries,
		fmt.Errorf("retry budget of %d exhausted: %w", req.RetryCount, lastErr))
}

// resolveRequest merges prompt overrides over the global defaults and
// computes the request timeout. Zero-valued overrides inherit.
func (s *Service) resolveRequest(text string, prompt *models.PromptConfig) (models.CompletionRequest, time.Duration) {
	req := models.CompletionRequest{
		SystemPrompt: prompt.Template,
		Input:        text,
		Model:        defaultModel(s.cfg),
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  s.cfg.Temperature,
		RetryCount:   s.cfg.RetryCount,
	}
	o := prompt.Overrides
	if o.Model != "" {
		req.Model = o.Model
	}
	if o.MaxTokens > 0 {
		req.MaxTokens = o.MaxTokens
	}
	if o.Temperature > 0 {
		req.Temperature = o.Temperature
	}
	if o.RetryCount > 0 {
		req.RetryCount = o.RetryCount
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = 2048
	}
	if req.RetryCount < 0 {
		req.RetryCount = 0
	}

	timeoutSecs := s.cfg.TimeoutSecs
	if prompt.Overrides.TimeoutSeconds > 0 {
		timeoutSecs = prompt.Overrides.TimeoutSeconds
	}
	if timeoutSecs > 0 {
		return req, time.Duration(timeoutSecs) * time.Second
	}
	return req, scaledTimeout(req.MaxTokens)
}

// scaledTimeout derives a request timeout from the requested output
// length: one second per 50 tokens plus headroom, clamped to
// [30s, 300s].
func scaledTimeout(maxTokens int) time.Duration {
	timeout := time.Duration(maxTokens/50)*time.Second + 30*time.Second
	if timeout < minRequestTimeout {
		return minRequestTimeout
	}
	if timeout > maxRequestTimeout {
		return maxRequestTimeout
	}
	return timeout
}

// backoffDelay computes the truncated exponential backoff for an
// attempt: 500ms doubling per attempt, capped at 10s, plus jitter.
func backoffDelay(attempt int) time.Duration {
	delay := backoffBase
	for i := 0; i < attempt && delay < backoffCap; i++ {
		delay *= 2
	}
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay + time.Duration(rand.Int63n(int64(jitterSpan)))
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
