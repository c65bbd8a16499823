package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/models"
)

// scriptedProvider fails with the scripted errors in order, then
// succeeds with Text.
type scriptedProvider struct {
	failures []error
	text     string
	calls    int
	lastReq  models.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Send(_ context.Context, req models.CompletionRequest) (*models.CompletionResponse, error) {
	p.lastReq = req
	p.calls++
	if p.calls <= len(p.failures) {
		return nil, p.failures[p.calls-1]
	}
	return &models.CompletionResponse{Text: p.text, Model: req.Model}, nil
}

func testConfig() *common.LLMConfig {
	return &common.LLMConfig{
		Provider:    common.ProviderAnthropic,
		Anthropic:   common.AnthropicConfig{Model: "claude-sonnet-4-20250514"},
		MaxTokens:   2048,
		Temperature: 0.2,
		RetryCount:  10,
		RateLimit:   "1ms",
	}
}

func testPrompt() *models.PromptConfig {
	return &models.PromptConfig{
		Name:     "rewrite",
		Template: "Rewrite the following text as clean Markdown.",
	}
}

func retriableErr() error {
	return models.NewPipelineError(models.ErrKindLLMRateLimited, errors.New("HTTP 429"))
}

func TestRewriteSucceedsAfterRetriableFailures(t *testing.T) {
	provider := &scriptedProvider{
		failures: []error{retriableErr(), retriableErr()},
		text:     "# Rewritten\n\nbody",
	}
	svc := NewService(testConfig(), provider, arbor.NewLogger())

	got, err := svc.Rewrite(context.Background(), "input text", testPrompt())
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "# Rewritten\n\nbody" {
		t.Errorf("Rewrite() = %q", got)
	}
	if provider.calls != 3 {
		t.Errorf("provider called %d times, want 3", provider.calls)
	}
}

func TestRewriteStopsOnNonRetriableFailure(t *testing.T) {
	provider := &scriptedProvider{
		failures: []error{
			models.NewPipelineError(models.ErrKindLLMAuth, errors.New("HTTP 401")),
		},
	}
	svc := NewService(testConfig(), provider, arbor.NewLogger())

	_, err := svc.Rewrite(context.Background(), "input", testPrompt())
	if models.KindOf(err) != models.ErrKindLLMAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("auth failure must not be retried, provider called %d times", provider.calls)
	}
}

func TestRewriteExhaustsRetryBudget(t *testing.T) {
	cfg := testConfig()
	cfg.RetryCount = 2

	provider := &scriptedProvider{
		failures: []error{retriableErr(), retriableErr(), retriableErr(), retriableErr()},
	}
	svc := NewService(cfg, provider, arbor.NewLogger())

	_, err := svc.Rewrite(context.Background(), "input", testPrompt())
	if models.KindOf(err) != models.ErrKindLLMExhaustedRetries {
		t.Fatalf("expected exhausted retries, got %v", err)
	}
	if provider.calls != 3 {
		t.Errorf("budget of 2 retries means 3 calls, got %d", provider.calls)
	}
}

func TestRewriteCancellationInterruptsBackoff(t *testing.T) {
	cfg := testConfig()
	cfg.RetryCount = 10

	provider := &scriptedProvider{
		failures: []error{retriableErr(), retriableErr(), retriableErr()},
	}
	svc := NewService(cfg, provider, arbor.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := svc.Rewrite(ctx, "input", testPrompt())
	if models.KindOf(err) != models.ErrKindCancelled {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation took %s, backoff sleep was not interrupted", elapsed)
	}
}

func TestResolveRequestMergesOverrides(t *testing.T) {
	svc := NewService(testConfig(), &scriptedProvider{}, arbor.NewLogger())

	prompt := &models.PromptConfig{
		Name:     "summary",
		Template: "Summarize.",
		Overrides: models.PromptOverrides{
			Model:     "claude-opus-4-20250514",
			MaxTokens: 4096,
		},
	}

	req, _ := svc.resolveRequest("text", prompt)
	if req.Model != "claude-opus-4-20250514" {
		t.Errorf("model override not applied: %s", req.Model)
	}
	if req.MaxTokens != 4096 {
		t.Errorf("max_tokens override not applied: %d", req.MaxTokens)
	}
	// Unset overrides inherit the global defaults.
	if req.Temperature != 0.2 {
		t.Errorf("temperature should inherit default, got %v", req.Temperature)
	}
	if req.RetryCount != 10 {
		t.Errorf("retry count should inherit default, got %d", req.RetryCount)
	}
}

func TestScaledTimeout(t *testing.T) {
	tests := []struct {
		maxTokens int
		expected  time.Duration
	}{
		{100, 32 * time.Second},
		{1000, 50 * time.Second},
		{2048, 70 * time.Second},
		{10000, 230 * time.Second},
		{20000, 300 * time.Second}, // clamped at the ceiling
		{1, 30 * time.Second},      // clamped at the floor
	}

	for _, tt := range tests {
		if got := scaledTimeout(tt.maxTokens); got != tt.expected {
			t.Errorf("scaledTimeout(%d) = %s, want %s", tt.maxTokens, got, tt.expected)
		}
	}
}

func TestBackoffDelayIsTruncated(t *testing.T) {
	for attempt := 0; attempt < 20; attempt++ {
		delay := backoffDelay(attempt)
		if delay < backoffBase {
			t.Errorf("attempt %d: delay %s below base", attempt, delay)
		}
		if delay > backoffCap+jitterSpan {
			t.Errorf("attempt %d: delay %s above cap", attempt, delay)
		}
	}
}
