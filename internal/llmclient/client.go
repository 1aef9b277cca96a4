// Package llmclient wraps the external LLM and embedding calls behind the
// two operations spec.md §6 names: complete and embed. Both share one
// process-wide semaphore and minimum inter-request delay (spec §5).
package llmclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"

	"github.com/taigon-vocab/examprep/internal/config"
	"github.com/taigon-vocab/examprep/internal/domain"
)

// Client is the shared LLM/embedding client. Constructed once per process
// and passed to every stage that needs a completion or an embedding.
type Client struct {
	anthropic anthropic.Client
	cfg       config.LLMConfig
	embedCfg  config.EmbeddingConfig
	httpClient *http.Client

	sem *semaphore.Weighted

	mu            sync.Mutex
	nextAllowedAt time.Time

	logger *slog.Logger
}

// New creates a Client from the LLM and embedding configuration. Both the
// fast/balanced/smart completion tiers and embed() share cfg.Concurrency
// and cfg.RequestDelay (spec §5: "embedding calls share the same
// semaphore").
func New(cfg config.LLMConfig, embedCfg config.EmbeddingConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		anthropic:  anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:        cfg,
		embedCfg:   embedCfg,
		httpClient: &http.Client{Timeout: embedCfg.Timeout},
		sem:        semaphore.NewWeighted(int64(cfg.Concurrency)),
		logger:     logger.With("component", "llmclient"),
	}
}

// pace acquires a semaphore slot and blocks until the minimum inter-request
// delay since the last request start has elapsed (spec §5).
func (c *Client) pace(ctx context.Context) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire llm semaphore: %w", err)
	}

	c.mu.Lock()
	wait := time.Until(c.nextAllowedAt)
	c.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.sem.Release(1)
			return ctx.Err()
		}
	}

	c.mu.Lock()
	c.nextAllowedAt = time.Now().Add(c.cfg.RequestDelay)
	c.mu.Unlock()

	return nil
}

func (c *Client) modelFor(tier domain.LLMTier) anthropic.Model {
	switch tier {
	case domain.LLMTierFast:
		return anthropic.Model(c.cfg.ModelFast)
	case domain.LLMTierSmart:
		return anthropic.Model(c.cfg.ModelSmart)
	default:
		return anthropic.Model(c.cfg.ModelBalanced)
	}
}

// CompletionRequest is one complete() call (spec §6.1).
type CompletionRequest struct {
	System      string
	Prompt      string
	Tier        domain.LLMTier
	Temperature float64 // 0 means "use config default"
	MaxTokens   int64   // 0 means "use a 4096 default"
}

// Complete sends one request and returns the raw response text. Callers
// extract and parse the JSON they asked for (see ExtractJSON) — the schema
// itself is just part of the prompt, the same way the teacher's enricher
// prompts for a fixed JSON shape rather than using tool-call schemas.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.cfg.DefaultTemperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries+1; attempt++ {
		if err := c.pace(ctx); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
		msg, err := c.anthropic.Messages.New(callCtx, anthropic.MessageNewParams{
			Model:       c.modelFor(req.Tier),
			MaxTokens:   maxTokens,
			Temperature: anthropic.Float(temperature),
			System:      []anthropic.TextBlockParam{{Text: req.System}},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
			},
		})
		cancel()
		c.sem.Release(1)

		if err == nil {
			if len(msg.Content) == 0 {
				return "", fmt.Errorf("llm: empty response")
			}
			return msg.Content[0].Text, nil
		}

		lastErr = err
		if !isRetriable(err) {
			return "", fmt.Errorf("llm completion: %w", err)
		}
		if attempt > c.cfg.MaxRetries {
			break
		}

		wait := time.Duration(10*attempt) * time.Second
		c.logger.WarnContext(ctx, "llm retry", "attempt", attempt, "wait", wait, "error", err.Error())

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("llm completion: exhausted %d retries: %w", c.cfg.MaxRetries, lastErr)
}

// isRetriable reports whether err looks like a transient upstream failure
// (rate limit, timeout, 5xx) per spec §5's retry policy.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{"429", "500", "502", "503", "504", "overloaded", "timeout", "deadline exceeded"} {
		if strings.Contains(strings.ToLower(msg), marker) {
			return true
		}
	}
	return false
}

// ExtractJSON finds the first complete JSON object or array in s, tolerating
// a model response that wraps its JSON in prose or a markdown code fence.
func ExtractJSON(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	startObj, startArr := strings.IndexByte(s, '{'), strings.IndexByte(s, '[')
	start := startObj
	open, closeCh := byte('{'), byte('}')
	if start == -1 || (startArr != -1 && startArr < start) {
		start = startArr
		open, closeCh = '[', ']'
	}
	if start == -1 {
		return "", fmt.Errorf("no JSON value found in response")
	}

	end := strings.LastIndexByte(s, closeCh)
	if end == -1 || end <= start {
		return "", fmt.Errorf("no closing %q found for JSON value", closeCh)
	}
	_ = open
	return s[start : end+1], nil
}
