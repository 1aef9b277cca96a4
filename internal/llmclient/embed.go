package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one unit vector per input text (spec §6.2), used only by
// sense-assignment tie-breaking and optional similarity edges. It shares
// this Client's semaphore and pacing with Complete (spec §5).
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries+1; attempt++ {
		if err := c.pace(ctx); err != nil {
			return nil, err
		}

		vecs, err := c.embedOnce(ctx, texts)
		c.sem.Release(1)
		if err == nil {
			return vecs, nil
		}

		lastErr = err
		if !isRetriable(err) {
			return nil, fmt.Errorf("embed: %w", err)
		}
		if attempt > c.cfg.MaxRetries {
			break
		}

		wait := time.Duration(10*attempt) * time.Second
		c.logger.WarnContext(ctx, "embed retry", "attempt", attempt, "wait", wait, "error", err.Error())
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("embed: exhausted %d retries: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Client) embedOnce(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Input: texts, Model: c.embedCfg.Model})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.embedCfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.embedCfg.APIEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.embedCfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: unexpected status %d: %s", resp.StatusCode, respBody)
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}

	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
