package wsd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/llmclient"
)

const llmFallbackSystemPrompt = `You are resolving word-sense disambiguation cases an automatic scorer could not decide confidently. For each numbered item you are given a sentence with its target word wrapped in <t>...</t>, and a numbered list of candidate sense definitions. Pick the sense number that best matches how the target word is used in the sentence, or 0 if the target is part of an idiom or fixed expression where no single listed sense applies.
Respond with ONLY a JSON object, no prose, no markdown fences, in this shape:
{"decisions":[{"item":1,"sense":2}]}`

// decisionsResponse is the LLM fallback's expected reply shape.
type decisionsResponse struct {
	Decisions []struct {
		Item  int `json:"item"`
		Sense int `json:"sense"`
	} `json:"decisions"`
}

// resolveLLMFallback drives spec §4.7 step 7: up to ~cfg.WSDFallbackBatchLemmas
// ambiguous cases per prompt, a 1-based sense index per item or 0 for
// idiom, each returned decision applied and cached with source llm.
func (r *Resolver) resolveLLMFallback(ctx context.Context, results map[string]*Result, tasks []pendingTask) error {
	if len(tasks) == 0 {
		return nil
	}

	batchSize := defaultIfZero(r.cfg.WSDFallbackBatchLemmas, 15)
	for start := 0; start < len(tasks); start += batchSize {
		batch := tasks[start:min(start+batchSize, len(tasks))]
		if err := r.resolveLLMBatch(ctx, results, batch); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveLLMBatch(ctx context.Context, results map[string]*Result, batch []pendingTask) error {
	text, err := r.llm.Complete(ctx, llmclient.CompletionRequest{
		System:      llmFallbackSystemPrompt,
		Prompt:      buildFallbackPrompt(batch),
		Tier:        domain.LLMTierBalanced,
		Temperature: 0.1,
	})
	if err != nil {
		return fmt.Errorf("wsd llm fallback call: %w", err)
	}

	raw, err := llmclient.ExtractJSON(text)
	if err != nil {
		r.logger.WarnContext(ctx, "wsd llm fallback response had no JSON, skipping batch", "error", err.Error())
		return nil
	}

	var parsed decisionsResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		r.logger.WarnContext(ctx, "wsd llm fallback response failed to parse, skipping batch", "error", err.Error())
		return nil
	}

	bySense := make(map[int]int, len(parsed.Decisions))
	for _, d := range parsed.Decisions {
		bySense[d.Item] = d.Sense
	}

	for i, task := range batch {
		item := i + 1
		sense, ok := bySense[item]
		if !ok {
			r.logger.WarnContext(ctx, "wsd llm fallback omitted an item, leaving it unresolved", "lemma", task.lemma, "item", item)
			continue
		}
		if err := r.applyLLMDecision(ctx, results, task, sense); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) applyLLMDecision(ctx context.Context, results map[string]*Result, task pendingTask, sense int) error {
	if sense <= 0 || sense > len(task.candidates) {
		return r.cache.WSDCachePut(ctx, domain.WSDCacheRecord{
			CacheKey: task.cacheKey, SenseIdx: domain.NoSenseIndex, Source: domain.WSDSourceLLM, ModelVersion: llmFallbackModelVersion,
		})
	}

	winner := task.candidates[sense-1]
	res := results[task.lemma]
	appendExampleByID(res, winner.SenseID, task.original)

	senseIdx := indexOfSenseID(res.Senses, winner.SenseID)
	return r.cache.WSDCachePut(ctx, domain.WSDCacheRecord{
		CacheKey: task.cacheKey, SenseIdx: senseIdx, Source: domain.WSDSourceLLM, ModelVersion: llmFallbackModelVersion,
	})
}

func buildFallbackPrompt(batch []pendingTask) string {
	var sb strings.Builder
	for i, task := range batch {
		fmt.Fprintf(&sb, "Item %d: %s\n", i+1, task.marked)
		for j, cand := range task.candidates {
			fmt.Fprintf(&sb, "  %d. %s\n", j+1, senseDefinitionText(cand))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
