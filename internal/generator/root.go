package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/llmclient"
)

const rootInfoSystemPrompt = `You are a vocabulary teacher explaining word roots to Taiwanese college-entrance exam students.
Given an English word, identify its most pedagogically useful root or affix, its meaning, and a short Traditional Chinese explanation connecting the root to the word's meaning. If the word has no useful root to teach, respond with an empty root field.
Respond with ONLY a JSON object, no prose, no markdown fences: {"root":"...","meaning":"...","explanation":"..."}`

// GenerateRootInfo produces the root/affix breakdown for a single level >= 2
// word (spec §4.6, supplementing original_source's root/affix decomposition
// idea). A failure or empty root is absorbed: the caller simply gets nil.
func (g *Generator) GenerateRootInfo(ctx context.Context, lemma string) (*domain.RootInfo, error) {
	text, err := g.llm.Complete(ctx, llmclient.CompletionRequest{
		System:      rootInfoSystemPrompt,
		Prompt:      fmt.Sprintf("Word: %s", lemma),
		Tier:        domain.LLMTierFast,
		Temperature: 0.2,
	})
	if err != nil {
		g.logger.WarnContext(ctx, "root info llm call failed, leaving entry without root_info", "lemma", lemma, "error", err.Error())
		return nil, nil
	}

	raw, err := llmclient.ExtractJSON(text)
	if err != nil {
		g.logger.WarnContext(ctx, "root info response had no JSON", "lemma", lemma, "error", err.Error())
		return nil, nil
	}

	var info domain.RootInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		g.logger.WarnContext(ctx, "root info response failed to parse", "lemma", lemma, "error", err.Error())
		return nil, nil
	}
	if info.Root == "" {
		return nil, nil
	}
	return &info, nil
}
