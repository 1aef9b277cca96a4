package generator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/llmclient"
	"github.com/taigon-vocab/examprep/internal/patterns"
)

// PatternEntry is one grammar-pattern category observed in the corpus, with
// the distinct subtypes it needs a generated example for.
type PatternEntry struct {
	Category domain.PatternCategory
	Subtypes []domain.PatternSubtype
}

// PatternResult is the generated content for one PatternEntry.
type PatternResult struct {
	Category            domain.PatternCategory
	TeachingExplanation string
	SubtypeExamples      map[domain.PatternSubtype]string
}

const patternExplanationSystemPrompt = `You are a grammar teacher writing a short Traditional Chinese teaching explanation of an English grammar pattern category for Taiwanese college-entrance exam students. Explain when and why the pattern is used, in 2-4 sentences. Respond with ONLY the explanation text, no JSON, no markdown.`

const patternExampleSystemPrompt = `You are a grammar teacher writing one natural, exam-appropriate English example sentence that demonstrates a specific grammar construction. Respond with ONLY the example sentence, nothing else.`

// GeneratePatterns runs C6's pattern-category parallel path (spec §4.6): one
// LLM call per category for the teaching explanation, and one per subtype
// for a natural example, all generated concurrently.
func (g *Generator) GeneratePatterns(ctx context.Context, entries []PatternEntry) (map[domain.PatternCategory]PatternResult, error) {
	results := make(map[domain.PatternCategory]PatternResult, len(entries))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	for _, entry := range entries {
		entry := entry
		eg.Go(func() error {
			res, err := g.generatePatternEntry(egCtx, entry)
			if err != nil {
				return err
			}
			mu.Lock()
			results[entry.Category] = res
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (g *Generator) generatePatternEntry(ctx context.Context, entry PatternEntry) (PatternResult, error) {
	explanation, err := g.llm.Complete(ctx, llmclient.CompletionRequest{
		System:      patternExplanationSystemPrompt,
		Prompt:      fmt.Sprintf("Pattern category: %s (%s)\nStructures taught under it:\n%s", patterns.CategoryDisplayName(entry.Category), entry.Category, subtypeStructureList(entry.Subtypes)),
		Tier:        domain.LLMTierBalanced,
		Temperature: 0.3,
	})
	if err != nil {
		return PatternResult{}, fmt.Errorf("pattern explanation for %q: %w", entry.Category, err)
	}

	examples := make(map[domain.PatternSubtype]string, len(entry.Subtypes))
	var mu sync.Mutex
	sg, sgCtx := errgroup.WithContext(ctx)
	sg.SetLimit(4)
	for _, subtype := range entry.Subtypes {
		subtype := subtype
		sg.Go(func() error {
			example, err := g.generateSubtypeExample(sgCtx, subtype)
			if err != nil {
				return err
			}
			mu.Lock()
			examples[subtype] = example
			mu.Unlock()
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		return PatternResult{}, err
	}

	return PatternResult{
		Category:             entry.Category,
		TeachingExplanation:  explanation,
		SubtypeExamples:      examples,
	}, nil
}

func (g *Generator) generateSubtypeExample(ctx context.Context, subtype domain.PatternSubtype) (string, error) {
	prompt := fmt.Sprintf("Construction: %s\nStructure: %s\nWrite one example sentence using this construction.", patterns.SubtypeDisplayName(subtype), patterns.SubtypeStructure(subtype))
	example, err := g.llm.Complete(ctx, llmclient.CompletionRequest{
		System:      patternExampleSystemPrompt,
		Prompt:      prompt,
		Tier:        domain.LLMTierFast,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("pattern example for subtype %q: %w", subtype, err)
	}
	return example, nil
}

func subtypeStructureList(subtypes []domain.PatternSubtype) string {
	var sb []byte
	for _, s := range subtypes {
		sb = append(sb, []byte(fmt.Sprintf("  - %s: %s\n", patterns.SubtypeDisplayName(s), patterns.SubtypeStructure(s)))...)
	}
	return string(sb)
}
