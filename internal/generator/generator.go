// Package generator implements the Definition Generator (C6, spec §4.6):
// for every entry whose sense inventory is fixed, it produces learner-facing
// bilingual definitions, a crafted example per sense, and optional
// confusion notes and root info, caching the result on a hash of the sense
// set so a stable inventory never re-hits the LLM.
package generator

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigon-vocab/examprep/internal/config"
	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/llmclient"
)

// Entry is one lemma or phrase ready for definition generation: its fixed
// registry senses plus the level (nil for phrases) that gates root_info.
type Entry struct {
	Lemma    string
	IsPhrase bool
	Level    *int
	Senses   []domain.RegistrySense
}

// Result is the generated content for one Entry, joined back onto its
// registry senses. ExamExamples is intentionally left for the WSD Resolver
// to fill in later (spec §4.6).
type Result struct {
	Lemma          string
	Senses         []domain.VocabSense
	ConfusionNotes []string
	RootInfo       *domain.RootInfo
}

// generationCache is the subset of *registry.Registry this package needs.
type generationCache interface {
	GenerationCacheGet(ctx context.Context, lemma, cacheKey string) ([]byte, error)
	GenerationCachePut(ctx context.Context, lemma, cacheKey string, payload []byte) error
}

// completer is the subset of *llmclient.Client this package needs.
type completer interface {
	Complete(ctx context.Context, req llmclient.CompletionRequest) (string, error)
}

// Generator runs the batching/caching/retry protocol of spec §4.6.
type Generator struct {
	cache  generationCache
	llm    completer
	cfg    config.PipelineConfig
	logger *slog.Logger
}

func New(cache generationCache, llm completer, cfg config.PipelineConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cache: cache, llm: llm, cfg: cfg, logger: logger.With("component", "generator")}
}

// senseContent is one sense's generated payload, joined to the registry's
// sense list by SenseIndex (spec §4.6: "joined back to the registry's sense
// list by sense_index").
type senseContent struct {
	SenseIndex        int    `json:"sense_index"`
	ChineseGloss      string `json:"chinese_gloss"`
	EnglishDefinition string `json:"english_definition"`
	GeneratedExample  string `json:"generated_example"`
}

// payload is the cached/generated content for a single lemma, independent
// of any particular LLM batch boundary.
type payload struct {
	Senses         []senseContent  `json:"senses"`
	ConfusionNotes []string        `json:"confusion_notes,omitempty"`
	RootInfo       *domain.RootInfo `json:"root_info,omitempty"`
}

// batchResponseEntry is one lemma's slot in a multi-lemma LLM response.
type batchResponseEntry struct {
	Lemma string `json:"lemma"`
	payload
}

type batchResponse struct {
	Entries []batchResponseEntry `json:"entries"`
}

const generationSystemPrompt = `You are writing bilingual (English/Traditional Chinese) vocabulary flashcard content for Taiwanese college-entrance exam students.
For each lemma you are given its fixed list of senses (sense_index, part of speech, English definition from a dictionary or prior generation). For every sense produce:
- chinese_gloss: a short, natural Traditional Chinese gloss
- english_definition: a clear one-sentence English definition suitable for a B1-B2 learner
- generated_example: one natural English example sentence illustrating that specific sense
If two or more senses of the same lemma are easily confused, add a short confusion_notes array of Chinese tips; omit it otherwise.
Respond with ONLY a JSON object, no prose, no markdown fences, in this shape:
{"entries":[{"lemma":"<lemma>","senses":[{"sense_index":0,"chinese_gloss":"...","english_definition":"...","generated_example":"..."}],"confusion_notes":["..."]}]}`

// Run generates (or loads from cache) content for every entry and returns it
// keyed by lemma. Entries whose cache key already has a row skip the LLM
// entirely. Root info for level >= 2 word entries is generated separately
// (root.go) after the main content is in hand.
func (g *Generator) Run(ctx context.Context, entries []Entry) (map[string]Result, error) {
	results := make(map[string]Result, len(entries))
	byLemma := make(map[string]Entry, len(entries))
	var toGenerate []Entry

	for _, e := range entries {
		byLemma[e.Lemma] = e
		key := cacheKey(e.Senses)
		raw, err := g.cache.GenerationCacheGet(ctx, e.Lemma, key)
		if err != nil {
			if err != domain.ErrCacheMiss {
				return nil, fmt.Errorf("generation cache lookup for %q: %w", e.Lemma, err)
			}
			toGenerate = append(toGenerate, e)
			continue
		}
		var p payload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("parse cached generation payload for %q: %w", e.Lemma, err)
		}
		results[e.Lemma] = g.buildResult(ctx, e, p)
	}

	if len(toGenerate) == 0 {
		return results, nil
	}

	generated, err := g.generateWithRetries(ctx, toGenerate)
	if err != nil {
		return nil, err
	}

	for lemma, p := range generated {
		e := byLemma[lemma]
		if eligibleForRootInfo(e) {
			info, err := g.GenerateRootInfo(ctx, lemma)
			if err != nil {
				return nil, err
			}
			p.RootInfo = info
		}

		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal generation payload for %q: %w", lemma, err)
		}
		if err := g.cache.GenerationCachePut(ctx, lemma, cacheKey(e.Senses), raw); err != nil {
			return nil, fmt.Errorf("store generation cache for %q: %w", lemma, err)
		}
		results[lemma] = g.buildResult(ctx, e, p)
	}

	return results, nil
}

// rootInfoLevel is the minimum official-list level at which root_info is
// generated (spec §4.6: "only for level >= 2 words").
const rootInfoLevel = 2

func eligibleForRootInfo(e Entry) bool {
	return !e.IsPhrase && e.Level != nil && *e.Level >= rootInfoLevel
}

// generateWithRetries batches entries into groups of cfg.GenerationBatchEntries
// and drives the 2-pass retry with exponential back-off (2s, 4s) spec §4.6
// requires for lemmas the LLM omits from its response.
func (g *Generator) generateWithRetries(ctx context.Context, entries []Entry) (map[string]payload, error) {
	results := make(map[string]payload, len(entries))
	var mu sync.Mutex

	batchSize := max(g.cfg.GenerationBatchEntries, 1)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	for i := 0; i < len(entries); i += batchSize {
		batch := entries[i:min(i+batchSize, len(entries))]
		eg.Go(func() error {
			resolved, err := g.runBatchWithRetries(egCtx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			for lemma, p := range resolved {
				results[lemma] = p
			}
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

var retryBackoffs = []time.Duration{2 * time.Second, 4 * time.Second}

func (g *Generator) runBatchWithRetries(ctx context.Context, entries []Entry) (map[string]payload, error) {
	results := make(map[string]payload, len(entries))
	pending := entries

	for attempt := 0; ; attempt++ {
		resolved, err := g.runBatch(ctx, pending)
		if err != nil {
			return nil, err
		}
		for lemma, p := range resolved {
			results[lemma] = p
		}

		var missing []Entry
		for _, e := range pending {
			if _, ok := resolved[e.Lemma]; !ok {
				missing = append(missing, e)
			}
		}
		if len(missing) == 0 {
			return results, nil
		}
		if attempt >= len(retryBackoffs) {
			lemmas := make([]string, len(missing))
			for i, e := range missing {
				lemmas[i] = e.Lemma
			}
			g.logger.WarnContext(ctx, "lemmas missing from generation response after final retry, skipping", "lemmas", strings.Join(lemmas, ","))
			return results, nil
		}

		select {
		case <-time.After(retryBackoffs[attempt]):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		pending = missing
	}
}

func (g *Generator) runBatch(ctx context.Context, entries []Entry) (map[string]payload, error) {
	text, err := g.llm.Complete(ctx, llmclient.CompletionRequest{
		System:      generationSystemPrompt,
		Prompt:      buildGenerationPrompt(entries),
		Tier:        domain.LLMTierBalanced,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("generation batch llm call: %w", err)
	}

	raw, err := llmclient.ExtractJSON(text)
	if err != nil {
		g.logger.WarnContext(ctx, "generation batch response had no JSON", "error", err.Error())
		return nil, nil
	}

	var parsed batchResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		g.logger.WarnContext(ctx, "generation batch response failed to parse", "error", err.Error())
		return nil, nil
	}

	out := make(map[string]payload, len(parsed.Entries))
	for _, e := range parsed.Entries {
		out[e.Lemma] = e.payload
	}
	return out, nil
}

func buildGenerationPrompt(entries []Entry) string {
	var sb strings.Builder
	sb.WriteString("Generate content for the following entries.\n\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "Lemma: %s\n", e.Lemma)
		for i, s := range e.Senses {
			pos := string(s.POS)
			if pos == "" {
				pos = "NONE"
			}
			fmt.Fprintf(&sb, "  sense_index %d (%s): %s\n", i, pos, s.Definition)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// buildResult joins p's sense-indexed content onto e.Senses in registry
// order, dropping out-of-range sense_index entries with a warning rather
// than failing the whole entry (spec §4.6).
func (g *Generator) buildResult(ctx context.Context, e Entry, p payload) Result {
	bySenseIndex := make(map[int]senseContent, len(p.Senses))
	for _, sc := range p.Senses {
		if sc.SenseIndex < 0 || sc.SenseIndex >= len(e.Senses) {
			g.logger.WarnContext(ctx, "dropping out-of-range sense_index from generation payload", "lemma", e.Lemma, "sense_index", sc.SenseIndex)
			continue
		}
		bySenseIndex[sc.SenseIndex] = sc
	}

	senses := make([]domain.VocabSense, 0, len(e.Senses))
	for i, rs := range e.Senses {
		sc, ok := bySenseIndex[i]
		if !ok {
			continue
		}
		senses = append(senses, domain.VocabSense{
			SenseID:           rs.SenseID,
			POS:               rs.POS,
			ChineseGloss:      sc.ChineseGloss,
			EnglishDefinition: sc.EnglishDefinition,
			GeneratedExample:  sc.GeneratedExample,
		})
	}

	return Result{
		Lemma:          e.Lemma,
		Senses:         senses,
		ConfusionNotes: p.ConfusionNotes,
		RootInfo:       p.RootInfo,
	}
}

// cacheKey implements spec §4.6's content hash:
// sha1(sorted("{sense_id}|{pos or 'NONE'}|{registry_definition}" over all senses)).
func cacheKey(senses []domain.RegistrySense) string {
	parts := make([]string, len(senses))
	for i, s := range senses {
		pos := string(s.POS)
		if pos == "" {
			pos = "NONE"
		}
		parts[i] = fmt.Sprintf("%s|%s|%s", s.SenseID, pos, s.Definition)
	}
	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}
