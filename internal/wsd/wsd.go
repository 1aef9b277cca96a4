// Package wsd implements the WSD Resolver (C7, spec §4.7): for every
// quality context sentence belonging to a multi-sense entry, it decides
// which sense the sentence illustrates, or marks it "no sense applies"
// (idiom / fixed expression), and attaches the sentence as an exam example
// on the winning sense.
package wsd

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/taigon-vocab/examprep/internal/config"
	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/llmclient"
	"github.com/taigon-vocab/examprep/internal/wsd/crossencoder"
)

// Entry is one lemma or phrase ready for sense disambiguation: its fixed
// generated senses (spec §4.6 output) plus the quality context sentences
// found for it during extraction (spec §4.3).
type Entry struct {
	Lemma    string
	Senses   []domain.VocabSense
	Contexts []domain.ContextSentence
}

// Result is Entry's Senses with ExamExamples attached by resolution.
type Result struct {
	Lemma  string
	Senses []domain.VocabSense
}

// wsdCache is the subset of *registry.Registry this package needs.
type wsdCache interface {
	WSDCacheGet(ctx context.Context, cacheKey string) (domain.WSDCacheRecord, error)
	WSDCachePut(ctx context.Context, rec domain.WSDCacheRecord) error
}

// completer is the subset of *llmclient.Client this package needs.
type completer interface {
	Complete(ctx context.Context, req llmclient.CompletionRequest) (string, error)
}

// scoreGapAssign, noSenseScoreCeiling and noSenseGapCeiling are spec §4.7
// step 6's fixed thresholds on the top cross-encoder score and its gap to
// the runner-up.
const (
	scoreGapAssign      = 0.15
	noSenseScoreCeiling = 2.5
	noSenseGapCeiling   = 0.05
)

// llmFallbackModelVersion tags WSDCacheRecord rows decided by the LLM
// fallback (spec §4.7 step 7, §4.7: "Model identity is recorded with every
// cache entry"). It is independent of crossencoder.ModelVersion because the
// LLM tier behind it can change models without invalidating neural-scored
// rows, and vice versa.
const llmFallbackModelVersion = "wsd-llm-fallback-v1"

// Resolver runs the per-context pipeline of spec §4.7. The neural scorer is
// injected already loaded; callers own its Load/Unload lifecycle around
// Run so GPU memory is released before or after other model holders per
// spec §5 ("the WSD stage explicitly releases ... the neural scorer").
type Resolver struct {
	cache  wsdCache
	scorer crossencoder.Scorer
	llm    completer
	cfg    config.PipelineConfig
	logger *slog.Logger
}

func New(cache wsdCache, scorer crossencoder.Scorer, llm completer, cfg config.PipelineConfig, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cache: cache, scorer: scorer, llm: llm, cfg: cfg, logger: logger.With("component", "wsd")}
}

// pendingTask is a context whose sense could not be resolved without the
// neural scorer: POS filtering left more than one candidate.
type pendingTask struct {
	lemma      string
	marked     string
	original   domain.ContextSentence
	candidates []domain.VocabSense
	cacheKey   string
}

// Run resolves every context sentence in entries and returns each entry's
// senses with ExamExamples attached.
func (r *Resolver) Run(ctx context.Context, entries []Entry) (map[string]Result, error) {
	results := make(map[string]*Result, len(entries))
	for _, e := range entries {
		sensesCopy := make([]domain.VocabSense, len(e.Senses))
		copy(sensesCopy, e.Senses)
		results[e.Lemma] = &Result{Lemma: e.Lemma, Senses: sensesCopy}
	}

	var pending []pendingTask
	for _, e := range entries {
		res := results[e.Lemma]
		for _, c := range e.Contexts {
			marked, ok := markTarget(c)
			if !ok {
				r.logger.WarnContext(ctx, "dropping context, target surface not located", "lemma", e.Lemma, "surface", c.Surface)
				continue
			}

			// Step 1: fast path for single- or zero-sense entries.
			if len(res.Senses) <= 1 {
				if len(res.Senses) == 1 {
					appendExample(&res.Senses[0], c)
				}
				continue
			}

			// Step 2: cache probe.
			key := contextCacheKey(e.Lemma, c.Text, senseIDs(res.Senses))
			rec, err := r.cache.WSDCacheGet(ctx, key)
			if err == nil {
				applyDecision(res, rec.SenseIdx, c)
				continue
			}
			if err != domain.ErrCacheMiss {
				return nil, fmt.Errorf("wsd cache lookup for %q: %w", e.Lemma, err)
			}

			// Step 3 + 4: POS filter, assign directly if it disambiguates.
			candidates := filterByPOS(res.Senses, c.POS)
			if len(candidates) == 1 {
				appendExampleByID(res, candidates[0].SenseID, c)
				continue
			}

			pending = append(pending, pendingTask{
				lemma: e.Lemma, marked: marked, original: c, candidates: candidates, cacheKey: key,
			})
		}
	}

	if err := r.resolvePending(ctx, results, pending); err != nil {
		return nil, err
	}

	out := make(map[string]Result, len(results))
	for lemma, res := range results {
		out[lemma] = *res
	}
	return out, nil
}

// resolvePending drives spec §4.7 steps 5-7 over every context that needs
// neural scoring, chunked to cfg.WSDChunkSize contexts at a time so the
// WSD cache is written in chunk-sized flushes (spec §4.7: "a crash loses
// at most the last chunk"). In this implementation each decision is
// already cached the instant it's made (registry writes are single-row
// transactions, per the existing WSDCachePut grounding), so chunking here
// only bounds how many pairs a single cross-encoder/LLM round handles at
// once; it does not defer any cache writes to a chunk boundary.
func (r *Resolver) resolvePending(ctx context.Context, results map[string]*Result, pending []pendingTask) error {
	chunkSize := defaultIfZero(r.cfg.WSDChunkSize, 200)

	for start := 0; start < len(pending); start += chunkSize {
		chunk := pending[start:min(start+chunkSize, len(pending))]
		var llmBatch []pendingTask

		scores, err := r.scoreChunk(ctx, chunk)
		if err != nil {
			return err
		}

		offset := 0
		for _, task := range chunk {
			taskScores := scores[offset : offset+len(task.candidates)]
			offset += len(task.candidates)

			idx, sStar, delta := topAndGap(taskScores)
			switch {
			case delta >= scoreGapAssign:
				if err := r.assignAndCache(ctx, results, task, idx, crossencoder.ModelVersion); err != nil {
					return err
				}
			case sStar < noSenseScoreCeiling && delta < noSenseGapCeiling:
				if err := r.noSenseAndCache(ctx, results, task, crossencoder.ModelVersion); err != nil {
					return err
				}
			default:
				llmBatch = append(llmBatch, task)
			}
		}

		if err := r.resolveLLMFallback(ctx, results, llmBatch); err != nil {
			return err
		}
	}
	return nil
}

// scoreChunk scores every (task, candidate) pair in chunk, batched to
// cfg.WSDCrossEncoderBatch pairs per forward pass (spec §4.7: "~64 per
// forward pass"), and returns one flat score slice in task-then-candidate
// order.
func (r *Resolver) scoreChunk(ctx context.Context, chunk []pendingTask) ([]float32, error) {
	var pairs []crossencoder.Pair
	for _, task := range chunk {
		for _, cand := range task.candidates {
			pairs = append(pairs, crossencoder.Pair{Sentence: task.marked, Definition: senseDefinitionText(cand)})
		}
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	batchSize := defaultIfZero(r.cfg.WSDCrossEncoderBatch, 64)
	scores := make([]float32, 0, len(pairs))
	for start := 0; start < len(pairs); start += batchSize {
		batch := pairs[start:min(start+batchSize, len(pairs))]
		out, err := r.scorer.Score(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("cross-encoder scoring: %w", err)
		}
		scores = append(scores, out...)
	}
	return scores, nil
}

// topAndGap returns the index of the top score, the top score itself, and
// its gap to the runner-up (spec §4.7 step 6).
func topAndGap(scores []float32) (topIdx int, sStar, delta float32) {
	type scored struct {
		idx   int
		score float32
	}
	ranked := make([]scored, len(scores))
	for i, s := range scores {
		ranked[i] = scored{idx: i, score: s}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	sStar = ranked[0].score
	if len(ranked) > 1 {
		delta = ranked[0].score - ranked[1].score
	} else {
		delta = ranked[0].score
	}
	return ranked[0].idx, sStar, delta
}

func (r *Resolver) assignAndCache(ctx context.Context, results map[string]*Result, task pendingTask, winnerIdx int, modelVersion string) error {
	res := results[task.lemma]
	winner := task.candidates[winnerIdx]
	appendExampleByID(res, winner.SenseID, task.original)

	senseIdx := indexOfSenseID(res.Senses, winner.SenseID)
	return r.cache.WSDCachePut(ctx, domain.WSDCacheRecord{
		CacheKey: task.cacheKey, SenseIdx: senseIdx, Source: domain.WSDSourceGradedWSD, ModelVersion: modelVersion,
	})
}

func (r *Resolver) noSenseAndCache(ctx context.Context, results map[string]*Result, task pendingTask, modelVersion string) error {
	return r.cache.WSDCachePut(ctx, domain.WSDCacheRecord{
		CacheKey: task.cacheKey, SenseIdx: domain.NoSenseIndex, Source: domain.WSDSourceGradedWSD, ModelVersion: modelVersion,
	})
}

// senseDefinitionText builds the definition side of a scored pair, folding
// in the generated example per spec §4.7 step 5 ("Sense definition text
// includes the generated example from §4.6 to disambiguate near-synonyms").
func senseDefinitionText(s domain.VocabSense) string {
	if s.GeneratedExample == "" {
		return s.EnglishDefinition
	}
	return s.EnglishDefinition + " " + s.GeneratedExample
}

func filterByPOS(senses []domain.VocabSense, pos domain.PartOfSpeech) []domain.VocabSense {
	if pos == "" {
		return senses
	}
	var matched []domain.VocabSense
	for _, s := range senses {
		if s.POS == pos {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return senses
	}
	return matched
}

func appendExample(s *domain.VocabSense, c domain.ContextSentence) {
	s.ExamExamples = append(s.ExamExamples, domain.ExamExample{Text: c.Text, Source: c.Source})
}

func appendExampleByID(res *Result, senseID string, c domain.ContextSentence) {
	if idx := indexOfSenseID(res.Senses, senseID); idx >= 0 {
		appendExample(&res.Senses[idx], c)
	}
}

// applyDecision applies a cached or freshly-decided sense index (spec §4.4:
// NoSenseIndex means "no sense applies", so nothing is attached).
func applyDecision(res *Result, senseIdx int, c domain.ContextSentence) {
	if senseIdx == domain.NoSenseIndex {
		return
	}
	if senseIdx < 0 || senseIdx >= len(res.Senses) {
		return
	}
	appendExample(&res.Senses[senseIdx], c)
}

func indexOfSenseID(senses []domain.VocabSense, senseID string) int {
	for i, s := range senses {
		if s.SenseID == senseID {
			return i
		}
	}
	return -1
}

func senseIDs(senses []domain.VocabSense) []string {
	ids := make([]string, len(senses))
	for i, s := range senses {
		ids[i] = s.SenseID
	}
	return ids
}

// contextCacheKey implements spec §4.7's key: sha1(lemma + "|" + sentence +
// "|" + sorted sense_ids).
func contextCacheKey(lemma, sentence string, ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(lemma + "|" + sentence + "|" + strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}

func defaultIfZero(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
