// Package inventory implements the Sense Inventory Builder (C5, spec §4.5):
// for each cleaned word or phrase it ensures the sense registry holds a
// short, pedagogically distinct list of senses (target 1-4), fetching from
// a dictionary API and/or clustering with an LLM as needed.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/taigon-vocab/examprep/internal/config"
	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/llmclient"
	"github.com/taigon-vocab/examprep/internal/normalizer"
	"github.com/taigon-vocab/examprep/internal/provider"
)

// Entry is one lemma or phrase whose sense inventory needs to exist in the
// registry before the Definition Generator (C6) runs.
type Entry struct {
	Lemma    string
	IsPhrase bool               // phrases always register senses with POS = None
	Contexts []domain.ContextSentence // used to ground the direct-LLM fallback prompt
}

// senseStore is the subset of *registry.Registry this package needs; kept
// as an interface so tests can substitute a fake.
type senseStore interface {
	GetSenses(ctx context.Context, lemma string) ([]domain.RegistrySense, error)
	AddSense(ctx context.Context, lemma string, pos domain.PartOfSpeech, source domain.SenseSource, definition string, senseOrder *int) (string, error)
}

// dictFetcher is the subset of *freedict.Provider this package needs.
type dictFetcher interface {
	FetchEntry(ctx context.Context, word string) (*provider.DictionaryResult, error)
}

// completer is the subset of *llmclient.Client this package needs.
type completer interface {
	Complete(ctx context.Context, req llmclient.CompletionRequest) (string, error)
}

// Builder runs the per-entry registry-population protocol of spec §4.5.
type Builder struct {
	registry senseStore
	dict     dictFetcher
	llm      completer
	wordlist normalizer.Wordlist
	cfg      config.PipelineConfig
	logger   *slog.Logger
}

// New creates a Builder. wordlist is used for the adverb-base retry's
// known-headword check (spec §4.1).
func New(reg senseStore, dict dictFetcher, llm completer, wordlist normalizer.Wordlist, cfg config.PipelineConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{registry: reg, dict: dict, llm: llm, wordlist: wordlist, cfg: cfg, logger: logger.With("component", "inventory")}
}

type fetchOutcome struct {
	entry  Entry
	senses []provider.SenseResult
}

// Run ensures every entry has a populated sense list in the registry and
// returns the final senses per lemma/phrase. Cache hits (registry already
// has senses) short-circuit with no network calls. Remaining entries flow
// through a dictionary-fetch queue and, depending on outcome, a cluster
// queue or a direct-LLM queue; both consumer queues drain concurrently with
// fetches still in flight (spec §4.5's producer/consumer requirement).
func (b *Builder) Run(ctx context.Context, entries []Entry) (map[string][]domain.RegistrySense, error) {
	results := make(map[string][]domain.RegistrySense, len(entries))
	var resMu sync.Mutex

	var toFetch []Entry
	for _, e := range entries {
		cached, err := b.registry.GetSenses(ctx, e.Lemma)
		if err != nil {
			return nil, fmt.Errorf("check registry cache for %q: %w", e.Lemma, err)
		}
		if len(cached) > 0 {
			results[e.Lemma] = cached
			continue
		}
		toFetch = append(toFetch, e)
	}
	if len(toFetch) == 0 {
		return results, nil
	}

	clusterCh := make(chan fetchOutcome)
	directCh := make(chan Entry)

	g, gctx := errgroup.WithContext(ctx)

	fetchGroup, fetchCtx := errgroup.WithContext(gctx)
	fetchGroup.SetLimit(8)
	for _, e := range toFetch {
		e := e
		fetchGroup.Go(func() error {
			senses, err := b.fetchWithAdverbRetry(fetchCtx, e.Lemma)
			if err != nil {
				return fmt.Errorf("dictionary fetch %q: %w", e.Lemma, err)
			}
			if len(senses) > 0 {
				select {
				case clusterCh <- fetchOutcome{entry: e, senses: senses}:
				case <-fetchCtx.Done():
					return fetchCtx.Err()
				}
			} else {
				select {
				case directCh <- e:
				case <-fetchCtx.Done():
					return fetchCtx.Err()
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		err := fetchGroup.Wait()
		close(clusterCh)
		close(directCh)
		return err
	})

	g.Go(func() error {
		return b.consumeClusterQueue(gctx, clusterCh, results, &resMu)
	})

	g.Go(func() error {
		return b.consumeDirectQueue(gctx, directCh, results, &resMu)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fetchWithAdverbRetry fetches dictionary senses for lemma, retrying once
// with the adverb->adjective base rewrite (spec §4.1/§4.5 step 3) if the
// first attempt returns nothing.
func (b *Builder) fetchWithAdverbRetry(ctx context.Context, lemma string) ([]provider.SenseResult, error) {
	result, err := b.dict.FetchEntry(ctx, lemma)
	if err != nil {
		return nil, err
	}
	if result != nil && len(result.Senses) > 0 {
		return result.Senses, nil
	}

	base := normalizer.RewriteAdverbBase(lemma)
	if base == lemma {
		return nil, nil
	}

	retryResult, err := b.dict.FetchEntry(ctx, base)
	if err != nil {
		return nil, err
	}
	if retryResult == nil {
		return nil, nil
	}
	return retryResult.Senses, nil
}

func (b *Builder) consumeClusterQueue(ctx context.Context, ch <-chan fetchOutcome, results map[string][]domain.RegistrySense, mu *sync.Mutex) error {
	cg, cctx := errgroup.WithContext(ctx)
	cg.SetLimit(4)

	batchSize := max(b.cfg.ClusterBatchLemmas, 1)
	batch := make([]fetchOutcome, 0, batchSize)
	flushBatch := func(items []fetchOutcome) {
		cg.Go(func() error { return b.clusterBatch(cctx, items, results, mu) })
	}

	for fo := range ch {
		batch = append(batch, fo)
		if len(batch) >= batchSize {
			flushBatch(batch)
			batch = make([]fetchOutcome, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		flushBatch(batch)
	}

	return cg.Wait()
}

func (b *Builder) consumeDirectQueue(ctx context.Context, ch <-chan Entry, results map[string][]domain.RegistrySense, mu *sync.Mutex) error {
	dg, dctx := errgroup.WithContext(ctx)
	dg.SetLimit(4)

	for e := range ch {
		e := e
		dg.Go(func() error { return b.directGenerate(dctx, e, results, mu) })
	}

	return dg.Wait()
}
