package registry

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/taigon-vocab/examprep/internal/domain"
)

func openTest(t *testing.T) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.db")
	r, err := Open(context.Background(), path, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestAddSense_DictionaryAPI_DerivesContentHashID(t *testing.T) {
	t.Parallel()
	r := openTest(t)
	ctx := context.Background()

	id, err := r.AddSense(ctx, "postpone", domain.PartOfSpeechVerb, domain.SenseSourceDictionaryAPI, "to delay until a later time", nil)
	if err != nil {
		t.Fatalf("AddSense: %v", err)
	}
	if got, want := id, "postpone.v.dict"; len(got) <= len(want) || got[:len(want)] != want {
		t.Errorf("sense_id = %q, want prefix %q", got, want)
	}
}

func TestAddSense_Phrase_UsesPhrAbbreviation(t *testing.T) {
	t.Parallel()
	r := openTest(t)
	ctx := context.Background()

	id, err := r.AddSense(ctx, "draw on", domain.PartOfSpeechNone, domain.SenseSourceDictionaryAPI, "to make use of a resource", nil)
	if err != nil {
		t.Fatalf("AddSense: %v", err)
	}
	if got, want := id, "draw on.phr.dict"; len(got) <= len(want) || got[:len(want)] != want {
		t.Errorf("sense_id = %q, want prefix %q (phrases store pos=none and must use the phr abbreviation)", got, want)
	}
}

func TestAddSense_ExactMatchReturnsSameID(t *testing.T) {
	t.Parallel()
	r := openTest(t)
	ctx := context.Background()

	id1, err := r.AddSense(ctx, "postpone", domain.PartOfSpeechVerb, domain.SenseSourceDictionaryAPI, "to delay until a later time", nil)
	if err != nil {
		t.Fatalf("AddSense #1: %v", err)
	}
	id2, err := r.AddSense(ctx, "postpone", domain.PartOfSpeechVerb, domain.SenseSourceDictionaryAPI, "to delay until a later time", nil)
	if err != nil {
		t.Fatalf("AddSense #2: %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected re-registering identical (lemma,pos,source,definition) to return the same sense_id, got %q and %q", id1, id2)
	}

	senses, err := r.GetSenses(ctx, "postpone")
	if err != nil {
		t.Fatalf("GetSenses: %v", err)
	}
	if len(senses) != 1 {
		t.Fatalf("expected exactly one stored sense, got %d", len(senses))
	}
}

func TestAddSense_LLMGenerated_MonotonicRegistryIndex(t *testing.T) {
	t.Parallel()
	r := openTest(t)
	ctx := context.Background()

	id1, err := r.AddSense(ctx, "bank", domain.PartOfSpeechNoun, domain.SenseSourceLLMGenerated, "a financial institution", nil)
	if err != nil {
		t.Fatalf("AddSense #1: %v", err)
	}
	id2, err := r.AddSense(ctx, "bank", domain.PartOfSpeechNoun, domain.SenseSourceLLMGenerated, "the land alongside a river", nil)
	if err != nil {
		t.Fatalf("AddSense #2: %v", err)
	}
	if id1 == id2 {
		t.Fatalf("expected distinct definitions to get distinct sense_ids, both got %q", id1)
	}
	if got, want := id1, "bank.n.reg0"; got != want {
		t.Errorf("id1 = %q, want %q", got, want)
	}
	if got, want := id2, "bank.n.reg1"; got != want {
		t.Errorf("id2 = %q, want %q", got, want)
	}
}

func TestAddSense_UpdatesSenseOrderOnExactMatch(t *testing.T) {
	t.Parallel()
	r := openTest(t)
	ctx := context.Background()

	order := 3
	id, err := r.AddSense(ctx, "run", domain.PartOfSpeechVerb, domain.SenseSourceManual, "to move fast on foot", &order)
	if err != nil {
		t.Fatalf("AddSense: %v", err)
	}

	newOrder := 7
	id2, err := r.AddSense(ctx, "run", domain.PartOfSpeechVerb, domain.SenseSourceManual, "to move fast on foot", &newOrder)
	if err != nil {
		t.Fatalf("AddSense re-register: %v", err)
	}
	if id != id2 {
		t.Fatalf("expected same sense_id, got %q and %q", id, id2)
	}

	senses, err := r.GetSenses(ctx, "run")
	if err != nil {
		t.Fatalf("GetSenses: %v", err)
	}
	if len(senses) != 1 || senses[0].SenseOrder != 7 {
		t.Fatalf("expected sense_order updated to 7, got %+v", senses)
	}
}

func TestGetSenses_OrdersBySenseOrder(t *testing.T) {
	t.Parallel()
	r := openTest(t)
	ctx := context.Background()

	second := 1
	first := 0
	if _, err := r.AddSense(ctx, "light", domain.PartOfSpeechNoun, domain.SenseSourceManual, "illumination", &second); err != nil {
		t.Fatalf("AddSense: %v", err)
	}
	if _, err := r.AddSense(ctx, "light", domain.PartOfSpeechAdjective, domain.SenseSourceManual, "not heavy", &first); err != nil {
		t.Fatalf("AddSense: %v", err)
	}

	senses, err := r.GetSenses(ctx, "light")
	if err != nil {
		t.Fatalf("GetSenses: %v", err)
	}
	if len(senses) != 2 {
		t.Fatalf("expected 2 senses, got %d", len(senses))
	}
	if senses[0].POS != domain.PartOfSpeechAdjective {
		t.Errorf("expected the lower sense_order (adjective) first, got %+v", senses)
	}
}

func TestGenerationCache_MissThenHit(t *testing.T) {
	t.Parallel()
	r := openTest(t)
	ctx := context.Background()

	if _, err := r.GenerationCacheGet(ctx, "postpone", "abc123"); err != domain.ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	payload := []byte(`{"senses":[]}`)
	if err := r.GenerationCachePut(ctx, "postpone", "abc123", payload); err != nil {
		t.Fatalf("GenerationCachePut: %v", err)
	}

	got, err := r.GenerationCacheGet(ctx, "postpone", "abc123")
	if err != nil {
		t.Fatalf("GenerationCacheGet: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestGenerationCache_PutOverwrites(t *testing.T) {
	t.Parallel()
	r := openTest(t)
	ctx := context.Background()

	if err := r.GenerationCachePut(ctx, "postpone", "k", []byte("first")); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := r.GenerationCachePut(ctx, "postpone", "k", []byte("second")); err != nil {
		t.Fatalf("second put: %v", err)
	}
	got, err := r.GenerationCacheGet(ctx, "postpone", "k")
	if err != nil {
		t.Fatalf("GenerationCacheGet: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}
}

func TestWSDCache_MissThenHit(t *testing.T) {
	t.Parallel()
	r := openTest(t)
	ctx := context.Background()

	if _, err := r.WSDCacheGet(ctx, "deadbeef"); err != domain.ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	rec := domain.WSDCacheRecord{
		CacheKey:     "deadbeef",
		SenseIdx:     domain.NoSenseIndex,
		Source:       domain.WSDSourceLLM,
		ModelVersion: "cross-encoder-v1",
	}
	if err := r.WSDCachePut(ctx, rec); err != nil {
		t.Fatalf("WSDCachePut: %v", err)
	}

	got, err := r.WSDCacheGet(ctx, "deadbeef")
	if err != nil {
		t.Fatalf("WSDCacheGet: %v", err)
	}
	if got != rec {
		t.Errorf("got %+v, want %+v", got, rec)
	}
}

func TestReopen_PersistsAcrossConnections(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "registry.db")
	ctx := context.Background()

	r1, err := Open(ctx, path, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("Open #1: %v", err)
	}
	id, err := r1.AddSense(ctx, "persist", domain.PartOfSpeechVerb, domain.SenseSourceManual, "to continue to exist", nil)
	if err != nil {
		t.Fatalf("AddSense: %v", err)
	}
	if err := r1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r2, err := Open(ctx, path, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("Open #2: %v", err)
	}
	defer r2.Close()

	id2, err := r2.AddSense(ctx, "persist", domain.PartOfSpeechVerb, domain.SenseSourceManual, "to continue to exist", nil)
	if err != nil {
		t.Fatalf("AddSense after reopen: %v", err)
	}
	if id != id2 {
		t.Errorf("expected the reopened registry to recognize the existing sense, got %q vs %q", id, id2)
	}
}
