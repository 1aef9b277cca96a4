package domain

import "time"

// RegistrySense is one canonical sense stored in the sense registry (§4.4).
// Phrases always store POS = PartOfSpeechNone.
type RegistrySense struct {
	SenseID    string
	Lemma      string
	POS        PartOfSpeech
	Source     SenseSource
	Definition string
	SenseOrder int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// GenerationCacheRecord is one Stage-6 (Definition Generator) cache row,
// keyed by lemma + a hash over the entry's sense set. Payload is the raw
// JSON the LLM returned, reparsed by the caller.
type GenerationCacheRecord struct {
	Lemma    string
	CacheKey string
	Payload  []byte
}

// WSDDecisionSource identifies what produced a WSDCacheRecord's decision.
type WSDDecisionSource string

const (
	WSDSourceGradedWSD WSDDecisionSource = "graded_wsd"
	WSDSourceLLM       WSDDecisionSource = "llm"
)

// NoSenseIndex is the sentinel sense_idx value meaning "no sense applies"
// (spec §4.4: "sense_idx = -1 encodes 'no sense applies'").
const NoSenseIndex = -1

// WSDCacheRecord is one Stage-7 (WSD Resolver) cache row, keyed by
// sha1(lemma + "|" + sentence + "|" + sorted sense_ids).
type WSDCacheRecord struct {
	CacheKey     string
	SenseIdx     int // NoSenseIndex means "no sense applies"
	Source       WSDDecisionSource
	ModelVersion string
}
