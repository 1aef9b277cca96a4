// Package dedupe decides, per lemma, which sentence contexts are worth
// keeping: the Context Deduper (C2) of spec.md §4.2.
package dedupe

import (
	"strings"
	"sync"
	"unicode"

	"github.com/taigon-vocab/examprep/internal/domain"
)

// record is what the deduper remembers about one fingerprint sighting.
type record struct {
	official bool
}

// Deduper tracks, per lemma, which sentence fingerprints have already been
// recorded and whether that sighting came from an official exam. It is
// safe for concurrent use from multiple extractor workers.
type Deduper struct {
	mu   sync.RWMutex
	seen map[string]map[string]record
}

// New returns an empty Deduper.
func New() *Deduper {
	return &Deduper{seen: make(map[string]map[string]record)}
}

// Fingerprint collapses a sentence to lowercase alphanumerics separated by
// single spaces, trimmed (spec §4.2). Returns "" for a sentence with no
// alphanumeric content, which callers must treat as rejected.
func Fingerprint(sentence string) string {
	var b strings.Builder
	lastWasSpace := true // suppresses a leading space
	for _, r := range sentence {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastWasSpace = false
		default:
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Decision is the keep/drop verdict the deduper returns for one context.
type Decision int

const (
	// Drop means this sighting must not be recorded.
	Drop Decision = iota
	// Keep means this sighting should be recorded as a new context.
	Keep
	// KeepAndUpgrade means this sighting should be recorded, and any
	// previously stored reference-sourced record for this fingerprint
	// should now be treated as official.
	KeepAndUpgrade
)

// Decide applies the five ordered rules of spec §4.2 for one
// (lemma, sentence, exam_type) sighting, and records the outcome.
// official is true when examType is NOT a reference variant
// (domain.ExamType.IsReference() == false).
func (d *Deduper) Decide(lemma, sentence string, examType domain.ExamType) Decision {
	fingerprint := Fingerprint(sentence)
	if fingerprint == "" {
		return Drop
	}
	official := !examType.IsReference()

	d.mu.Lock()
	defer d.mu.Unlock()

	lemmaRecords, ok := d.seen[lemma]
	if !ok {
		lemmaRecords = make(map[string]record)
		d.seen[lemma] = lemmaRecords
	}

	prior, seenBefore := lemmaRecords[fingerprint]
	if !seenBefore {
		// Rule 1: first sighting of this fingerprint for this lemma.
		lemmaRecords[fingerprint] = record{official: official}
		return Keep
	}

	switch {
	case official && !prior.official:
		// Rule 2: official sighting upgrades a prior reference sighting.
		lemmaRecords[fingerprint] = record{official: true}
		return KeepAndUpgrade
	case !official && prior.official:
		// Rule 3: reference sighting after an official one is redundant.
		return Drop
	case !official && !prior.official:
		// Rule 4: two reference sightings of the same fingerprint.
		return Drop
	default:
		// Rule 5: two official sightings — genuine multi-year recurrence.
		return Keep
	}
}
