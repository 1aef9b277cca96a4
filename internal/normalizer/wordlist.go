package normalizer

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WordlistEntry is one official GSAT/AST vocabulary list entry: a headword,
// the parts of speech it is taught under, and its difficulty level.
type WordlistEntry struct {
	Word          string
	PartsOfSpeech []string
	Level         int
}

// Wordlist is the official headword list, keyed by lowercased word. It
// backs both the in-official-list flag on CleanedWord and the adverb
// rewrite's "known headword" gate (spec §4.1).
type Wordlist map[string]WordlistEntry

// Contains reports whether lemma (case-insensitive) is an official headword.
func (w Wordlist) Contains(lemma string) bool {
	_, ok := w[strings.ToLower(lemma)]
	return ok
}

// Level returns the official level for lemma, or (0, false) if absent.
func (w Wordlist) Level(lemma string) (int, bool) {
	entry, ok := w[strings.ToLower(lemma)]
	if !ok {
		return 0, false
	}
	return entry.Level, true
}

// rawWordlistEntry mirrors the on-disk JSON shape: a map from headword to
// {"pos": [...], "level": <string or number>}.
type rawWordlistEntry struct {
	POS   []string    `json:"pos"`
	Level json.Number `json:"level"`
}

// LoadWordlist reads the official wordlist JSON file at path: a top-level
// object mapping each headword to its POS list and level.
func LoadWordlist(path string) (Wordlist, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("normalizer: read wordlist %q: %w", path, err)
	}

	var decoded map[string]rawWordlistEntry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("normalizer: parse wordlist %q: %w", path, err)
	}

	out := make(Wordlist, len(decoded))
	for word, info := range decoded {
		level, _ := strconv.Atoi(strings.TrimSpace(info.Level.String()))
		out[strings.ToLower(word)] = WordlistEntry{
			Word:          word,
			PartsOfSpeech: info.POS,
			Level:         level,
		}
	}
	return out, nil
}
