// Package database implements the Database Builder (C8, spec §4.8): it
// merges the final word/phrase/pattern entries into one compact JSON
// object, validates every entry, and writes a sidecar file listing any
// validation issues found along the way.
package database

import (
	"github.com/taigon-vocab/examprep/internal/domain"
)

// Metadata is the database's summary header (spec §4.8: "{ exam_year_range,
// total_entries, count_by_type }").
type Metadata struct {
	ExamYearRange [2]int16       `json:"exam_year_range"`
	TotalEntries  int            `json:"total_entries"`
	CountByType   map[string]int `json:"count_by_type"`
}

// Database is the final output document (spec §6: "one JSON file matching
// the Final entry schema of §3").
type Database struct {
	Metadata Metadata        `json:"metadata"`
	Words    []domain.Word   `json:"words,omitempty"`
	Phrases  []domain.Phrase `json:"phrases,omitempty"`
	Patterns []domain.Pattern `json:"patterns,omitempty"`
}

// Build merges the three entry lists into a Database, excluding any entry
// with a critical validation issue (spec §4.8: "no senses, no subtypes"),
// and returns every validation issue found — critical or not — for the
// errors sidecar.
func Build(words []domain.Word, phrases []domain.Phrase, patterns []domain.Pattern) (Database, []Issue) {
	var issues []Issue

	keptWords := make([]domain.Word, 0, len(words))
	for _, w := range words {
		wordIssues := validateWord(w)
		issues = append(issues, wordIssues...)
		if !hasCritical(wordIssues) {
			keptWords = append(keptWords, w)
		}
	}

	keptPhrases := make([]domain.Phrase, 0, len(phrases))
	for _, p := range phrases {
		phraseIssues := validatePhrase(p)
		issues = append(issues, phraseIssues...)
		if !hasCritical(phraseIssues) {
			keptPhrases = append(keptPhrases, p)
		}
	}

	keptPatterns := make([]domain.Pattern, 0, len(patterns))
	for _, p := range patterns {
		patternIssues := validatePattern(p)
		issues = append(issues, patternIssues...)
		if !hasCritical(patternIssues) {
			keptPatterns = append(keptPatterns, p)
		}
	}

	db := Database{
		Metadata: Metadata{
			ExamYearRange: examYearRange(keptWords, keptPhrases, keptPatterns),
			TotalEntries:  len(keptWords) + len(keptPhrases) + len(keptPatterns),
			CountByType: map[string]int{
				"word":    len(keptWords),
				"phrase":  len(keptPhrases),
				"pattern": len(keptPatterns),
			},
		},
		Words:    keptWords,
		Phrases:  keptPhrases,
		Patterns: keptPatterns,
	}
	return db, issues
}

func hasCritical(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Critical {
			return true
		}
	}
	return false
}

func examYearRange(words []domain.Word, phrases []domain.Phrase, patterns []domain.Pattern) [2]int16 {
	var min, max int16
	seen := false
	record := func(f *domain.FrequencyCounter) {
		if f == nil {
			return
		}
		for _, y := range f.Years {
			if !seen {
				min, max, seen = y, y, true
				continue
			}
			if y < min {
				min = y
			}
			if y > max {
				max = y
			}
		}
	}
	for _, w := range words {
		record(w.Frequency)
	}
	for _, p := range phrases {
		record(p.Frequency)
	}
	for _, p := range patterns {
		record(p.Frequency)
	}
	return [2]int16{min, max}
}
