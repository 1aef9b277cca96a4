package database

import (
	"fmt"
	"strings"

	"github.com/taigon-vocab/examprep/internal/domain"
)

// Issue is one validation finding against a final entry (spec §4.8:
// "validation failures are collected into a sidecar error file").
// Critical issues (no senses, no subtypes) exclude the entry from output;
// all others are reported but the entry is kept.
type Issue struct {
	EntryType string `json:"entry_type"`
	Lemma     string `json:"lemma"`
	Field     string `json:"field"`
	Message   string `json:"message"`
	Critical  bool   `json:"critical"`
}

func issue(entryType, lemma, field, message string, critical bool) Issue {
	return Issue{EntryType: entryType, Lemma: lemma, Field: field, Message: message, Critical: critical}
}

// validateWord checks the Word invariants spec §4.8 lists: nonempty sense
// definitions, sense_id begins with the lemma key, and entry POS covers
// every sense's POS.
func validateWord(w domain.Word) []Issue {
	var issues []Issue
	if len(w.Senses) == 0 {
		return []Issue{issue("word", w.Lemma, "senses", "word has no senses", true)}
	}

	lemmaKey := domain.NormalizeText(w.Lemma)
	posCovered := make(map[domain.PartOfSpeech]bool, len(w.POS))
	for _, p := range w.POS {
		posCovered[p] = true
	}

	for _, s := range w.Senses {
		issues = append(issues, validateSense("word", w.Lemma, lemmaKey, s)...)
		if s.POS != "" && !posCovered[s.POS] {
			issues = append(issues, issue("word", w.Lemma, "pos",
				fmt.Sprintf("sense %s has pos %s not listed in entry pos[]", s.SenseID, s.POS), false))
		}
	}
	return issues
}

// validatePhrase mirrors validateWord, minus the POS-coverage check:
// phrases always store pos = none (spec §3).
func validatePhrase(p domain.Phrase) []Issue {
	if len(p.Senses) == 0 {
		return []Issue{issue("phrase", p.Lemma, "senses", "phrase has no senses", true)}
	}
	lemmaKey := domain.NormalizeText(p.Lemma)
	var issues []Issue
	for _, s := range p.Senses {
		issues = append(issues, validateSense("phrase", p.Lemma, lemmaKey, s)...)
	}
	return issues
}

func validateSense(entryType, lemma, lemmaKey string, s domain.VocabSense) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.EnglishDefinition) == "" && strings.TrimSpace(s.ChineseGloss) == "" {
		issues = append(issues, issue(entryType, lemma, "senses",
			fmt.Sprintf("sense %s has an empty definition", s.SenseID), false))
	}
	if !strings.HasPrefix(s.SenseID, lemmaKey) {
		issues = append(issues, issue(entryType, lemma, "sense_id",
			fmt.Sprintf("sense_id %q does not begin with lemma key %q", s.SenseID, lemmaKey), false))
	}
	return issues
}

// validatePattern checks that a pattern has a teaching explanation and
// that every subtype carries a generated example (spec §4.8). A pattern
// with no subtypes at all is a critical issue.
func validatePattern(p domain.Pattern) []Issue {
	if len(p.Subtypes) == 0 {
		return []Issue{issue("pattern", p.Lemma, "subtypes", "pattern has no subtypes", true)}
	}

	var issues []Issue
	if strings.TrimSpace(p.TeachingExplanation) == "" {
		issues = append(issues, issue("pattern", p.Lemma, "teaching_explanation", "pattern has no teaching explanation", false))
	}
	for _, st := range p.Subtypes {
		if strings.TrimSpace(st.GeneratedExample) == "" {
			issues = append(issues, issue("pattern", p.Lemma, "subtypes",
				fmt.Sprintf("subtype %s has no generated example", st.Subtype), false))
		}
	}
	return issues
}
