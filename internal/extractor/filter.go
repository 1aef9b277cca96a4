package extractor

import "github.com/taigon-vocab/examprep/internal/domain"

// passageSections are the section types spec §4.3 step 5 treats as
// passage-bearing: a word seen only here, only once, is likely
// article-specific vocabulary rather than a teachable headword.
var passageSections = map[domain.SectionType]bool{
	domain.SectionTypeReading:   true,
	domain.SectionTypeMixed:     true,
	domain.SectionTypeCloze:     true,
	domain.SectionTypeDiscourse: true,
}

// isPassageSpecificSingleYear reports whether contexts, taken together,
// only ever appeared in one year and one passage-bearing section —
// the signature of domain-specific vocabulary unlikely to be tested again
// (spec §4.3 step 5(c)). Reference-exam contexts (gsat_ref/gsat_trial)
// are excluded from the year count to avoid a reference exam's recycled
// content producing a false multi-year signal; if only reference contexts
// exist, they are evaluated directly instead.
func isPassageSpecificSingleYear(contexts []domain.ContextSentence) bool {
	if len(contexts) == 0 {
		return false
	}

	var primary []domain.ContextSentence
	for _, c := range contexts {
		if !c.Source.ExamType.IsReference() {
			primary = append(primary, c)
		}
	}

	if len(primary) == 0 {
		years := distinctYears(contexts)
		sections := distinctSections(contexts)
		return len(years) == 1 && len(sections) == 1 && passageSections[onlySection(sections)]
	}

	years := distinctYears(primary)
	if len(years) > 1 {
		return false
	}

	sections := distinctSections(primary)
	for section := range sections {
		if !passageSections[section] {
			return false
		}
	}
	return len(sections) == 1
}

func distinctYears(contexts []domain.ContextSentence) map[int16]bool {
	out := make(map[int16]bool)
	for _, c := range contexts {
		out[c.Source.Year] = true
	}
	return out
}

func distinctSections(contexts []domain.ContextSentence) map[domain.SectionType]bool {
	out := make(map[domain.SectionType]bool)
	for _, c := range contexts {
		out[c.Source.SectionType] = true
	}
	return out
}

func onlySection(sections map[domain.SectionType]bool) domain.SectionType {
	for s := range sections {
		return s
	}
	return ""
}

// isIncidentalVocab reports whether a word was never tested, only ever
// seen as background context.
func isIncidentalVocab(freq *domain.FrequencyCounter) bool {
	return freq.TestedCount == 0
}

// shouldFilterRareWord applies spec §4.3 step 5 in full: drop a word if
// it is absent from the official wordlist, never tested, and every
// context is passage-specific single-year.
func shouldFilterRareWord(inOfficialList bool, freq *domain.FrequencyCounter, contexts []domain.ContextSentence) bool {
	if inOfficialList {
		return false
	}
	if !isIncidentalVocab(freq) {
		return false
	}
	return isPassageSpecificSingleYear(contexts)
}
