package extractor

import "github.com/taigon-vocab/examprep/internal/domain"

// mergeFrequency folds src into dst. Merging is commutative and
// associative, as required by spec §5 ("aggregation functions must
// therefore be commutative") since task order across exams is unspecified.
func mergeFrequency(dst, src *domain.FrequencyCounter) {
	dst.Total += src.Total
	dst.TestedCount += src.TestedCount
	dst.ActiveTestedCount += src.ActiveTestedCount

	for _, year := range src.Years {
		addYearIfMissing(dst, year)
	}
	for role, count := range src.ByRole {
		dst.ByRole[role] += count
	}
	for section, count := range src.BySection {
		dst.BySection[section] += count
	}
	for examType, count := range src.ByExamType {
		dst.ByExamType[examType] += count
	}
}

func addYearIfMissing(counter *domain.FrequencyCounter, year int16) {
	for _, y := range counter.Years {
		if y == year {
			return
		}
	}
	counter.Years = append(counter.Years, year)
}

// mergePartials combines every per-exam partial into one aggregate, used
// as the errgroup barrier after passes 1-3 run concurrently per exam.
func mergePartials(partials []*partial) *partial {
	agg := newPartial()
	for _, p := range partials {
		for lemma, acc := range p.words {
			dst := agg.word(lemma)
			mergeFrequency(dst.frequency, acc.frequency)
			for pos := range acc.posSet {
				dst.posSet[pos] = true
			}
			dst.contexts = append(dst.contexts, acc.contexts...)
		}
		for phrase, occs := range p.phraseOccurs {
			agg.phraseOccurs[phrase] = append(agg.phraseOccurs[phrase], occs...)
		}
		for category, occs := range p.patternOccurs {
			agg.patternOccurs[category] = append(agg.patternOccurs[category], occs...)
		}
	}
	return agg
}
