package extractor

import "github.com/taigon-vocab/examprep/internal/domain"

// wordAccumulator is the in-progress state for one lemma within a single
// exam's pass (thread-local; merged into the aggregate result at the
// errgroup barrier).
type wordAccumulator struct {
	frequency *domain.FrequencyCounter
	posSet    map[domain.PartOfSpeech]bool
	contexts  []domain.ContextSentence
}

func newWordAccumulator() *wordAccumulator {
	return &wordAccumulator{
		frequency: domain.NewFrequencyCounter(),
		posSet:    make(map[domain.PartOfSpeech]bool),
	}
}

// partial is everything one exam's pass 1-3 produced, keyed for an
// eventual merge into the run-wide aggregate.
type partial struct {
	words           map[string]*wordAccumulator
	phraseOccurs    map[string][]domain.PhraseOccurrence
	patternOccurs   map[domain.PatternCategory][]domain.PatternOccurrence
}

func newPartial() *partial {
	return &partial{
		words:         make(map[string]*wordAccumulator),
		phraseOccurs:  make(map[string][]domain.PhraseOccurrence),
		patternOccurs: make(map[domain.PatternCategory][]domain.PatternOccurrence),
	}
}

func (p *partial) word(lemma string) *wordAccumulator {
	acc, ok := p.words[lemma]
	if !ok {
		acc = newWordAccumulator()
		p.words[lemma] = acc
	}
	return acc
}
