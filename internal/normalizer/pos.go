package normalizer

import "github.com/taigon-vocab/examprep/internal/domain"

// POS is a coarse part-of-speech tag assigned by the tagger, using the
// Universal Dependencies tagset. It is deliberately finer-grained than
// domain.PartOfSpeech: the extra categories exist only to support the
// stop-set rejection rule (spec §4.1) and are never stored downstream.
type POS string

const (
	POSNoun         POS = "NOUN"
	POSProperNoun   POS = "PROPN"
	POSVerb         POS = "VERB"
	POSAdjective    POS = "ADJ"
	POSAdverb       POS = "ADV"
	POSPronoun      POS = "PRON"
	POSAdposition   POS = "ADP"
	POSAuxiliary    POS = "AUX"
	POSConjunction  POS = "CONJ"
	POSDeterminer   POS = "DET"
	POSInterjection POS = "INTJ"
	POSNumber       POS = "NUM"
	POSParticle     POS = "PART"
	POSPunctuation  POS = "PUNCT"
	POSSpace        POS = "SPACE"
	POSSymbol       POS = "SYM"
	POSOther        POS = "X"
)

// inStopSet reports whether p is in the closed stop set that §4.1 rejects:
// { adposition, auxiliary, conjunction, determiner, number, particle,
// pronoun, punctuation, space, symbol, proper noun, other }.
func (p POS) inStopSet() bool {
	switch p {
	case POSAdposition, POSAuxiliary, POSConjunction, POSDeterminer, POSNumber,
		POSParticle, POSPronoun, POSPunctuation, POSSpace, POSSymbol, POSProperNoun, POSOther:
		return true
	}
	return false
}

// ToDomain converts a kept (non-stop-set) POS to domain.PartOfSpeech.
// Only meaningful for tags that already passed inStopSet; other tags
// collapse to domain.PartOfSpeechOther.
func (p POS) ToDomain() domain.PartOfSpeech {
	switch p {
	case POSNoun:
		return domain.PartOfSpeechNoun
	case POSVerb:
		return domain.PartOfSpeechVerb
	case POSAdjective:
		return domain.PartOfSpeechAdjective
	case POSAdverb:
		return domain.PartOfSpeechAdverb
	case POSInterjection:
		return domain.PartOfSpeechInterjection
	default:
		return domain.PartOfSpeechOther
	}
}
