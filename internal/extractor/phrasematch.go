package extractor

import (
	"strings"

	"github.com/taigon-vocab/examprep/internal/normalizer"
)

// patternKind distinguishes the two morphological pattern shapes built for
// a phrase (spec §4.3 step 4, grounded on
// original_source/backend/src/utils/patterns.py's matcher-pattern builder).
type patternKind int

const (
	patternVerbInitial patternKind = iota
	patternLiteral
)

// MorphPattern is one way a phrase may surface in running text: either a
// verb (matched by lemma) followed by literal particles with room for one
// interstitial adverb, or a fixed literal word sequence with optional
// determiner flexibility at the front.
type MorphPattern struct {
	Phrase string
	Kind   patternKind

	verbLemma string
	particles []string // lowercase surface forms, in order

	words               []string // lowercase literal words, for patternLiteral
	leadingDeterminer   bool     // first word may be any determiner, not just its own
}

// PatternSet holds every MorphPattern built for every known phrase, ready
// to be scanned against exam sentences during backfill.
type PatternSet struct {
	patterns map[string][]MorphPattern // phrase -> patterns
}

// NewPatternSet builds a MorphPattern set for phrases, each parsed once via
// n to classify its leading token.
func NewPatternSet(phrases []string, n *normalizer.Normalizer) *PatternSet {
	set := &PatternSet{patterns: make(map[string][]MorphPattern, len(phrases))}
	for _, phrase := range phrases {
		if built := buildPatterns(phrase, n); len(built) > 0 {
			set.patterns[phrase] = built
		}
	}
	return set
}

// buildPatterns constructs the MorphPatterns for one phrase, mirroring
// _build_phrase_matcher_patterns: verb-initial phrases match by verb lemma
// plus literal particles, with one optional adverb insertion; everything
// else matches as a literal word sequence, loosened at the determiner if
// the phrase leads with one.
func buildPatterns(phrase string, n *normalizer.Normalizer) []MorphPattern {
	doc := n.Parse(phrase)
	if len(doc.Sentences) == 0 {
		return nil
	}
	tokens := meaningfulTokens(doc.Sentences[0])
	if len(tokens) < 2 {
		return nil
	}

	first := tokens[0]
	if first.POS == normalizer.POSVerb || first.POS == normalizer.POSAuxiliary {
		verbLemma := first.Lemma
		if verbLemma == "" {
			verbLemma = strings.ToLower(first.Text)
		}
		particles := make([]string, 0, len(tokens)-1)
		for _, tok := range tokens[1:] {
			particles = append(particles, strings.ToLower(tok.Text))
		}
		return []MorphPattern{{
			Phrase: phrase, Kind: patternVerbInitial,
			verbLemma: verbLemma, particles: particles,
		}}
	}

	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, strings.ToLower(tok.Text))
	}
	pattern := MorphPattern{Phrase: phrase, Kind: patternLiteral, words: words}
	patterns := []MorphPattern{pattern}
	if first.POS == normalizer.POSDeterminer && len(tokens) >= 3 {
		flexible := pattern
		flexible.leadingDeterminer = true
		patterns = append(patterns, flexible)
	}
	return patterns
}

// meaningfulTokens drops punctuation and space tokens from a phrase's own
// parse, since patterns only ever match content words.
func meaningfulTokens(sentence normalizer.Sentence) []normalizer.Token {
	out := make([]normalizer.Token, 0, len(sentence.Tokens))
	for _, tok := range sentence.Tokens {
		if tok.POS == normalizer.POSPunctuation || tok.POS == normalizer.POSSpace {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Scan finds every occurrence of every known phrase within sentence,
// returning one Span per match (deduplicated by start position within a
// single phrase).
func (s *PatternSet) Scan(sentence normalizer.Sentence) map[string][]normalizer.Span {
	results := make(map[string][]normalizer.Span)
	tokens := meaningfulTokens(sentence)

	for phrase, patterns := range s.patterns {
		seen := make(map[int]bool)
		for _, pattern := range patterns {
			for i := range tokens {
				span, matched := pattern.tryMatch(tokens, i)
				if !matched || seen[span.Start] {
					continue
				}
				seen[span.Start] = true
				results[phrase] = append(results[phrase], span)
			}
		}
	}
	return results
}

// tryMatch attempts to match p starting at tokens[start], returning the
// matched span and true on success.
func (p MorphPattern) tryMatch(tokens []normalizer.Token, start int) (normalizer.Span, bool) {
	switch p.Kind {
	case patternVerbInitial:
		return p.tryMatchVerbInitial(tokens, start)
	default:
		return p.tryMatchLiteral(tokens, start)
	}
}

func (p MorphPattern) tryMatchVerbInitial(tokens []normalizer.Token, start int) (normalizer.Span, bool) {
	if start >= len(tokens) {
		return normalizer.Span{}, false
	}
	head := tokens[start]
	if !strings.EqualFold(head.Lemma, p.verbLemma) && !strings.EqualFold(head.Text, p.verbLemma) {
		return normalizer.Span{}, false
	}

	idx := start + 1
	for _, particle := range p.particles {
		idx = skipOneAdverb(tokens, idx)
		if idx >= len(tokens) || !strings.EqualFold(tokens[idx].Text, particle) {
			return normalizer.Span{}, false
		}
		idx++
	}
	return normalizer.Span{Start: head.Start, End: tokens[idx-1].End}, true
}

// skipOneAdverb advances past a single adverb token, if one sits at idx;
// this is the "one interstitial adverb" allowance of spec §4.3 step 4.
func skipOneAdverb(tokens []normalizer.Token, idx int) int {
	if idx < len(tokens) && tokens[idx].POS == normalizer.POSAdverb {
		return idx + 1
	}
	return idx
}

func (p MorphPattern) tryMatchLiteral(tokens []normalizer.Token, start int) (normalizer.Span, bool) {
	if start+len(p.words) > len(tokens) {
		return normalizer.Span{}, false
	}
	for i, word := range p.words {
		tok := tokens[start+i]
		if i == 0 && p.leadingDeterminer {
			if tok.POS != normalizer.POSDeterminer {
				return normalizer.Span{}, false
			}
			continue
		}
		if !strings.EqualFold(tok.Text, word) {
			return normalizer.Span{}, false
		}
	}
	end := tokens[start+len(p.words)-1]
	return normalizer.Span{Start: tokens[start].Start, End: end.End}, true
}
