package normalizer

import "strings"

// adverbSuffixes lists the endings whose adjective base the rewrite may
// substitute (spec §4.1: "-ally", "-ily", or "-ly").
var adverbSuffixes = []struct {
	suffix string
	base   func(string) string
}{
	{"ally", trimSuffixAppend("ally", "al")},
	{"ily", trimSuffixAppend("ily", "y")},
	{"ly", trimSuffixAppend("ly", "")},
}

// rewriteAdverbLemma substitutes an adverb's lemma with its adjective base
// when the base is a known headword, either in the official wordlist or
// already seen elsewhere in the corpus this run. It never applies the
// rewrite otherwise, leaving the adverb's own form as its lemma.
//
// corpusSeen reports whether base has been observed as a lemma already
// (e.g. from a prior sentence in the same run); it may be nil, in which
// case only wordlist membership is consulted.
func rewriteAdverbLemma(lemma string, wordlist Wordlist, corpusSeen func(base string) bool) string {
	for _, rule := range adverbSuffixes {
		if !strings.HasSuffix(lemma, rule.suffix) || len(lemma) <= len(rule.suffix) {
			continue
		}
		base := rule.base(lemma)
		if wordlist != nil && wordlist.Contains(base) {
			return base
		}
		if corpusSeen != nil && corpusSeen(base) {
			return base
		}
	}
	return lemma
}

// RewriteAdverbBase returns the adjective base candidate for an -ly/-ily/-ally
// word without any known-headword gating — used by the Sense Inventory
// Builder's dictionary-retry step (spec §4.5 step 3), which only needs a
// plausible alternate spelling to query, not a lemma assignment. Returns
// lemma unchanged if no adverb suffix matches.
func RewriteAdverbBase(lemma string) string {
	for _, rule := range adverbSuffixes {
		if !strings.HasSuffix(lemma, rule.suffix) || len(lemma) <= len(rule.suffix) {
			continue
		}
		return rule.base(lemma)
	}
	return lemma
}
