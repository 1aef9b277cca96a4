package normalizer

import "strings"

// closedClass holds words whose POS and lemma are fixed by membership
// rather than by shape: function words the stop set rejects outright, plus
// a handful of high-frequency irregular content words worth tagging
// correctly despite not following any suffix rule. Modeled on the exception
// table that az-ai-labs-az-lang-nlp/morph keeps alongside its suffix rules
// for forms the FSM cannot derive.
var closedClass = map[string]POS{
	"a": POSDeterminer, "an": POSDeterminer, "the": POSDeterminer,
	"this": POSDeterminer, "that": POSDeterminer, "these": POSDeterminer, "those": POSDeterminer,
	"my": POSDeterminer, "your": POSDeterminer, "his": POSDeterminer, "her": POSDeterminer,
	"its": POSDeterminer, "our": POSDeterminer, "their": POSDeterminer,
	"some": POSDeterminer, "any": POSDeterminer, "no": POSDeterminer, "every": POSDeterminer,

	"i": POSPronoun, "you": POSPronoun, "he": POSPronoun, "she": POSPronoun, "it": POSPronoun,
	"we": POSPronoun, "they": POSPronoun, "me": POSPronoun, "him": POSPronoun, "them": POSPronoun,
	"us": POSPronoun, "who": POSPronoun, "whom": POSPronoun, "whose": POSPronoun,
	"what": POSPronoun, "which": POSPronoun, "myself": POSPronoun, "yourself": POSPronoun,
	"himself": POSPronoun, "herself": POSPronoun, "itself": POSPronoun, "ourselves": POSPronoun,
	"themselves": POSPronoun, "someone": POSPronoun, "anyone": POSPronoun, "everyone": POSPronoun,
	"something": POSPronoun, "anything": POSPronoun, "everything": POSPronoun, "nothing": POSPronoun,

	"in": POSAdposition, "on": POSAdposition, "at": POSAdposition, "by": POSAdposition,
	"for": POSAdposition, "with": POSAdposition, "about": POSAdposition, "against": POSAdposition,
	"between": POSAdposition, "into": POSAdposition, "through": POSAdposition, "during": POSAdposition,
	"before": POSAdposition, "after": POSAdposition, "above": POSAdposition, "below": POSAdposition,
	"to": POSAdposition, "from": POSAdposition, "of": POSAdposition, "off": POSAdposition,
	"over": POSAdposition, "under": POSAdposition, "out": POSAdposition, "up": POSAdposition,
	"down": POSAdposition, "since": POSAdposition, "without": POSAdposition, "within": POSAdposition,

	"and": POSConjunction, "or": POSConjunction, "but": POSConjunction, "nor": POSConjunction,
	"so": POSConjunction, "yet": POSConjunction, "because": POSConjunction, "although": POSConjunction,
	"though": POSConjunction, "while": POSConjunction, "unless": POSConjunction, "if": POSConjunction,
	"whether": POSConjunction, "than": POSConjunction, "as": POSConjunction,

	"am": POSAuxiliary, "is": POSAuxiliary, "are": POSAuxiliary, "was": POSAuxiliary, "were": POSAuxiliary,
	"be": POSAuxiliary, "been": POSAuxiliary, "being": POSAuxiliary,
	"do": POSAuxiliary, "does": POSAuxiliary, "did": POSAuxiliary,
	"have": POSAuxiliary, "has": POSAuxiliary, "had": POSAuxiliary,
	"will": POSAuxiliary, "would": POSAuxiliary, "shall": POSAuxiliary, "should": POSAuxiliary,
	"can": POSAuxiliary, "could": POSAuxiliary, "may": POSAuxiliary, "might": POSAuxiliary, "must": POSAuxiliary,

	"not": POSParticle, "n't": POSParticle,

	"oh": POSInterjection, "wow": POSInterjection, "alas": POSInterjection, "ouch": POSInterjection,
	"hey": POSInterjection, "oops": POSInterjection,
}

// suffixRule maps a word-final sequence to the POS it usually signals and
// the rewrite that strips the suffix back to a lemma. Rules are tried
// longest-suffix-first so that, e.g., "-ation" is preferred over "-tion"
// only when both would apply identically; in practice each rule targets a
// distinct ending and ties do not occur within one POS class.
type suffixRule struct {
	suffix  string
	pos     POS
	lemmaOf func(word string) string
}

var nounSuffixRules = []suffixRule{
	{"tions", POSNoun, trimSuffixAppend("tions", "tion")},
	{"sions", POSNoun, trimSuffixAppend("sions", "sion")},
	{"ments", POSNoun, trimSuffixAppend("ments", "ment")},
	{"nesses", POSNoun, trimSuffixAppend("nesses", "ness")},
	{"ities", POSNoun, trimSuffixAppend("ities", "ity")},
	{"ances", POSNoun, trimSuffixAppend("ances", "ance")},
	{"ences", POSNoun, trimSuffixAppend("ences", "ence")},
	{"ships", POSNoun, trimSuffixAppend("ships", "ship")},
	{"tion", POSNoun, identity},
	{"sion", POSNoun, identity},
	{"ment", POSNoun, identity},
	{"ness", POSNoun, identity},
	{"ity", POSNoun, identity},
	{"ance", POSNoun, identity},
	{"ence", POSNoun, identity},
	{"ship", POSNoun, identity},
	{"ies", POSNoun, trimSuffixAppend("ies", "y")},
	{"ses", POSNoun, trimSuffixAppend("es", "")},
	{"xes", POSNoun, trimSuffixAppend("es", "")},
	{"ches", POSNoun, trimSuffixAppend("es", "")},
	{"shes", POSNoun, trimSuffixAppend("es", "")},
	{"s", POSNoun, trimSuffixAppend("s", "")},
}

var verbSuffixRules = []suffixRule{
	{"ied", POSVerb, trimSuffixAppend("ied", "y")},
	{"ying", POSVerb, trimSuffixAppend("ying", "y")},
	{"ies", POSVerb, trimSuffixAppend("ies", "y")},
	{"izing", POSVerb, trimSuffixAppend("zing", "ze")},
	{"izes", POSVerb, trimSuffixAppend("zes", "ze")},
	{"ized", POSVerb, trimSuffixAppend("zed", "ze")},
	{"ing", POSVerb, dropIngKeepE},
	{"ed", POSVerb, dropEdKeepE},
	{"es", POSVerb, trimSuffixAppend("es", "")},
	{"s", POSVerb, trimSuffixAppend("s", "")},
}

var adjectiveSuffixRules = []suffixRule{
	{"iest", POSAdjective, trimSuffixAppend("iest", "y")},
	{"ier", POSAdjective, trimSuffixAppend("ier", "y")},
	{"est", POSAdjective, trimSuffixAppend("est", "")},
	{"er", POSAdjective, trimSuffixAppend("er", "")},
	{"able", POSAdjective, identity},
	{"ible", POSAdjective, identity},
	{"ful", POSAdjective, identity},
	{"less", POSAdjective, identity},
	{"ous", POSAdjective, identity},
	{"ious", POSAdjective, identity},
	{"ive", POSAdjective, identity},
	{"al", POSAdjective, identity},
	{"ic", POSAdjective, identity},
	{"ical", POSAdjective, identity},
}

var adverbSuffixRules = []suffixRule{
	{"ally", POSAdverb, trimSuffixAppend("ally", "al")},
	{"ily", POSAdverb, trimSuffixAppend("ily", "y")},
	{"ly", POSAdverb, trimSuffixAppend("ly", "")},
}

func identity(word string) string { return word }

func trimSuffixAppend(suffix, replacement string) func(string) string {
	return func(word string) string {
		return strings.TrimSuffix(word, suffix) + replacement
	}
}

// dropIngKeepE strips -ing and nothing else: a silent -e dropped before
// -ing is not restored (hoping -> hop), and a doubled final consonant is
// not undone (running -> runn).
func dropIngKeepE(word string) string {
	return strings.TrimSuffix(word, "ing")
}

func dropEdKeepE(word string) string {
	return strings.TrimSuffix(word, "ed")
}

// tagAndLemmatize assigns a POS and lemma to a single lowercased word form.
// It is the core of the suffix/exception-table tagger: closed-class
// membership first, then the longest matching suffix rule per open class,
// tried in noun/verb/adjective/adverb order (ties are rare given disjoint
// endings; nouns are checked first because nominalizing suffixes are the
// most distinctive).
func tagAndLemmatize(lower string) (POS, string) {
	if pos, ok := closedClass[lower]; ok {
		return pos, lower
	}
	if entry, ok := irregular[lower]; ok {
		return entry.POS, entry.lemma
	}

	for _, group := range [][]suffixRule{adverbSuffixRules, nounSuffixRules, verbSuffixRules, adjectiveSuffixRules} {
		if pos, lemma, ok := applyLongestSuffix(lower, group); ok {
			return pos, lemma
		}
	}

	if bareVerbs[lower] {
		return POSVerb, lower
	}

	// No suffix matched: treat as an uninflected open-class word. Default
	// to noun, the most common unmarked category in English.
	return POSNoun, lower
}

// bareVerbs lists common verbs whose base form carries no inflectional
// suffix, so the suffix tables alone cannot tell them apart from a bare
// noun. Needed chiefly so phrasal-verb heads ("give up", "draw on") tag
// correctly in their uninflected form.
var bareVerbs = map[string]bool{
	"give": true, "take": true, "make": true, "put": true, "get": true,
	"go": true, "come": true, "look": true, "turn": true, "break": true,
	"draw": true, "bring": true, "carry": true, "call": true, "run": true,
	"set": true, "pick": true, "hold": true, "keep": true, "cut": true,
	"fall": true, "pull": true, "stand": true, "work": true, "show": true,
	"let": true, "hand": true, "pass": true, "point": true, "bear": true,
}

// applyLongestSuffix tries every rule in group and returns the result of
// whichever rule's suffix is longest among those that match, so that e.g.
// "-ially" matches before the shorter "-ly".
func applyLongestSuffix(word string, group []suffixRule) (POS, string, bool) {
	best := -1
	var bestRule suffixRule
	for _, rule := range group {
		if strings.HasSuffix(word, rule.suffix) && len(word) > len(rule.suffix) && len(rule.suffix) > best {
			best = len(rule.suffix)
			bestRule = rule
		}
	}
	if best < 0 {
		return "", "", false
	}
	return bestRule.pos, bestRule.lemmaOf(word), true
}

// irregular holds common irregular verbs, plurals, and comparatives whose
// lemma no suffix rule derives correctly.
var irregular = map[string]struct {
	POS
	lemma string
}{
	"went": {POSVerb, "go"}, "gone": {POSVerb, "go"}, "goes": {POSVerb, "go"},
	"was": {POSAuxiliary, "be"},
	"had": {POSAuxiliary, "have"}, "has": {POSAuxiliary, "have"},
	"did": {POSAuxiliary, "do"}, "does": {POSAuxiliary, "do"},
	"said": {POSVerb, "say"}, "says": {POSVerb, "say"},
	"made": {POSVerb, "make"},
	"took": {POSVerb, "take"}, "taken": {POSVerb, "take"},
	"came": {POSVerb, "come"},
	"saw": {POSVerb, "see"}, "seen": {POSVerb, "see"},
	"got": {POSVerb, "get"}, "gotten": {POSVerb, "get"},
	"gave": {POSVerb, "give"}, "given": {POSVerb, "give"},
	"found": {POSVerb, "find"},
	"thought": {POSVerb, "think"},
	"told": {POSVerb, "tell"},
	"became": {POSVerb, "become"},
	"left": {POSVerb, "leave"},
	"felt": {POSVerb, "feel"},
	"brought": {POSVerb, "bring"},
	"began": {POSVerb, "begin"}, "begun": {POSVerb, "begin"},
	"kept": {POSVerb, "keep"},
	"held": {POSVerb, "hold"},
	"wrote": {POSVerb, "write"}, "written": {POSVerb, "write"},
	"stood": {POSVerb, "stand"},
	"heard": {POSVerb, "hear"},
	"meant": {POSVerb, "mean"},
	"met": {POSVerb, "meet"},
	"paid": {POSVerb, "pay"},
	"sat": {POSVerb, "sit"},
	"spoke": {POSVerb, "speak"}, "spoken": {POSVerb, "speak"},
	"lay": {POSVerb, "lie"}, "lain": {POSVerb, "lie"},
	"led": {POSVerb, "lead"},
	"read": {POSVerb, "read"},
	"grew": {POSVerb, "grow"}, "grown": {POSVerb, "grow"},
	"drew": {POSVerb, "draw"}, "drawn": {POSVerb, "draw"},
	"chose": {POSVerb, "choose"}, "chosen": {POSVerb, "choose"},
	"broke": {POSVerb, "break"}, "broken": {POSVerb, "break"},
	"children": {POSNoun, "child"},
	"men":      {POSNoun, "man"},
	"women":    {POSNoun, "woman"},
	"people":   {POSNoun, "person"},
	"feet":     {POSNoun, "foot"},
	"teeth":    {POSNoun, "tooth"},
	"mice":     {POSNoun, "mouse"},
	"geese":    {POSNoun, "goose"},
	"better":   {POSAdjective, "good"}, "best": {POSAdjective, "good"},
	"worse": {POSAdjective, "bad"}, "worst": {POSAdjective, "bad"},
	"further": {POSAdjective, "far"}, "furthest": {POSAdjective, "far"},
}
