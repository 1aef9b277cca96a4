package extractor

import (
	"regexp"
	"strings"
)

// compositionalStoplist holds phrases that are grammatically phrase-shaped
// but too generic to teach as a unit (spec §4.3 step 1: "not in a small
// stoplist of compositional noun phrases"), grounded on
// original_source/backend/src/utils/stage2_extract.py's common_compositional set.
var compositionalStoplist = map[string]bool{
	"a lot of":      true,
	"a cup of":      true,
	"a piece of":    true,
	"a kind of":     true,
	"a type of":     true,
	"a sort of":     true,
	"a bit of":      true,
	"a number of":   true,
	"a series of":   true,
	"a variety of":  true,
}

var (
	properNounRun = regexp.MustCompile(`[A-Z][a-z]+\s+[A-Z]`)
	articlePrefix = regexp.MustCompile(`^(a|an|the|this|that|these|those|my|your|his|her|its|our|their)\s`)
	ofPattern     = regexp.MustCompile(`^\w+\s+of\s+\w+$`)
	apostropheOK  = regexp.MustCompile(`^[\w\s]+'[\w\s]+$`)
)

// isValidPhrase applies spec §4.3 step 1's phrase-admission rule: 2-6
// tokens, no sentence-like content (quote marks, proper-noun runs), not a
// bare article phrase collapsing to under two content words, and not a
// member of the compositional stoplist.
func isValidPhrase(surface string) bool {
	if strings.ContainsAny(surface, "“”") {
		return false
	}
	if strings.ContainsAny(surface, "'’") && !apostropheOK.MatchString(surface) {
		return false
	}
	if len(surface) > 50 {
		return false
	}

	words := strings.Fields(surface)
	if len(words) < 2 || len(words) > 6 {
		return false
	}

	if properNounRun.MatchString(surface) {
		return false
	}

	lower := strings.ToLower(surface)
	if articlePrefix.MatchString(lower) {
		rest := articlePrefix.ReplaceAllString(lower, "")
		restWords := strings.Fields(rest)
		if len(restWords) < 2 {
			return false
		}
		if ofPattern.MatchString(rest) {
			return false
		}
	}

	return !compositionalStoplist[lower]
}
