package normalizer

import "strings"

// findSpans implements the three-tier search mandated by spec §4.1. Each
// tier is tried in order; the first tier that produces any match wins.
func findSpans(sentence Sentence, surface string) []Span {
	surface = strings.TrimSpace(surface)
	if surface == "" {
		return nil
	}

	if spans := findSubstringSpans(sentence, surface); len(spans) > 0 {
		return spans
	}
	if spans := findSingleTokenSpans(sentence, surface); len(spans) > 0 {
		return spans
	}
	if spans := findMultiTokenSpans(sentence, surface); len(spans) > 0 {
		return spans
	}
	return nil
}

// findSubstringSpans does a case-insensitive substring search over the raw
// sentence text, then expands each match's boundaries outward to the
// enclosing tokens so a match never splits a word in half.
func findSubstringSpans(sentence Sentence, surface string) []Span {
	lowerText := strings.ToLower(sentence.Text)
	lowerSurface := strings.ToLower(surface)
	if lowerSurface == "" {
		return nil
	}

	var spans []Span
	searchFrom := 0
	for {
		idx := strings.Index(lowerText[searchFrom:], lowerSurface)
		if idx < 0 {
			break
		}
		start := searchFrom + idx
		end := start + len(surface)
		searchFrom = end

		if expanded, ok := expandToTokenBoundaries(sentence, start, end); ok {
			spans = append(spans, expanded)
		}
	}
	return spans
}

// expandToTokenBoundaries widens [start, end) to cover every token it
// overlaps, so a substring hit that lands mid-token snaps to that token's
// full extent.
func expandToTokenBoundaries(sentence Sentence, start, end int) (Span, bool) {
	found := false
	var result Span
	for _, tok := range sentence.Tokens {
		if tok.End <= start || tok.Start >= end {
			continue
		}
		if !found {
			result = Span{Start: tok.Start, End: tok.End}
			found = true
			continue
		}
		if tok.Start < result.Start {
			result.Start = tok.Start
		}
		if tok.End > result.End {
			result.End = tok.End
		}
	}
	return result, found
}

// findSingleTokenSpans matches surface against a single token's text or
// lemma, case-insensitively.
func findSingleTokenSpans(sentence Sentence, surface string) []Span {
	lowerSurface := strings.ToLower(surface)
	var spans []Span
	for _, tok := range sentence.Tokens {
		if strings.EqualFold(tok.Text, surface) || strings.ToLower(tok.Lemma) == lowerSurface {
			spans = append(spans, Span{Start: tok.Start, End: tok.End})
		}
	}
	return spans
}

// findMultiTokenSpans matches surface, split on whitespace, against every
// contiguous run of tokens with the same length, comparing surface text
// case-insensitively word by word.
func findMultiTokenSpans(sentence Sentence, surface string) []Span {
	words := strings.Fields(surface)
	if len(words) < 2 {
		return nil
	}

	var spans []Span
	for i := 0; i+len(words) <= len(sentence.Tokens); i++ {
		match := true
		for j, w := range words {
			if !strings.EqualFold(sentence.Tokens[i+j].Text, w) {
				match = false
				break
			}
		}
		if match {
			spans = append(spans, Span{
				Start: sentence.Tokens[i].Start,
				End:   sentence.Tokens[i+len(words)-1].End,
			})
		}
	}
	return spans
}
