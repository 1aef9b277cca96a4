package wsd

import (
	"strings"

	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/wsd/crossencoder"
)

// locateSurface finds the byte range of surface inside text, case
// insensitive. If a literal match fails and pos is a verb, it retries with
// common English inflections (spec §4.7 step 5: "-s, -es, -ed, -ing,
// consonant-doubling, -y→-ies/-ied, -e→-ing") before giving up.
func locateSurface(text, surface string, pos domain.PartOfSpeech) (start, end int, ok bool) {
	if start, end, ok = indexFold(text, surface); ok {
		return start, end, true
	}
	if pos != domain.PartOfSpeechVerb {
		return 0, 0, false
	}
	for _, form := range verbInflections(surface) {
		if start, end, ok = indexFold(text, form); ok {
			return start, end, true
		}
	}
	return 0, 0, false
}

func indexFold(text, needle string) (start, end int, ok bool) {
	if needle == "" {
		return 0, 0, false
	}
	idx := strings.Index(strings.ToLower(text), strings.ToLower(needle))
	if idx == -1 {
		return 0, 0, false
	}
	return idx, idx + len(needle), true
}

// verbInflections enumerates the common English verb surface forms spec
// §4.7 step 5 names, in the order they're worth trying.
func verbInflections(base string) []string {
	if base == "" {
		return nil
	}
	base = strings.ToLower(base)
	var forms []string
	last := base[len(base)-1]

	forms = append(forms, base+"s", base+"es", base+"ed", base+"ing")

	if strings.HasSuffix(base, "y") && len(base) > 1 && !isVowel(base[len(base)-2]) {
		stem := base[:len(base)-1]
		forms = append(forms, stem+"ies", stem+"ied")
	}

	if last == 'e' && len(base) > 1 {
		stem := base[:len(base)-1]
		forms = append(forms, stem+"ing")
	}

	if len(base) >= 2 && isSingleClosedSyllableConsonant(base) {
		doubled := base + string(last)
		forms = append(forms, doubled+"ed", doubled+"ing")
	}

	return forms
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// isSingleClosedSyllableConsonant reports whether base ends in a single
// consonant preceded by a single vowel (e.g. "stop", "plan"), the shape
// that doubles its final consonant before -ed/-ing.
func isSingleClosedSyllableConsonant(base string) bool {
	n := len(base)
	if n < 3 {
		return false
	}
	last, mid, prev := base[n-1], base[n-2], base[n-3]
	if isVowel(last) || !isVowel(mid) || isVowel(prev) {
		return false
	}
	switch last {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

// markTarget locates surface in ctx.Text and wraps it with the
// cross-encoder's <t>…</t> delimiter tokens (spec §4.7 step 5, §6). It
// returns false if the surface cannot be located at all, in which case the
// context is dropped (spec §4.7 step 1).
func markTarget(ctx domain.ContextSentence) (marked string, ok bool) {
	start, end, ok := locateSurface(ctx.Text, ctx.Surface, ctx.POS)
	if !ok {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(ctx.Text[:start])
	sb.WriteString(crossencoder.TargetOpen)
	sb.WriteString(ctx.Text[start:end])
	sb.WriteString(crossencoder.TargetClose)
	sb.WriteString(ctx.Text[end:])
	return sb.String(), true
}
