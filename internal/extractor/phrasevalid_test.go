package extractor

import "testing"

func TestIsValidPhrase(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"give up":            true,
		"in terms of":        true,
		"a lot of":           false, // compositional stoplist
		"word":               false, // single word
		"a seven word long phrase exceeding six": false,
		"the cat":            false, // article + single content word
		"the same boat":      true,
		"John Smith arrived": false, // proper-noun run
	}
	for phrase, want := range cases {
		if got := isValidPhrase(phrase); got != want {
			t.Errorf("isValidPhrase(%q) = %v, want %v", phrase, got, want)
		}
	}
}
