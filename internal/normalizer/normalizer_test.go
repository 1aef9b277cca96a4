package normalizer

import "testing"

func TestNormalizer_Parse_SegmentsSentences(t *testing.T) {
	t.Parallel()

	n := New()
	doc := n.Parse("The committee postponed the vote. She disagreed strongly.")
	if len(doc.Sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(doc.Sentences))
	}
}

func TestNormalizer_Parse_CachesByRawText(t *testing.T) {
	t.Parallel()

	n := New()
	text := "The committee postponed the vote."
	first := n.Parse(text)
	second := n.Parse(text)
	if first != second {
		t.Fatal("expected the same *ParsedDoc instance from the cache")
	}
}

func TestNormalizer_Parse_RejectsStopSetTokens(t *testing.T) {
	t.Parallel()

	n := New()
	doc := n.Parse("The committee postponed the vote.")
	for _, tok := range doc.Sentences[0].Tokens {
		if tok.Text == "The" || tok.Text == "the" {
			if tok.Lemma != "" {
				t.Errorf("determiner %q should have been rejected, got lemma %q", tok.Text, tok.Lemma)
			}
		}
		if tok.Text == "." {
			if tok.Lemma != "" {
				t.Errorf("punctuation should have been rejected, got lemma %q", tok.Lemma)
			}
		}
	}
}

func TestNormalizer_Parse_KeepsContentWordLemma(t *testing.T) {
	t.Parallel()

	n := New()
	doc := n.Parse("The committee postponed the vote.")
	found := false
	for _, tok := range doc.Sentences[0].Tokens {
		if tok.Text == "postponed" {
			found = true
			if tok.Lemma == "" {
				t.Error("expected postponed to carry a lemma")
			}
		}
	}
	if !found {
		t.Fatal("expected to find token 'postponed'")
	}
}

func TestNormalizer_Parse_AdverbRewriteUsesWordlist(t *testing.T) {
	t.Parallel()

	wordlist := Wordlist{"quiet": WordlistEntry{Word: "quiet", Level: 1}}
	n := New(WithWordlist(wordlist))
	doc := n.Parse("She spoke quietly.")

	var lemma string
	for _, tok := range doc.Sentences[0].Tokens {
		if tok.Text == "quietly" {
			lemma = tok.Lemma
		}
	}
	if lemma != "quiet" {
		t.Fatalf("got lemma %q, want %q", lemma, "quiet")
	}
}

func TestNormalizer_Parse_RejectsNonASCIILemma(t *testing.T) {
	t.Parallel()

	n := New()
	doc := n.Parse("I had café au lait.")
	for _, tok := range doc.Sentences[0].Tokens {
		if tok.Text == "café" && tok.Lemma != "" {
			t.Errorf("expected café to be rejected for non-ASCII lemma, got %q", tok.Lemma)
		}
	}
}
