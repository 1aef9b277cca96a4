package normalizer

import "testing"

func makeSentence(n *Normalizer, text string) Sentence {
	return n.parseSentence(text)
}

func TestFindSpans_Substring(t *testing.T) {
	t.Parallel()

	n := New()
	sentence := makeSentence(n, "The committee will postpone the vote.")
	spans := findSpans(sentence, "postpone")
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	got := sentence.Text[spans[0].Start:spans[0].End]
	if got != "postpone" {
		t.Fatalf("got %q, want %q", got, "postpone")
	}
}

func TestFindSpans_SingleTokenLemma(t *testing.T) {
	t.Parallel()

	n := New()
	sentence := makeSentence(n, "She postponed the meeting.")
	spans := findSpans(sentence, "postpone")
	if len(spans) == 0 {
		t.Fatalf("expected a lemma match for %q", "postpone")
	}
}

func TestFindSpans_MultiToken(t *testing.T) {
	t.Parallel()

	n := New()
	sentence := makeSentence(n, "He gave up smoking last year.")
	spans := findSpans(sentence, "gave up")
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	got := sentence.Text[spans[0].Start:spans[0].End]
	if got != "gave up" {
		t.Fatalf("got %q, want %q", got, "gave up")
	}
}

func TestFindSpans_NoMatch(t *testing.T) {
	t.Parallel()

	n := New()
	sentence := makeSentence(n, "The sky is blue.")
	spans := findSpans(sentence, "xylophone")
	if spans != nil {
		t.Fatalf("got %v, want nil", spans)
	}
}
