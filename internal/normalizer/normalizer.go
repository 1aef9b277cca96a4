package normalizer

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// sentenceBoundary splits on a run of sentence-final punctuation followed
// by whitespace, keeping the punctuation with the preceding sentence.
var sentenceBoundary = regexp.MustCompile(`(?:[.!?]+)(?:\s+|$)`)

// tokenPattern matches a word (Unicode letters/digits, internal apostrophes
// and hyphens) or a single punctuation/symbol character. Matching Unicode
// letters (not just ASCII) lets non-ASCII words tokenize as a single
// token, so the stop-set rejection rule can reject them by lemma rather
// than by accident of tokenization.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’-][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`)

// Normalizer turns raw sentence or passage text into a ParsedDoc: segmented
// sentences, POS-tagged and lemmatized tokens, rejecting whatever the
// closed stop set excludes (spec §4.1).
type Normalizer struct {
	wordlist Wordlist
	cache    *parseCache
	logger   *slog.Logger

	mu         sync.Mutex
	seenLemmas map[string]bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithWordlist supplies the official headword list backing the in-official
// flag and the adverb rewrite's headword gate.
func WithWordlist(w Wordlist) Option {
	return func(n *Normalizer) { n.wordlist = w }
}

// WithCacheSize overrides the process-wide parse cache capacity.
func WithCacheSize(size int) Option {
	return func(n *Normalizer) {
		cache, err := newParseCache(size)
		if err == nil {
			n.cache = cache
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = logger }
}

// New builds a Normalizer ready to Parse.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		logger:     slog.Default(),
		seenLemmas: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.cache == nil {
		cache, _ := newParseCache(defaultCacheSize)
		n.cache = cache
	}
	return n
}

// Parse segments text into sentences and tags every token, consulting the
// process-wide cache first.
func (n *Normalizer) Parse(text string) *ParsedDoc {
	if doc, ok := n.cache.get(text); ok {
		return doc
	}

	doc := &ParsedDoc{}
	for _, raw := range segmentSentences(text) {
		doc.Sentences = append(doc.Sentences, n.parseSentence(raw))
	}

	n.cache.put(text, doc)
	return doc
}

// segmentSentences splits text on sentence-final punctuation, discarding
// empty fragments.
func segmentSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		end := loc[1]
		piece := strings.TrimSpace(text[last:end])
		if piece != "" {
			sentences = append(sentences, piece)
		}
		last = end
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}

func (n *Normalizer) parseSentence(text string) Sentence {
	sentence := Sentence{Text: text}

	for _, loc := range tokenPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		surface := text[start:end]

		pos, lemma := tagAndLemmatize(strings.ToLower(surface))
		if pos == POSAdverb {
			lemma = rewriteAdverbLemma(strings.ToLower(surface), n.wordlist, n.hasSeenLemma)
		}

		if !n.accept(pos, lemma) {
			sentence.Tokens = append(sentence.Tokens, Token{
				Text: surface, POS: pos, Start: start, End: end,
			})
			continue
		}

		n.markSeenLemma(lemma)
		sentence.Tokens = append(sentence.Tokens, Token{
			Text: surface, Lemma: lemma, POS: pos, Start: start, End: end,
		})
	}

	return sentence
}

// accept applies the stop-set and malformed-lemma rejection rule (spec
// §4.1). A rejected token keeps its POS and surface text but carries no
// lemma, so it is still visible to FindSpans but never aggregated upstream.
func (n *Normalizer) accept(pos POS, lemma string) bool {
	if pos.inStopSet() {
		return false
	}
	if len(lemma) <= 1 {
		return false
	}
	return isASCII(lemma)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

func (n *Normalizer) hasSeenLemma(lemma string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seenLemmas[lemma]
}

func (n *Normalizer) markSeenLemma(lemma string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seenLemmas[lemma] = true
}
