package crossencoder

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
)

// spaceMarker is RoBERTa's byte-level BPE marker for "preceded by a space"
// (the literal rune U+0120, conventionally written "Ġ"), present at the
// front of most non-initial-word vocab entries.
const spaceMarker = "Ġ"

// vocabulary is a loaded tokenizer.json vocab, plus a length-sorted token
// list so tokenizeWord can greedily match the longest known piece first.
// True byte-pair merge ranking is not attempted: the retrieval pack carries
// no BPE-merge precedent, only reranker.go's WordPiece longest-match scan,
// so that scan is adapted here over the RoBERTa vocab instead. This is
// recorded in DESIGN.md as a deliberate simplification.
type vocabulary struct {
	tokenToID map[string]int64
	byLength  []string
}

func loadVocabulary(tokenizerJSONPath string) (*vocabulary, error) {
	data, err := os.ReadFile(tokenizerJSONPath)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer vocab: %w", err)
	}

	var parsed struct {
		Model struct {
			Vocab map[string]int64 `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse tokenizer vocab: %w", err)
	}
	if len(parsed.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer vocab is empty; check tokenizer.json structure")
	}

	v := &vocabulary{tokenToID: parsed.Model.Vocab, byLength: make([]string, 0, len(parsed.Model.Vocab))}
	for tok := range parsed.Model.Vocab {
		v.byLength = append(v.byLength, tok)
	}
	sort.Slice(v.byLength, func(i, j int) bool { return len([]rune(v.byLength[i])) > len([]rune(v.byLength[j])) })
	return v, nil
}

// encodePair tokenizes a marked sentence and a sense definition into one
// RoBERTa-style two-segment sequence: <s> sentence </s></s> definition </s>,
// truncated and padded to MaxSeqLen. It returns the input_ids and
// attention_mask rows for this single pair.
func (v *vocabulary) encodePair(sentence, definition string) (inputIDs, attentionMask []int64) {
	inputIDs = make([]int64, MaxSeqLen)
	attentionMask = make([]int64, MaxSeqLen)

	sentenceTokens := v.tokenize(sentence)
	defTokens := v.tokenize(definition)

	// Reserve <s>, two </s> separators, and a trailing </s>: 4 special slots.
	budget := MaxSeqLen - 4
	maxSentence := budget * 3 / 4
	if len(sentenceTokens) > maxSentence {
		sentenceTokens = sentenceTokens[:maxSentence]
	}
	remaining := budget - len(sentenceTokens)
	if len(defTokens) > remaining {
		defTokens = defTokens[:max(remaining, 0)]
	}

	pos := 0
	put := func(id int64) {
		if pos >= MaxSeqLen {
			return
		}
		inputIDs[pos] = id
		attentionMask[pos] = 1
		pos++
	}

	put(bosTokenID)
	for _, id := range sentenceTokens {
		put(id)
	}
	put(eosTokenID)
	put(eosTokenID)
	for _, id := range defTokens {
		put(id)
	}
	put(eosTokenID)

	for ; pos < MaxSeqLen; pos++ {
		inputIDs[pos] = padTokenID
		attentionMask[pos] = 0
	}
	return inputIDs, attentionMask
}

// tokenize splits text on whitespace/punctuation, like reranker.go's
// splitWords, then resolves each resulting word against the vocabulary
// using RoBERTa's leading-space convention: every word after the first in
// a run gets the spaceMarker-prefixed form tried first.
func (v *vocabulary) tokenize(text string) []int64 {
	words := splitWords(text)
	tokens := make([]int64, 0, len(words)*2)
	for i, w := range words {
		prefixed := i > 0
		tokens = append(tokens, v.tokenizeWord(w, prefixed)...)
	}
	return tokens
}

func (v *vocabulary) tokenizeWord(word string, leadingSpace bool) []int64 {
	candidate := word
	if leadingSpace {
		candidate = spaceMarker + word
	}
	if id, ok := v.tokenToID[candidate]; ok {
		return []int64{id}
	}
	if leadingSpace {
		if id, ok := v.tokenToID[word]; ok {
			return []int64{id}
		}
	}
	return v.greedyLongestMatch(candidate)
}

// greedyLongestMatch walks the vocabulary's length-sorted token list and
// repeatedly peels off the longest known prefix, falling back to <unk> for
// one rune at a time when nothing matches (adapted from reranker.go's
// wordPieceTokenize, without the WordPiece "##" continuation marker since
// RoBERTa's byte-level vocab has no such convention).
func (v *vocabulary) greedyLongestMatch(s string) []int64 {
	var out []int64
	remaining := []rune(s)
	for len(remaining) > 0 {
		matched := false
		for _, tok := range v.byLength {
			tokRunes := []rune(tok)
			if len(tokRunes) > len(remaining) {
				continue
			}
			if string(remaining[:len(tokRunes)]) == tok {
				out = append(out, v.tokenToID[tok])
				remaining = remaining[len(tokRunes):]
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, unkTokenID)
			remaining = remaining[1:]
		}
	}
	return out
}

func splitWords(text string) []string {
	var words []string
	var current strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
			words = append(words, string(r))
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}
