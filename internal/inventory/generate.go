package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/llmclient"
	"github.com/taigon-vocab/examprep/internal/normalizer"
)

// clusterSense is one LLM-proposed meaning cluster: a part of speech (empty
// for phrases) and a merged English definition.
type clusterSense struct {
	POS        string `json:"pos"`
	Definition string `json:"definition"`
}

type clusterResponseEntry struct {
	Lemma    string         `json:"lemma"`
	Clusters []clusterSense `json:"clusters"`
}

type clusterResponse struct {
	Entries []clusterResponseEntry `json:"entries"`
}

const clusterSystemPrompt = `You are a lexicographer building a compact sense inventory for English vocabulary flashcards aimed at Taiwanese college-entrance exam students.
For each lemma, cluster its raw dictionary definitions into 1 to 4 pedagogically distinct meaning clusters. Preserve every distinct part of speech the raw definitions cover as its own cluster unless two parts of speech share an identical meaning. Each cluster's definition should be a single clear English sentence. Respond with ONLY a JSON object, no prose, no markdown fences.`

// clusterBatch sends up to cfg.ClusterBatchLemmas already-fetched entries to
// the LLM in one request (spec §4.5 step 4). On any LLM or parse failure the
// whole batch falls back to registering its raw dictionary senses
// individually, never aborting the pipeline.
func (b *Builder) clusterBatch(ctx context.Context, batch []fetchOutcome, results map[string][]domain.RegistrySense, mu *sync.Mutex) error {
	prompt := buildClusterPrompt(batch, b.wordlist)

	text, err := b.llm.Complete(ctx, llmclient.CompletionRequest{
		System:      clusterSystemPrompt,
		Prompt:      prompt,
		Tier:        domain.LLMTierBalanced,
		Temperature: 0.2,
	})
	if err != nil {
		b.logger.WarnContext(ctx, "cluster batch llm call failed, falling back to raw senses", "error", err.Error())
		return b.fallbackRawBatch(ctx, batch, results, mu)
	}

	raw, err := llmclient.ExtractJSON(text)
	if err != nil {
		b.logger.WarnContext(ctx, "cluster batch response had no JSON, falling back to raw senses", "error", err.Error())
		return b.fallbackRawBatch(ctx, batch, results, mu)
	}

	var parsed clusterResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		b.logger.WarnContext(ctx, "cluster batch response failed to parse, falling back to raw senses", "error", err.Error())
		return b.fallbackRawBatch(ctx, batch, results, mu)
	}

	byLemma := make(map[string]clusterResponseEntry, len(parsed.Entries))
	for _, e := range parsed.Entries {
		byLemma[domain.NormalizeText(e.Lemma)] = e
	}

	for _, fo := range batch {
		entry, ok := byLemma[domain.NormalizeText(fo.entry.Lemma)]
		if !ok || len(entry.Clusters) == 0 {
			if err := b.fallbackRawOne(ctx, fo, results, mu); err != nil {
				return err
			}
			continue
		}
		if err := b.registerClusters(ctx, fo.entry, entry.Clusters, domain.SenseSourceLLMGenerated, results, mu); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) fallbackRawBatch(ctx context.Context, batch []fetchOutcome, results map[string][]domain.RegistrySense, mu *sync.Mutex) error {
	for _, fo := range batch {
		if err := b.fallbackRawOne(ctx, fo, results, mu); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) fallbackRawOne(ctx context.Context, fo fetchOutcome, results map[string][]domain.RegistrySense, mu *sync.Mutex) error {
	for i, sense := range fo.senses {
		order := i
		pos := posFromProvider(sense.PartOfSpeech, fo.entry.IsPhrase)
		if _, err := b.registry.AddSense(ctx, fo.entry.Lemma, pos, domain.SenseSourceDictionaryAPI, sense.Definition, &order); err != nil {
			return fmt.Errorf("register raw sense for %q: %w", fo.entry.Lemma, err)
		}
	}
	return b.loadInto(ctx, fo.entry.Lemma, results, mu)
}

func (b *Builder) registerClusters(ctx context.Context, entry Entry, clusters []clusterSense, source domain.SenseSource, results map[string][]domain.RegistrySense, mu *sync.Mutex) error {
	for i, c := range clusters {
		order := i
		pos := domain.PartOfSpeechNone
		if !entry.IsPhrase {
			pos = posFromProvider(strPtr(c.POS), false)
		}
		if _, err := b.registry.AddSense(ctx, entry.Lemma, pos, source, c.Definition, &order); err != nil {
			return fmt.Errorf("register cluster sense for %q: %w", entry.Lemma, err)
		}
	}
	return b.loadInto(ctx, entry.Lemma, results, mu)
}

func (b *Builder) loadInto(ctx context.Context, lemma string, results map[string][]domain.RegistrySense, mu *sync.Mutex) error {
	senses, err := b.registry.GetSenses(ctx, lemma)
	if err != nil {
		return fmt.Errorf("reload registered senses for %q: %w", lemma, err)
	}
	mu.Lock()
	results[lemma] = senses
	mu.Unlock()
	return nil
}

const directSystemPrompt = `You are a lexicographer building a compact sense inventory for English vocabulary flashcards aimed at Taiwanese college-entrance exam students.
No dictionary data is available for this lemma. Using only the exam sentences it appears in, propose 1 to 4 pedagogically distinct meaning clusters with a clear English definition each. Respond with ONLY a JSON object, no prose, no markdown fences.`

// directGenerate handles spec §4.5 step 5: no dictionary senses exist, so
// the LLM is asked directly using the entry's exam contexts. A failure here
// is absorbed (the entry is simply left out of results) rather than
// aborting the run, per spec §8's within-stage failure policy.
func (b *Builder) directGenerate(ctx context.Context, entry Entry, results map[string][]domain.RegistrySense, mu *sync.Mutex) error {
	prompt := buildDirectPrompt(entry, b.wordlist)

	text, err := b.llm.Complete(ctx, llmclient.CompletionRequest{
		System:      directSystemPrompt,
		Prompt:      prompt,
		Tier:        domain.LLMTierBalanced,
		Temperature: 0.2,
	})
	if err != nil {
		b.logger.WarnContext(ctx, "direct generation llm call failed, leaving entry without senses", "lemma", entry.Lemma, "error", err.Error())
		return nil
	}

	raw, err := llmclient.ExtractJSON(text)
	if err != nil {
		b.logger.WarnContext(ctx, "direct generation response had no JSON, leaving entry without senses", "lemma", entry.Lemma, "error", err.Error())
		return nil
	}

	var parsed clusterResponseEntry
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		b.logger.WarnContext(ctx, "direct generation response failed to parse, leaving entry without senses", "lemma", entry.Lemma, "error", err.Error())
		return nil
	}
	if len(parsed.Clusters) == 0 {
		b.logger.WarnContext(ctx, "direct generation returned no clusters, leaving entry without senses", "lemma", entry.Lemma)
		return nil
	}

	return b.registerClusters(ctx, entry, parsed.Clusters, domain.SenseSourceLLMGenerated, results, mu)
}

func buildClusterPrompt(batch []fetchOutcome, wordlist normalizer.Wordlist) string {
	var sb strings.Builder
	sb.WriteString("Cluster the raw dictionary senses below for each lemma. Respond with:\n")
	sb.WriteString(`{"entries":[{"lemma":"<lemma>","clusters":[{"pos":"<NOUN|VERB|ADJECTIVE|ADVERB|...|empty for phrases>","definition":"<english definition>"}]}]}`)
	sb.WriteString("\n\n")
	for _, fo := range batch {
		fmt.Fprintf(&sb, "Lemma: %s%s%s\n", fo.entry.Lemma, phraseNote(fo.entry.IsPhrase), officialListNote(fo.entry.Lemma, wordlist))
		for _, s := range fo.senses {
			pos := "unknown"
			if s.PartOfSpeech != nil {
				pos = *s.PartOfSpeech
			}
			fmt.Fprintf(&sb, "  - (%s) %s\n", pos, s.Definition)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func buildDirectPrompt(entry Entry, wordlist normalizer.Wordlist) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Lemma: %s%s%s\n", entry.Lemma, phraseNote(entry.IsPhrase), officialListNote(entry.Lemma, wordlist))
	fmt.Fprintf(&sb, `Respond with: {"lemma":"%s","clusters":[{"pos":"<part of speech, empty for phrases>","definition":"<english definition>"}]}`, entry.Lemma)
	sb.WriteString("\n\nExam sentences:\n")
	for i, c := range entry.Contexts {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sb, "  - %s\n", c.Text)
	}
	return sb.String()
}

// officialListNote surfaces the official GSAT/AST wordlist's taught parts of
// speech for lemma, if it is a listed headword, so the LLM's clusters stay
// consistent with how the word is taught rather than inventing rare senses.
func officialListNote(lemma string, wordlist normalizer.Wordlist) string {
	if wordlist == nil {
		return ""
	}
	entry, ok := wordlist[strings.ToLower(lemma)]
	if !ok || len(entry.PartsOfSpeech) == 0 {
		return ""
	}
	return fmt.Sprintf(" (official list teaches this as: %s)", strings.Join(entry.PartsOfSpeech, ", "))
}

func phraseNote(isPhrase bool) string {
	if isPhrase {
		return " (multi-word phrase; clusters must omit part of speech)"
	}
	return ""
}

// posFromProvider maps a dictionary API's free-text part-of-speech string to
// domain.PartOfSpeech. Phrases always collapse to PartOfSpeechNone.
func posFromProvider(raw *string, isPhrase bool) domain.PartOfSpeech {
	if isPhrase {
		return domain.PartOfSpeechNone
	}
	if raw == nil {
		return domain.PartOfSpeechOther
	}
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case "noun":
		return domain.PartOfSpeechNoun
	case "verb":
		return domain.PartOfSpeechVerb
	case "adjective":
		return domain.PartOfSpeechAdjective
	case "adverb":
		return domain.PartOfSpeechAdverb
	case "pronoun":
		return domain.PartOfSpeechPronoun
	case "preposition":
		return domain.PartOfSpeechPreposition
	case "conjunction":
		return domain.PartOfSpeechConjunction
	case "interjection", "exclamation":
		return domain.PartOfSpeechInterjection
	case "determiner", "article":
		return domain.PartOfSpeechDeterminer
	case "":
		return domain.PartOfSpeechOther
	default:
		return domain.PartOfSpeechOther
	}
}

func strPtr(s string) *string { return &s }
