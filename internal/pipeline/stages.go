package pipeline

import (
	"context"
	"log/slog"
	"sort"

	"github.com/taigon-vocab/examprep/internal/adapter/freedict"
	"github.com/taigon-vocab/examprep/internal/config"
	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/extractor"
	"github.com/taigon-vocab/examprep/internal/generator"
	"github.com/taigon-vocab/examprep/internal/inventory"
	"github.com/taigon-vocab/examprep/internal/llmclient"
	"github.com/taigon-vocab/examprep/internal/normalizer"
	"github.com/taigon-vocab/examprep/internal/patterns"
	"github.com/taigon-vocab/examprep/internal/registry"
	"github.com/taigon-vocab/examprep/internal/seeder/wordnet"
	"github.com/taigon-vocab/examprep/internal/wsd"
)

// sortedStringKeys returns the sorted keys of m, used everywhere here to
// turn extraction's maps into a deterministic processing order.
func sortedStringKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// runInventory builds C5's entry list from the extractor's cleaned words
// and phrases and runs the Sense Inventory Builder.
func runInventory(
	ctx context.Context,
	reg *registry.Registry,
	dict *freedict.Provider,
	llm *llmclient.Client,
	wordlist normalizer.Wordlist,
	cfg config.PipelineConfig,
	logger *slog.Logger,
	extracted *extractor.Result,
	progress ProgressFunc,
) (map[string][]domain.RegistrySense, error) {
	builder := inventory.New(reg, dict, llm, wordlist, cfg, logger)

	var entries []inventory.Entry
	for _, lemma := range sortedStringKeys(extracted.Words) {
		w := extracted.Words[lemma]
		entries = append(entries, inventory.Entry{Lemma: w.Lemma, IsPhrase: false, Contexts: w.Contexts})
	}
	for _, lemma := range sortedStringKeys(extracted.Phrases) {
		p := extracted.Phrases[lemma]
		entries = append(entries, inventory.Entry{Lemma: p.Lemma, IsPhrase: true, Contexts: p.Contexts})
	}

	senses, err := builder.Run(ctx, entries)
	if err != nil {
		return nil, err
	}
	report(progress, len(entries), len(entries), "build sense inventory")
	return senses, nil
}

// runGeneration builds C6's entry list (words and phrases, skipping any
// lemma the inventory builder could not give senses to) and runs the
// Definition Generator.
func runGeneration(
	ctx context.Context,
	genr *generator.Generator,
	extracted *extractor.Result,
	senseMap map[string][]domain.RegistrySense,
	progress ProgressFunc,
) (map[string]generator.Result, error) {
	var entries []generator.Entry
	for _, lemma := range sortedStringKeys(extracted.Words) {
		senses := senseMap[lemma]
		if len(senses) == 0 {
			continue
		}
		w := extracted.Words[lemma]
		entries = append(entries, generator.Entry{Lemma: w.Lemma, IsPhrase: false, Level: w.Level, Senses: senses})
	}
	for _, lemma := range sortedStringKeys(extracted.Phrases) {
		senses := senseMap[lemma]
		if len(senses) == 0 {
			continue
		}
		p := extracted.Phrases[lemma]
		entries = append(entries, generator.Entry{Lemma: p.Lemma, IsPhrase: true, Senses: senses})
	}

	results, err := genr.Run(ctx, entries)
	if err != nil {
		return nil, err
	}
	report(progress, len(entries), len(entries), "generate definitions")
	return results, nil
}

// runPatternGeneration builds C6's pattern-category entry list from the
// extractor's cleaned patterns, one entry per category listing its
// distinct observed subtypes.
func runPatternGeneration(
	ctx context.Context,
	genr *generator.Generator,
	extracted *extractor.Result,
	progress ProgressFunc,
) (map[domain.PatternCategory]generator.PatternResult, error) {
	var entries []generator.PatternEntry
	categories := make([]domain.PatternCategory, 0, len(extracted.Patterns))
	for cat := range extracted.Patterns {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, cat := range categories {
		cp := extracted.Patterns[cat]
		seen := make(map[domain.PatternSubtype]bool)
		var subtypes []domain.PatternSubtype
		for _, occ := range cp.Occurrences {
			if !seen[occ.Subtype] {
				seen[occ.Subtype] = true
				subtypes = append(subtypes, occ.Subtype)
			}
		}
		sort.Slice(subtypes, func(i, j int) bool { return subtypes[i] < subtypes[j] })
		entries = append(entries, generator.PatternEntry{Category: cat, Subtypes: subtypes})
	}

	results, err := genr.GeneratePatterns(ctx, entries)
	if err != nil {
		return nil, err
	}
	report(progress, len(entries), len(entries), "generate pattern explanations")
	return results, nil
}

// runWSD builds C7's entry list from C6's output (the fixed sense set) and
// the original contexts recorded during extraction.
func runWSD(
	ctx context.Context,
	resolver *wsd.Resolver,
	extracted *extractor.Result,
	genResults map[string]generator.Result,
	progress ProgressFunc,
) (map[string]wsd.Result, error) {
	var entries []wsd.Entry
	for _, lemma := range sortedStringKeys(extracted.Words) {
		gr, ok := genResults[lemma]
		if !ok {
			continue
		}
		entries = append(entries, wsd.Entry{Lemma: lemma, Senses: gr.Senses, Contexts: extracted.Words[lemma].Contexts})
	}
	for _, lemma := range sortedStringKeys(extracted.Phrases) {
		gr, ok := genResults[lemma]
		if !ok {
			continue
		}
		entries = append(entries, wsd.Entry{Lemma: lemma, Senses: gr.Senses, Contexts: extracted.Phrases[lemma].Contexts})
	}

	results, err := resolver.Run(ctx, entries)
	if err != nil {
		return nil, err
	}
	report(progress, len(entries), len(entries), "resolve senses")
	return results, nil
}

// assembleWordsAndPhrases joins extraction, generation, and WSD output into
// the final domain.Word/Phrase entries C8 consumes.
func assembleWordsAndPhrases(
	extracted *extractor.Result,
	genResults map[string]generator.Result,
	wsdResults map[string]wsd.Result,
) ([]domain.Word, []domain.Phrase) {
	words := make([]domain.Word, 0, len(extracted.Words))
	for _, lemma := range sortedStringKeys(extracted.Words) {
		w := extracted.Words[lemma]
		gr, hasGen := genResults[lemma]
		senses := resolvedSenses(lemma, gr, hasGen, wsdResults)
		words = append(words, domain.Word{
			Lemma:          w.Lemma,
			POS:            w.POS,
			Level:          w.Level,
			InOfficialList: w.InOfficialList,
			Senses:         senses,
			Frequency:      w.Frequency,
			ConfusionNotes: gr.ConfusionNotes,
			RootInfo:       gr.RootInfo,
		})
	}

	phrases := make([]domain.Phrase, 0, len(extracted.Phrases))
	for _, lemma := range sortedStringKeys(extracted.Phrases) {
		p := extracted.Phrases[lemma]
		gr, hasGen := genResults[lemma]
		senses := resolvedSenses(lemma, gr, hasGen, wsdResults)
		phrases = append(phrases, domain.Phrase{
			Lemma:          p.Lemma,
			Senses:         senses,
			Frequency:      p.Frequency,
			ConfusionNotes: gr.ConfusionNotes,
		})
	}

	return words, phrases
}

// resolvedSenses prefers the WSD-attached sense set (carrying ExamExamples)
// and falls back to the generator's plain sense set when WSD never ran for
// this lemma (e.g. it had zero quality contexts).
func resolvedSenses(lemma string, gr generator.Result, hasGen bool, wsdResults map[string]wsd.Result) []domain.VocabSense {
	if wr, ok := wsdResults[lemma]; ok {
		return wr.Senses
	}
	if hasGen {
		return gr.Senses
	}
	return nil
}

// assemblePatterns joins extraction and pattern generation output into the
// final domain.Pattern entries C8 consumes, attaching each subtype's
// generated example and the real exam sentences it was observed in.
func assemblePatterns(extracted *extractor.Result, patternResults map[domain.PatternCategory]generator.PatternResult) []domain.Pattern {
	categories := make([]domain.PatternCategory, 0, len(extracted.Patterns))
	for cat := range extracted.Patterns {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	patterns := make([]domain.Pattern, 0, len(categories))
	for _, cat := range categories {
		cp := extracted.Patterns[cat]
		pr := patternResults[cat]

		bySubtype := make(map[domain.PatternSubtype][]domain.ExamExample)
		for _, occ := range cp.Occurrences {
			bySubtype[occ.Subtype] = append(bySubtype[occ.Subtype], domain.ExamExample{
				Text: occ.Sentence,
				Source: domain.SourceInfo{
					Year:           occ.Year,
					ExamType:       occ.ExamType,
					SectionType:    domain.SectionTypeStructure,
					QuestionNumber: occ.Question,
				},
			})
		}

		var subtypeKeys []domain.PatternSubtype
		for st := range bySubtype {
			subtypeKeys = append(subtypeKeys, st)
		}
		sort.Slice(subtypeKeys, func(i, j int) bool { return subtypeKeys[i] < subtypeKeys[j] })

		subtypes := make([]domain.PatternSubtypeEntry, 0, len(subtypeKeys))
		for _, st := range subtypeKeys {
			subtypes = append(subtypes, domain.PatternSubtypeEntry{
				Subtype:          st,
				DisplayName:      patterns.SubtypeDisplayName(st),
				Structure:        patterns.SubtypeStructure(st),
				GeneratedExample: pr.SubtypeExamples[st],
				ExamExamples:     bySubtype[st],
			})
		}

		patterns = append(patterns, domain.Pattern{
			Lemma:               string(cat),
			Category:            cat,
			Subtypes:            subtypes,
			TeachingExplanation: pr.TeachingExplanation,
			Frequency:           patternFrequency(cp),
		})
	}
	return patterns
}

// patternFrequency builds a FrequencyCounter from a CleanedPattern's
// occurrence list; pattern occurrences carry no AnnotationRole (every
// sighting is a tested grammar construction by definition).
func patternFrequency(cp *domain.CleanedPattern) *domain.FrequencyCounter {
	f := domain.NewFrequencyCounter()
	for _, occ := range cp.Occurrences {
		f.Record(domain.AnnotationRoleNotablePattern, domain.SectionTypeStructure, occ.ExamType, occ.Year)
	}
	return f
}

// loadWordNetRelations loads the optional offline WordNet synonym/antonym
// data (internal/seeder/wordnet), restricted to lemmas this corpus actually
// extracted. A blank path means no WordNet data is configured, which is not
// an error. This is a local file read, not a network call, so it also runs
// in dry-run mode.
func loadWordNetRelations(path string, extracted *extractor.Result) (synonyms, antonyms map[string][]string, err error) {
	if path == "" {
		return nil, nil, nil
	}
	known := make(map[string]bool, len(extracted.Words))
	for lemma := range extracted.Words {
		known[lemma] = true
	}
	result, err := wordnet.Parse(path, known)
	if err != nil {
		return nil, nil, err
	}
	synonyms, antonyms = result.SynonymsAndAntonyms()
	return synonyms, antonyms, nil
}

// attachWordNetRelations sets each word's Synonyms/Antonyms from the parsed
// WordNet relation maps, keyed by lemma. A lemma with no WordNet entry is
// left with its zero value, which `omitempty` then drops from the output.
func attachWordNetRelations(words []domain.Word, synonyms, antonyms map[string][]string) {
	for i := range words {
		words[i].Synonyms = synonyms[words[i].Lemma]
		words[i].Antonyms = antonyms[words[i].Lemma]
	}
}
