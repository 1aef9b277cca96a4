// Package extractor walks structured exams and produces per-lemma
// frequency data, contexts, phrase occurrences, and pattern occurrences:
// the Extractor (C3) of spec.md §4.3.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taigon-vocab/examprep/internal/dedupe"
	"github.com/taigon-vocab/examprep/internal/domain"
	"github.com/taigon-vocab/examprep/internal/normalizer"
)

// minQualityContextWords is the minimum token count (spec's _is_quality_context: "len
// >= 5") a sentence needs to qualify as a teaching context.
const minQualityContextWords = 5

// Extractor runs the five-pass protocol of spec §4.3 over a batch of exams.
type Extractor struct {
	normalizer *normalizer.Normalizer
	deduper    *dedupe.Deduper
	wordlist   normalizer.Wordlist
	logger     *slog.Logger
}

// New builds an Extractor. wordlist may be nil (in-official-list then
// always reports false and the rare-word filter never spares a word on
// that basis).
func New(n *normalizer.Normalizer, wordlist normalizer.Wordlist, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		normalizer: n,
		deduper:    dedupe.New(),
		wordlist:   wordlist,
		logger:     logger,
	}
}

// Result is everything the Extractor produced: cleaned words, phrases, and
// per-category pattern occurrences, ready for the inventory builder (C5).
type Result struct {
	Words    map[string]*domain.CleanedWord
	Phrases  map[string]*domain.CleanedPhrase
	Patterns map[domain.PatternCategory]*domain.CleanedPattern
}

// Extract runs all five passes over exams and returns the aggregated,
// filtered result.
func (e *Extractor) Extract(ctx context.Context, exams []domain.Exam) (*Result, error) {
	partials := make([]*partial, len(exams))

	g, gCtx := errgroup.WithContext(ctx)
	for i, exam := range exams {
		i, exam := i, exam
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			partials[i] = e.processExam(exam)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := mergePartials(partials)

	phraseSet := NewPatternSet(phraseKeys(agg.phraseOccurs), e.normalizer)
	e.backfillPhrases(exams, agg.phraseOccurs, phraseSet)

	return e.finalize(agg), nil
}

func phraseKeys(m map[string][]domain.PhraseOccurrence) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// processExam runs passes 1-3 over one exam, producing a thread-local
// partial result safe to merge commutatively with any other exam's.
func (e *Extractor) processExam(exam domain.Exam) *partial {
	p := newPartial()

	for _, section := range exam.Sections {
		for _, sentence := range section.Sentences {
			e.mineAnnotations(exam, section, sentence, p)
			e.tokenizeSentence(exam, section, sentence, p)
		}
	}

	for _, item := range exam.Translations {
		e.recordTranslationKeywords(exam, item, p)
	}
	for _, topic := range exam.EssayTopics {
		e.recordEssayWords(exam, topic, p)
	}

	return p
}

// mineAnnotations is pass 1: patterns and valid phrases route into their
// own buckets. Word annotations are left for pass 2.
func (e *Extractor) mineAnnotations(exam domain.Exam, section domain.Section, sentence domain.AnnotatedSentence, p *partial) {
	for _, ann := range sentence.Annotations {
		switch ann.Kind {
		case domain.AnnotationKindPattern:
			if ann.PatternCategory == "" {
				continue
			}
			p.patternOccurs[ann.PatternCategory] = append(p.patternOccurs[ann.PatternCategory], domain.PatternOccurrence{
				Category: ann.PatternCategory,
				Subtype:  ann.PatternSubtype,
				Sentence: sentence.Text,
				Year:     exam.Year,
				ExamType: exam.ExamType,
				Question: sentence.QuestionNumber,
			})
		case domain.AnnotationKindPhrase:
			if !isValidPhrase(ann.Surface) {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(ann.Surface))
			p.phraseOccurs[key] = append(p.phraseOccurs[key], domain.PhraseOccurrence{
				Phrase:   ann.Surface,
				Sentence: sentence.Text,
				Year:     exam.Year,
				ExamType: exam.ExamType,
				Question: sentence.QuestionNumber,
				Source: domain.SourceInfo{
					Year: exam.Year, ExamType: exam.ExamType, SectionType: section.Type,
					QuestionNumber: sentence.QuestionNumber, SentenceRole: sentence.SentenceRole,
					Role: ann.Role,
				},
			})
		}
	}
}

// tokenizeSentence is pass 2: every token is normalized, assigned a role
// from any overlapping word annotation, deduped, and (on keep) folded
// into the lemma's frequency counter and contexts.
func (e *Extractor) tokenizeSentence(exam domain.Exam, section domain.Section, sentence domain.AnnotatedSentence, p *partial) {
	if sentence.SentenceRole == domain.SentenceRoleQuestionPrompt {
		return
	}

	doc := e.normalizer.Parse(sentence.Text)
	if len(doc.Sentences) == 0 {
		return
	}
	parsed := doc.Sentences[0]

	roleBySpan := e.wordAnnotationRoles(doc, sentence)
	isQuality := len(strings.Fields(sentence.Text)) >= minQualityContextWords

	for _, tok := range parsed.Tokens {
		if tok.Lemma == "" {
			continue
		}

		role := roleBySpan(tok.Start, tok.End)
		decision := e.deduper.Decide(tok.Lemma, sentence.Text, exam.ExamType)
		if decision == dedupe.Drop {
			continue
		}

		acc := p.word(tok.Lemma)
		acc.posSet[tok.POS.ToDomain()] = true
		acc.frequency.Record(role, section.Type, exam.ExamType, exam.Year)

		if role != domain.AnnotationRoleDistractor && isQuality {
			acc.contexts = append(acc.contexts, domain.ContextSentence{
				Text: sentence.Text,
				Source: domain.SourceInfo{
					Year: exam.Year, ExamType: exam.ExamType, SectionType: section.Type,
					QuestionNumber: sentence.QuestionNumber, SentenceRole: sentence.SentenceRole,
					Role: role,
				},
				POS:     tok.POS.ToDomain(),
				Surface: tok.Text,
			})
		}
	}
}

// wordAnnotationRoles returns a lookup from a byte span to the role
// propagated by any word-kind annotation covering it (spec §4.3 step 2:
// only correct_answer, tested_keyword, and distractor propagate).
func (e *Extractor) wordAnnotationRoles(doc *normalizer.ParsedDoc, sentence domain.AnnotatedSentence) func(start, end int) domain.AnnotationRole {
	type span struct {
		start, end int
		role       domain.AnnotationRole
	}
	var spans []span

	for _, ann := range sentence.Annotations {
		if ann.Kind != domain.AnnotationKindWord {
			continue
		}
		if !ann.Role.IsTested() {
			continue
		}
		for _, s := range doc.FindSpans(0, ann.Surface) {
			spans = append(spans, span{start: s.Start, end: s.End, role: ann.Role})
		}
	}

	return func(start, end int) domain.AnnotationRole {
		for _, s := range spans {
			if start < s.end && end > s.start {
				return s.role
			}
		}
		return ""
	}
}

// recordTranslationKeywords is the first half of pass 3: translation
// answer keywords contribute tested_keyword occurrences, with the Chinese
// prompt as the context text.
func (e *Extractor) recordTranslationKeywords(exam domain.Exam, item domain.TranslationItem, p *partial) {
	for _, keyword := range item.AnswerKeywords {
		e.recordKeywordOccurrence(exam, keyword, item.ChinesePrompt, domain.SectionTypeTranslation,
			domain.AnnotationRoleTestedKeyword, p)
	}
}

// recordEssayWords is the second half of pass 3: essay suggested words
// contribute role-none occurrences, with the essay description as context.
func (e *Extractor) recordEssayWords(exam domain.Exam, topic domain.EssayTopic, p *partial) {
	for _, word := range topic.SuggestedWords {
		e.recordKeywordOccurrence(exam, word, topic.Description, domain.SectionTypeEssay, "", p)
	}
}

func (e *Extractor) recordKeywordOccurrence(exam domain.Exam, keyword, contextText string, section domain.SectionType, role domain.AnnotationRole, p *partial) {
	doc := e.normalizer.Parse(keyword)
	for _, sentence := range doc.Sentences {
		for _, tok := range sentence.Tokens {
			if tok.Lemma == "" {
				continue
			}
			decision := e.deduper.Decide(tok.Lemma, contextText, exam.ExamType)
			if decision == dedupe.Drop {
				continue
			}

			acc := p.word(tok.Lemma)
			acc.posSet[tok.POS.ToDomain()] = true
			acc.frequency.Record(role, section, exam.ExamType, exam.Year)
			acc.contexts = append(acc.contexts, domain.ContextSentence{
				Text:    contextText,
				Source:  domain.SourceInfo{Year: exam.Year, ExamType: exam.ExamType, SectionType: section, Role: role},
				POS:     tok.POS.ToDomain(),
				Surface: tok.Text,
			})
		}
	}
}

// backfillPhrases is pass 4: every exam sentence (not just annotated ones)
// is scanned for known phrases, adding occurrences whose
// (phrase, sentence, year, question) tuple isn't already present.
func (e *Extractor) backfillPhrases(exams []domain.Exam, phraseOccurs map[string][]domain.PhraseOccurrence, set *PatternSet) {
	if len(set.patterns) == 0 {
		return
	}

	existing := make(map[string]bool)
	for phrase, occs := range phraseOccurs {
		for _, occ := range occs {
			existing[occurKeyOf(phrase, occ)] = true
		}
	}

	for _, exam := range exams {
		for _, section := range exam.Sections {
			for _, sentence := range section.Sentences {
				if len(sentence.Text) < 10 || sentence.SentenceRole == domain.SentenceRoleQuestionPrompt {
					continue
				}
				doc := e.normalizer.Parse(sentence.Text)
				if len(doc.Sentences) == 0 {
					continue
				}

				matches := set.Scan(doc.Sentences[0])
				for phrase, spans := range matches {
					for _, span := range spans {
						occ := domain.PhraseOccurrence{
							Phrase:   sentence.Text[span.Start:span.End],
							Sentence: sentence.Text,
							Year:     exam.Year,
							ExamType: exam.ExamType,
							Question: sentence.QuestionNumber,
							Source: domain.SourceInfo{
								Year: exam.Year, ExamType: exam.ExamType, SectionType: section.Type,
								QuestionNumber: sentence.QuestionNumber, SentenceRole: sentence.SentenceRole,
								Role: domain.AnnotationRoleNotablePhrase,
							},
						}
						key := occurKeyOf(phrase, occ)
						if existing[key] {
							continue
						}
						existing[key] = true
						phraseOccurs[phrase] = append(phraseOccurs[phrase], occ)
					}
				}
			}
		}
	}
}

func occurKeyOf(phrase string, occ domain.PhraseOccurrence) string {
	question := -1
	if occ.Question != nil {
		question = *occ.Question
	}
	return fmt.Sprintf("%s\x00%s\x00%d\x00%d", phrase, occ.Sentence, occ.Year, question)
}

// dedupeContexts is the final reconciliation pass promised by
// dedupe.KeepAndUpgrade: Decide only tracks official-vs-reference per
// fingerprint as bookkeeping, so a reference context recorded before an
// official sighting of the same sentence is still sitting in the
// accumulated slice. Sorting official sightings first and dropping any
// later reference sighting whose fingerprint an official one already
// claimed restores the invariant that only the official context survives
// (spec §4.2 invariant 1, scenario S2).
func dedupeContexts(contexts []domain.ContextSentence) []domain.ContextSentence {
	ordered := make([]domain.ContextSentence, len(contexts))
	copy(ordered, contexts)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := referencePriority(ordered[i]), referencePriority(ordered[j])
		if pi != pj {
			return pi < pj
		}
		return ordered[i].Source.Year < ordered[j].Source.Year
	})

	officialFingerprints := make(map[string]bool)
	seenExact := make(map[string]bool)
	result := make([]domain.ContextSentence, 0, len(ordered))

	for _, ctx := range ordered {
		fp := dedupe.Fingerprint(ctx.Text)
		reference := ctx.Source.ExamType.IsReference()
		if fp != "" && reference && officialFingerprints[fp] {
			continue
		}

		question := -1
		if ctx.Source.QuestionNumber != nil {
			question = *ctx.Source.QuestionNumber
		}
		exactKey := fmt.Sprintf("%s\x00%d\x00%d", strings.TrimSpace(ctx.Text), ctx.Source.Year, question)
		if seenExact[exactKey] {
			continue
		}
		seenExact[exactKey] = true

		if fp != "" && !reference {
			officialFingerprints[fp] = true
		}
		result = append(result, ctx)
	}
	return result
}

// referencePriority sorts official sightings (0) before reference ones (1).
func referencePriority(ctx domain.ContextSentence) int {
	if ctx.Source.ExamType.IsReference() {
		return 1
	}
	return 0
}

// finalize converts the aggregate into a Result, applying the rare-word
// filter (pass 5).
func (e *Extractor) finalize(agg *partial) *Result {
	result := &Result{
		Words:    make(map[string]*domain.CleanedWord),
		Phrases:  make(map[string]*domain.CleanedPhrase),
		Patterns: make(map[domain.PatternCategory]*domain.CleanedPattern),
	}

	for lemma, acc := range agg.words {
		contexts := dedupeContexts(acc.contexts)
		inOfficialList := e.wordlist != nil && e.wordlist.Contains(lemma)
		if shouldFilterRareWord(inOfficialList, acc.frequency, contexts) {
			continue
		}

		var level *int
		if e.wordlist != nil {
			if lvl, ok := e.wordlist.Level(lemma); ok {
				level = &lvl
			}
		}

		result.Words[lemma] = &domain.CleanedWord{
			Lemma:          lemma,
			Level:          level,
			InOfficialList: inOfficialList,
			POS:            sortedPOS(acc.posSet),
			Frequency:      acc.frequency,
			Contexts:       contexts,
		}
	}

	for phrase, occs := range agg.phraseOccurs {
		freq := domain.NewFrequencyCounter()
		var contexts []domain.ContextSentence
		for _, occ := range occs {
			freq.Record(occ.Source.Role, occ.Source.SectionType, occ.ExamType, occ.Year)
			contexts = append(contexts, domain.ContextSentence{
				Text: occ.Sentence, Source: occ.Source, Surface: occ.Phrase,
			})
		}
		result.Phrases[phrase] = &domain.CleanedPhrase{
			Lemma: phrase, Frequency: freq, Contexts: dedupeContexts(contexts),
		}
	}

	for category, occs := range agg.patternOccurs {
		result.Patterns[category] = &domain.CleanedPattern{Category: category, Occurrences: occs}
	}

	return result
}

// posOrder fixes a deterministic output order for a CleanedWord's POS list.
var posOrder = []domain.PartOfSpeech{
	domain.PartOfSpeechNoun, domain.PartOfSpeechVerb, domain.PartOfSpeechAdjective,
	domain.PartOfSpeechAdverb, domain.PartOfSpeechPronoun, domain.PartOfSpeechPreposition,
	domain.PartOfSpeechConjunction, domain.PartOfSpeechInterjection, domain.PartOfSpeechDeterminer,
	domain.PartOfSpeechOther,
}

func sortedPOS(set map[domain.PartOfSpeech]bool) []domain.PartOfSpeech {
	out := make([]domain.PartOfSpeech, 0, len(set))
	for _, pos := range posOrder {
		if set[pos] {
			out = append(out, pos)
		}
	}
	return out
}
