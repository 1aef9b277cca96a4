package domain

// Exam is one structured exam document, the fixed-contract input to the
// pipeline (spec §6: "the core treats the stage-1 output schema as a fixed
// contract").
type Exam struct {
	Year            int16             `json:"year"`
	ExamType        ExamType          `json:"exam_type"`
	Sections        []Section         `json:"sections"`
	Translations    []TranslationItem `json:"translations,omitempty"`
	EssayTopics     []EssayTopic      `json:"essay_topics,omitempty"`
}

// Section groups sentences that share a SectionType (vocabulary, cloze, ...).
type Section struct {
	Type      SectionType        `json:"type"`
	Sentences []AnnotatedSentence `json:"sentences"`
}

// AnnotatedSentence is one sentence of exam text carrying zero or more
// Annotations marking tested words, phrases, or grammar patterns.
type AnnotatedSentence struct {
	Text           string       `json:"text"`
	QuestionNumber *int         `json:"question_number,omitempty"`
	SentenceRole   SentenceRole `json:"sentence_role,omitempty"`
	Annotations    []Annotation `json:"annotations,omitempty"`
}

// Annotation marks a span of an AnnotatedSentence's text as a tested word,
// phrase, or grammar pattern.
type Annotation struct {
	Surface         string          `json:"surface"`
	Kind            AnnotationKind  `json:"kind"`
	Role            AnnotationRole  `json:"role"`
	PatternCategory PatternCategory `json:"pattern_category,omitempty"`
	PatternSubtype  PatternSubtype  `json:"pattern_subtype,omitempty"`
}

// TranslationItem is one Chinese-to-English translation question; its
// AnswerKeywords contribute tested_keyword occurrences (spec §4.3 step 3).
type TranslationItem struct {
	ChinesePrompt  string   `json:"chinese_prompt"`
	AnswerKeywords []string `json:"answer_keywords"`
}

// EssayTopic carries suggested vocabulary for an essay prompt; its
// SuggestedWords contribute role-none occurrences (spec §4.3 step 3).
type EssayTopic struct {
	Description    string   `json:"description"`
	SuggestedWords []string `json:"suggested_words"`
}

// SourceInfo identifies where a ContextSentence came from.
type SourceInfo struct {
	Year           int16          `json:"year"`
	ExamType       ExamType       `json:"exam_type"`
	SectionType    SectionType    `json:"section_type"`
	QuestionNumber *int           `json:"question_number,omitempty"`
	SentenceRole   SentenceRole   `json:"sentence_role,omitempty"`
	Role           AnnotationRole `json:"role,omitempty"`
}

// ContextSentence is one occurrence of a lemma, phrase, or pattern worth
// keeping as a teaching example, derived during extraction (§4.3).
type ContextSentence struct {
	Text    string     `json:"text"`
	Source  SourceInfo `json:"source"`
	POS     PartOfSpeech `json:"pos,omitempty"`
	Surface string     `json:"surface"`
}
