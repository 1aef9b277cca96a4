package domain

import "testing"

func TestExamType_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		examType ExamType
		want     bool
	}{
		{ExamTypeGSAT, true},
		{ExamTypeGSATMakeup, true},
		{ExamTypeAST, true},
		{ExamTypeASTMakeup, true},
		{ExamTypeGSATTrial, true},
		{ExamTypeGSATRef, true},
		{ExamType("INVALID"), false},
		{ExamType(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.examType), func(t *testing.T) {
			t.Parallel()
			if got := tt.examType.IsValid(); got != tt.want {
				t.Errorf("ExamType(%q).IsValid() = %v, want %v", tt.examType, got, tt.want)
			}
		})
	}
}

func TestExamType_IsReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		examType ExamType
		want     bool
	}{
		{ExamTypeGSATRef, true},
		{ExamTypeGSATTrial, true},
		{ExamTypeGSAT, false},
		{ExamTypeAST, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.examType), func(t *testing.T) {
			t.Parallel()
			if got := tt.examType.IsReference(); got != tt.want {
				t.Errorf("ExamType(%q).IsReference() = %v, want %v", tt.examType, got, tt.want)
			}
		})
	}
}

func TestSectionType_IsValid(t *testing.T) {
	t.Parallel()

	valid := []SectionType{
		SectionTypeVocabulary, SectionTypeCloze, SectionTypeDiscourse, SectionTypeStructure,
		SectionTypeReading, SectionTypeTranslation, SectionTypeMixed, SectionTypeEssay,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("SectionType(%q).IsValid() = false, want true", s)
		}
	}
	if SectionType("bogus").IsValid() {
		t.Error("SectionType(bogus).IsValid() = true, want false")
	}
}

func TestSentenceRole_IsValid(t *testing.T) {
	t.Parallel()

	valid := []SentenceRole{
		SentenceRoleCloze, SentenceRolePassage, SentenceRoleQuestionPrompt,
		SentenceRoleOption, SentenceRoleUnusedOption,
	}
	for _, r := range valid {
		if !r.IsValid() {
			t.Errorf("SentenceRole(%q).IsValid() = false, want true", r)
		}
	}
	if SentenceRole("nope").IsValid() {
		t.Error("SentenceRole(nope).IsValid() = true, want false")
	}
}

func TestAnnotationKind_IsValid(t *testing.T) {
	t.Parallel()

	valid := []AnnotationKind{AnnotationKindWord, AnnotationKindPhrase, AnnotationKindPattern}
	for _, k := range valid {
		if !k.IsValid() {
			t.Errorf("AnnotationKind(%q).IsValid() = false, want true", k)
		}
	}
	if AnnotationKind("sentence").IsValid() {
		t.Error("AnnotationKind(sentence).IsValid() = true, want false")
	}
}

func TestAnnotationRole_IsValid(t *testing.T) {
	t.Parallel()

	valid := []AnnotationRole{
		AnnotationRoleCorrectAnswer, AnnotationRoleDistractor, AnnotationRoleTestedKeyword,
		AnnotationRoleNotablePhrase, AnnotationRoleNotablePattern,
	}
	for _, r := range valid {
		if !r.IsValid() {
			t.Errorf("AnnotationRole(%q).IsValid() = false, want true", r)
		}
	}
	if AnnotationRole("bogus").IsValid() {
		t.Error("AnnotationRole(bogus).IsValid() = true, want false")
	}
}

func TestAnnotationRole_IsTested(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role AnnotationRole
		want bool
	}{
		{AnnotationRoleCorrectAnswer, true},
		{AnnotationRoleTestedKeyword, true},
		{AnnotationRoleDistractor, true},
		{AnnotationRoleNotablePhrase, false},
		{AnnotationRoleNotablePattern, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()
			if got := tt.role.IsTested(); got != tt.want {
				t.Errorf("AnnotationRole(%q).IsTested() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestAnnotationRole_IsActiveTested(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role AnnotationRole
		want bool
	}{
		{AnnotationRoleCorrectAnswer, true},
		{AnnotationRoleTestedKeyword, true},
		{AnnotationRoleDistractor, false},
		{AnnotationRoleNotablePhrase, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()
			if got := tt.role.IsActiveTested(); got != tt.want {
				t.Errorf("AnnotationRole(%q).IsActiveTested() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestPartOfSpeech_IsValid(t *testing.T) {
	t.Parallel()

	valid := []PartOfSpeech{
		PartOfSpeechNoun, PartOfSpeechVerb, PartOfSpeechAdjective, PartOfSpeechAdverb,
		PartOfSpeechPronoun, PartOfSpeechPreposition, PartOfSpeechConjunction,
		PartOfSpeechInterjection, PartOfSpeechDeterminer, PartOfSpeechOther, PartOfSpeechNone,
	}
	for _, p := range valid {
		if !p.IsValid() {
			t.Errorf("PartOfSpeech(%q).IsValid() = false, want true", p)
		}
	}
	if PartOfSpeech("UNKNOWN").IsValid() {
		t.Error("PartOfSpeech(UNKNOWN).IsValid() = true, want false")
	}
}

func TestPartOfSpeech_String(t *testing.T) {
	t.Parallel()
	if got := PartOfSpeechNoun.String(); got != "NOUN" {
		t.Errorf("got %q, want NOUN", got)
	}
}

func TestPartOfSpeech_Abbr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pos  PartOfSpeech
		want string
	}{
		{PartOfSpeechNoun, "n"},
		{PartOfSpeechVerb, "v"},
		{PartOfSpeechAdjective, "adj"},
		{PartOfSpeechAdverb, "adv"},
		{PartOfSpeechNone, "phr"},
	}
	for _, tt := range tests {
		t.Run(string(tt.pos), func(t *testing.T) {
			t.Parallel()
			if got := tt.pos.Abbr(); got != tt.want {
				t.Errorf("PartOfSpeech(%q).Abbr() = %q, want %q", tt.pos, got, tt.want)
			}
		})
	}
}

func TestSenseSource_IsValid(t *testing.T) {
	t.Parallel()

	valid := []SenseSource{
		SenseSourceDictionaryAPI, SenseSourceLLMGenerated, SenseSourceWordNet, SenseSourceManual,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("SenseSource(%q).IsValid() = false, want true", s)
		}
	}
	if SenseSource("bogus").IsValid() {
		t.Error("SenseSource(bogus).IsValid() = true, want false")
	}
}

func TestSenseSource_Tag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source SenseSource
		want   string
	}{
		{SenseSourceDictionaryAPI, "d"},
		{SenseSourceLLMGenerated, "g"},
		{SenseSourceWordNet, "w"},
		{SenseSourceManual, "m"},
	}
	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			t.Parallel()
			if got := tt.source.Tag(); got != tt.want {
				t.Errorf("SenseSource(%q).Tag() = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestPatternSubtype_Category(t *testing.T) {
	t.Parallel()

	tests := []struct {
		subtype PatternSubtype
		want    PatternCategory
	}{
		{PatternSubtypeSubjWishPast, PatternCategorySubjunctive},
		{PatternSubtypeSubjItsTime, PatternCategorySubjunctive},
		{PatternSubtypeInvNegative, PatternCategoryInversion},
		{PatternSubtypeInvNotUntil, PatternCategoryInversion},
		{PatternSubtypePartPerfect, PatternCategoryParticiple},
		{PatternSubtypeCleftItThat, PatternCategoryCleftSentence},
		{PatternSubtypeCompTheMore, PatternCategoryComparisonAdv},
		{PatternSubtypeConcNoMatter, PatternCategoryConcessionAdv},
		{PatternSubtypeResSoThat, PatternCategoryResultPurpose},
		{PatternSubtypePurpForFear, PatternCategoryResultPurpose},
		{PatternSubtype("bogus"), PatternCategory("")},
	}
	for _, tt := range tests {
		t.Run(string(tt.subtype), func(t *testing.T) {
			t.Parallel()
			if got := tt.subtype.Category(); got != tt.want {
				t.Errorf("PatternSubtype(%q).Category() = %q, want %q", tt.subtype, got, tt.want)
			}
		})
	}
}

func TestPatternSubtype_IsValid(t *testing.T) {
	t.Parallel()

	if !PatternSubtypeSubjWishPast.IsValid() {
		t.Error("PatternSubtypeSubjWishPast.IsValid() = false, want true")
	}
	if PatternSubtype("bogus").IsValid() {
		t.Error("PatternSubtype(bogus).IsValid() = true, want false")
	}
}

func TestPatternCategory_IsValid(t *testing.T) {
	t.Parallel()

	valid := []PatternCategory{
		PatternCategorySubjunctive, PatternCategoryInversion, PatternCategoryParticiple,
		PatternCategoryCleftSentence, PatternCategoryComparisonAdv, PatternCategoryConcessionAdv,
		PatternCategoryResultPurpose,
	}
	for _, c := range valid {
		if !c.IsValid() {
			t.Errorf("PatternCategory(%q).IsValid() = false, want true", c)
		}
	}
	if PatternCategory("bogus").IsValid() {
		t.Error("PatternCategory(bogus).IsValid() = true, want false")
	}
}

func TestLLMTier_IsValid(t *testing.T) {
	t.Parallel()

	valid := []LLMTier{LLMTierFast, LLMTierBalanced, LLMTierSmart}
	for _, tier := range valid {
		if !tier.IsValid() {
			t.Errorf("LLMTier(%q).IsValid() = false, want true", tier)
		}
	}
	if LLMTier("bogus").IsValid() {
		t.Error("LLMTier(bogus).IsValid() = true, want false")
	}
}
