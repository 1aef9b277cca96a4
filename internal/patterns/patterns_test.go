package patterns

import (
	"testing"

	"github.com/taigon-vocab/examprep/internal/domain"
)

func TestCategoryDisplayName_KnownCategory(t *testing.T) {
	t.Parallel()
	if got := CategoryDisplayName(domain.PatternCategorySubjunctive); got != "假設語氣" {
		t.Errorf("got %q", got)
	}
}

func TestSubtypeDisplayNameAndStructure_EveryValidSubtypeIsCovered(t *testing.T) {
	t.Parallel()
	subtypes := []domain.PatternSubtype{
		domain.PatternSubtypeSubjWishPast, domain.PatternSubtypeSubjWishPastPerfect,
		domain.PatternSubtypeSubjAsIf, domain.PatternSubtypeSubjWereTo,
		domain.PatternSubtypeSubjShould, domain.PatternSubtypeSubjHad,
		domain.PatternSubtypeSubjDemand, domain.PatternSubtypeSubjIfOnly,
		domain.PatternSubtypeSubjButFor, domain.PatternSubtypeSubjItsTime,
		domain.PatternSubtypeInvNegative, domain.PatternSubtypeInvNotOnly,
		domain.PatternSubtypeInvNoSooner, domain.PatternSubtypeInvOnly,
		domain.PatternSubtypeInvSoAdj, domain.PatternSubtypeInvConditional,
		domain.PatternSubtypeInvNotUntil, domain.PatternSubtypePartPerfect,
		domain.PatternSubtypePartWith, domain.PatternSubtypePartAbsolute,
		domain.PatternSubtypeCleftItThat, domain.PatternSubtypeCleftWhat,
		domain.PatternSubtypeCompTheMore, domain.PatternSubtypeCompNoMoreThan,
		domain.PatternSubtypeCompTimes, domain.PatternSubtypeConcNoMatter,
		domain.PatternSubtypeConcWhatever, domain.PatternSubtypeConcAdjAs,
		domain.PatternSubtypeResSoThat, domain.PatternSubtypeResSuchThat,
		domain.PatternSubtypePurpLest, domain.PatternSubtypePurpForFear,
	}
	for _, s := range subtypes {
		if SubtypeDisplayName(s) == string(s) {
			t.Errorf("subtype %q has no display name mapping", s)
		}
		if SubtypeStructure(s) == "" {
			t.Errorf("subtype %q has no structure template", s)
		}
		if s.Category() == "" {
			t.Errorf("subtype %q has no category mapping in domain", s)
		}
	}
}

func TestCategoryDisplayName_UnknownFallsBackToTag(t *testing.T) {
	t.Parallel()
	if got := CategoryDisplayName(domain.PatternCategory("made_up")); got != "made_up" {
		t.Errorf("got %q", got)
	}
}
