package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigon-vocab/examprep/internal/config"
	"github.com/taigon-vocab/examprep/internal/domain"
)

func writeExamFile(t *testing.T, dir, name string, exam domain.Exam) {
	t.Helper()
	raw, err := json.Marshal(exam)
	if err != nil {
		t.Fatalf("marshal fixture exam: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		t.Fatalf("write fixture exam: %v", err)
	}
}

func TestRun_DryRunAssemblesDatabaseFromExtractionOnly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeExamFile(t, dir, "2021-gsat.json", domain.Exam{
		Year:     2021,
		ExamType: domain.ExamTypeGSAT,
		Sections: []domain.Section{
			{
				Type: domain.SectionTypeVocabulary,
				Sentences: []domain.AnnotatedSentence{
					{
						Text: "The diligent student studied every night for the exam.",
						Annotations: []domain.Annotation{
							{Surface: "diligent", Kind: domain.AnnotationKindWord, Role: domain.AnnotationRoleCorrectAnswer},
						},
					},
				},
			},
		},
	})

	out, err := Run(context.Background(), Options{
		ExamDir: dir,
		Config:  &config.Config{},
		DryRun:  true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	total := len(out.Database.Words) + len(out.Database.Phrases) + len(out.Database.Patterns)
	if out.Database.Metadata.TotalEntries != total {
		t.Errorf("metadata total_entries %d does not match assembled entry count %d", out.Database.Metadata.TotalEntries, total)
	}
	// Every dry-run word lacks senses, so validation must exclude it rather
	// than let an empty-sense entry reach the output database.
	for _, w := range out.Database.Words {
		if len(w.Senses) == 0 {
			t.Errorf("expected senseless dry-run word %q to be excluded from the database, not just left empty", w.Lemma)
		}
	}
}

func TestRun_MissingExamDirReturnsError(t *testing.T) {
	t.Parallel()
	_, err := Run(context.Background(), Options{
		ExamDir: filepath.Join(t.TempDir(), "does-not-exist"),
		Config:  &config.Config{},
		DryRun:  true,
	})
	if err == nil {
		t.Fatal("expected an error for a missing exam directory")
	}
}
