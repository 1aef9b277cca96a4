package database

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigon-vocab/examprep/internal/domain"
)

func TestWriteJSON_OmitsEmptyOptionalFields(t *testing.T) {
	t.Parallel()
	db := Database{
		Metadata: Metadata{ExamYearRange: [2]int16{2020, 2020}, TotalEntries: 1, CountByType: map[string]int{"word": 1, "phrase": 0, "pattern": 0}},
		Words: []domain.Word{{
			Lemma:     "bank",
			Senses:    []domain.VocabSense{{SenseID: "bank.noun.dict0", POS: domain.PartOfSpeechNoun, EnglishDefinition: "x"}},
			Frequency: freq(2020),
		}},
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteJSON(path, db); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(raw)
	for _, absent := range []string{`"phrases"`, `"patterns"`, `"root_info"`, `"confusion_notes"`, `"exam_examples"`, `"level"`} {
		if strings.Contains(text, absent) {
			t.Errorf("expected %s to be omitted from compact output, got:\n%s", absent, text)
		}
	}

	var roundTrip map[string]any
	if err := json.Unmarshal(raw, &roundTrip); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestWriteIssuesSidecar_WritesEmptyArrayNotNull(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "issues.json")
	if err := WriteIssuesSidecar(path, nil); err != nil {
		t.Fatalf("WriteIssuesSidecar: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("expected an empty JSON array, got %s", raw)
	}
}
