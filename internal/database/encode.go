package database

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON marshals db as indented, deterministic JSON and writes it to
// path. domain.Word/Phrase/Pattern and their nested VocabSense/RootInfo
// fields already carry `omitempty` tags on every optional field (pos,
// level, root_info, confusion_notes, synonyms, antonyms, exam_examples,
// generated_example), so encoding/json's ordinary struct-tag handling
// already satisfies spec §4.8's "omits keys with empty arrays and null
// values" — a hand-rolled MarshalJSON would just re-implement what the
// struct tags already do, so none is added here.
func WriteJSON(path string, db Database) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal database: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write database to %q: %w", path, err)
	}
	return nil
}

// WriteIssuesSidecar writes the validation issues collected by Build to a
// separate JSON file (spec §4.8: "validation failures are collected into a
// sidecar error file").
func WriteIssuesSidecar(path string, issues []Issue) error {
	if issues == nil {
		issues = []Issue{}
	}
	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal validation issues: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write issues sidecar to %q: %w", path, err)
	}
	return nil
}
