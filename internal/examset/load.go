// Package examset loads the structured exam documents that form the
// pipeline's fixed input contract (spec §6: "the core treats the stage-1
// output schema as a fixed contract") from a directory of JSON files.
package examset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/taigon-vocab/examprep/internal/domain"
)

// Load reads every *.json file directly under dir, unmarshals it as a
// domain.Exam, and returns the exams sorted by file name for a deterministic
// processing order.
func Load(dir string) ([]domain.Exam, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read exam directory %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	exams := make([]domain.Exam, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read exam file %q: %w", path, err)
		}
		var exam domain.Exam
		if err := json.Unmarshal(raw, &exam); err != nil {
			return nil, fmt.Errorf("parse exam file %q: %w", path, err)
		}
		exams = append(exams, exam)
	}
	return exams, nil
}
