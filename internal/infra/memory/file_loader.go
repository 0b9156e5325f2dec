package memory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sdg-quest/internal/domain"
)

// FileCatalogLoader reads the catalog from a YAML document:
//
//	quizzes:
//	  - id: quiz-1
//	    goalId: 1
//	    questions:
//	      - question: ...
//	        options:
//	          - {text: ..., isCorrect: true}
type FileCatalogLoader struct {
	path string
}

func NewFileCatalogLoader(path string) *FileCatalogLoader {
	return &FileCatalogLoader{path: path}
}

func (l *FileCatalogLoader) LoadCatalog(context.Context) ([]domain.Quiz, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(data []byte) ([]domain.Quiz, error) {
	var doc struct {
		Quizzes []domain.Quiz `yaml:"quizzes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[domain.GoalID]bool, len(doc.Quizzes))
	for i, q := range doc.Quizzes {
		if q.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if !q.GoalID.Valid() {
			return nil, fmt.Errorf("quiz %s: goal %d out of range", q.ID, q.GoalID)
		}
		if seen[q.GoalID] {
			return nil, fmt.Errorf("quiz %s: duplicate goal %d", q.ID, q.GoalID)
		}
		seen[q.GoalID] = true
	}
	return doc.Quizzes, nil
}
