package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CTAG07/mensagen/pkg/classify"
	"github.com/CTAG07/mensagen/pkg/problem"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

var (
	// ErrDuplicateImageFile is returned when two records would render to the same page.
	ErrDuplicateImageFile = errors.New("duplicate image file")
	// ErrProblemNotFound is returned when a catalog id has no record.
	ErrProblemNotFound = errors.New("problem not found")
)

// NewRecord converts a source question into its catalog record.
func NewRecord(q problem.RawQuestion) (problem.ProblemRecord, error) {
	c := classify.Classify(q.Type, q.Question, q.VisualData)

	answer, err := problem.Letter(q.CorrectAnswer)
	if err != nil {
		return problem.ProblemRecord{}, fmt.Errorf("question %d: %w", q.ID, err)
	}
	explanation, err := classify.Explanation(q)
	if err != nil {
		return problem.ProblemRecord{}, err
	}

	return problem.ProblemRecord{
		ID:          problem.FormatID(q.ID),
		Type:        c.Type,
		Subtype:     c.Subtype,
		Difficulty:  q.Difficulty,
		Title:       classify.Title(c),
		Description: q.Question,
		ImageFile:   problem.ImageFileName(q.ID, c.Subtype),
		Answer:      answer,
		Options:     q.Options,
		Explanation: explanation,
		VisualData:  q.VisualData,
		OriginalID:  q.QuestionID,
	}, nil
}

// Build assembles a catalog from source questions, in source order. The
// problem list is always rebuilt from scratch; when prev is non-nil its extra
// top-level keys are carried over. The first failing question aborts the build.
func Build(prev *problem.Catalog, questions []problem.RawQuestion) (*problem.Catalog, error) {
	c := &problem.Catalog{
		GenerationID: uuid.NewString(),
		GeneratedAt:  time.Now().Format(time.RFC3339),
		Problems:     make([]problem.ProblemRecord, 0, len(questions)),
	}
	if prev != nil {
		c.Extra = prev.Extra
	}

	seen := make(map[string]string, len(questions))
	for _, q := range questions {
		rec, err := NewRecord(q)
		if err != nil {
			return nil, err
		}
		if other, ok := seen[rec.ImageFile]; ok {
			return nil, fmt.Errorf("%w: %s used by %s and %s", ErrDuplicateImageFile, rec.ImageFile, other, rec.ID)
		}
		seen[rec.ImageFile] = rec.ID
		c.Problems = append(c.Problems, rec)
	}
	c.TotalCount = len(c.Problems)
	return c, nil
}

// ReadSource loads the questions from a source document.
func ReadSource(path string) ([]problem.RawQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	var src problem.SourceFile
	if err = json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse source file: %w", err)
	}
	return src.Questions, nil
}

// Load reads a catalog document.
func Load(path string) (*problem.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var c problem.Catalog
	if err = json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// LoadIfExists is Load, except that a missing file yields (nil, nil).
func LoadIfExists(path string) (*problem.Catalog, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return Load(path)
}

// Save writes a catalog document, replacing any previous file in one step.
func Save(path string, c *problem.Catalog) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// Lookup returns the record with the given id.
func Lookup(c *problem.Catalog, id string) (problem.ProblemRecord, error) {
	p, ok := c.Find(id)
	if !ok {
		return problem.ProblemRecord{}, fmt.Errorf("%w: %s", ErrProblemNotFound, id)
	}
	return p, nil
}
