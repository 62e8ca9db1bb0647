package problem

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ProblemType is the catalog-level category a question is filed under.
type ProblemType string

const (
	TypeMatrixReasoning    ProblemType = "matrix-reasoning"
	TypeSequenceCompletion ProblemType = "sequence-completion"
	TypeSpatialReasoning   ProblemType = "spatial-reasoning"
	TypePatternRecognition ProblemType = "pattern-recognition"
	TypeLogicalDeduction   ProblemType = "logical-deduction"
)

// ProblemTypes lists every type the classifier can produce.
var ProblemTypes = []ProblemType{
	TypeMatrixReasoning,
	TypeSequenceCompletion,
	TypeSpatialReasoning,
	TypePatternRecognition,
	TypeLogicalDeduction,
}

// Subtype is the fine-grained label chosen within a ProblemType.
type Subtype string

const (
	SubtypeSetTheory         Subtype = "set-theory"
	SubtypeConditionalLogic  Subtype = "conditional-logic"
	SubtypeBooleanOperations Subtype = "boolean-operations"
	SubtypeNumerical         Subtype = "numerical"
	SubtypeMixed             Subtype = "mixed"
	SubtypeCubeRotation      Subtype = "3d-rotation"
	SubtypeFolding           Subtype = "folding"
	SubtypeMirrorReflection  Subtype = "mirror-reflection"
	SubtypeProjection        Subtype = "projection"
	SubtypePointSymmetry     Subtype = "point-symmetry"
	SubtypeRotation          Subtype = "rotation"
	SubtypeProgression       Subtype = "progression"
	SubtypeDistribution      Subtype = "distribution"
	SubtypeClassification    Subtype = "classification"
	SubtypeShapeCounting     Subtype = "shape-counting"
	SubtypeOddOneOut         Subtype = "odd-one-out"
)

// MaxOptions is the largest number of answer options a question may carry.
const MaxOptions = 8

// AnswerLetters labels options by position.
var AnswerLetters = [MaxOptions]string{"A", "B", "C", "D", "E", "F", "G", "H"}

// ErrAnswerOutOfRange is returned when an option index has no letter or no option.
var ErrAnswerOutOfRange = errors.New("answer index out of range")

// RawQuestion is a single question as found in the source file.
type RawQuestion struct {
	ID            int      `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Difficulty    int      `json:"difficulty"`
	VisualData    any      `json:"visual_data,omitempty"`
	QuestionID    string   `json:"question_id"`
}

// CorrectOption returns the text of the option marked correct.
func (q RawQuestion) CorrectOption() (string, error) {
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return "", fmt.Errorf("question %d: %w (%d of %d options)", q.ID, ErrAnswerOutOfRange, q.CorrectAnswer, len(q.Options))
	}
	return q.Options[q.CorrectAnswer], nil
}

// SourceFile is the layout of the question source document.
type SourceFile struct {
	Questions []RawQuestion `json:"mensa_test_questions"`
}

// ProblemRecord is the catalog form of a question.
type ProblemRecord struct {
	ID          string      `json:"id"`
	Type        ProblemType `json:"type"`
	Subtype     Subtype     `json:"subtype"`
	Difficulty  int         `json:"difficulty"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ImageFile   string      `json:"image_file"`
	Answer      string      `json:"answer"`
	Options     []string    `json:"options"`
	Explanation string      `json:"explanation"`
	VisualData  any         `json:"visual_data"`
	OriginalID  string      `json:"original_id"`
}

// FormatID renders a numeric question id the way the catalog stores it.
func FormatID(id int) string {
	return fmt.Sprintf("%03d", id)
}

// ImageFileName returns the page file name for a problem. It depends only on
// the id and the subtype.
func ImageFileName(id int, subtype Subtype) string {
	return fmt.Sprintf("problem-%s-%s.html", FormatID(id), subtype)
}

// Letter returns the answer letter for an option index.
func Letter(index int) (string, error) {
	if index < 0 || index >= MaxOptions {
		return "", fmt.Errorf("%w: %d", ErrAnswerOutOfRange, index)
	}
	return AnswerLetters[index], nil
}

// Catalog is the persisted collection of problem records. Keys of the
// document other than the ones modelled here are kept in Extra and written
// back unchanged.
type Catalog struct {
	GenerationID string
	GeneratedAt  string
	TotalCount   int
	Problems     []ProblemRecord
	Extra        map[string]json.RawMessage
}

const (
	keyGenerationID = "generation_id"
	keyGeneratedAt  = "generated_at"
	keyTotalCount   = "total_count"
	keyProblems     = "problems"
)

// MarshalJSON merges the extra keys with the modelled ones.
func (c Catalog) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+4)
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.GenerationID != "" {
		out[keyGenerationID] = c.GenerationID
	}
	if c.GeneratedAt != "" {
		out[keyGeneratedAt] = c.GeneratedAt
	}
	out[keyTotalCount] = c.TotalCount
	problems := c.Problems
	if problems == nil {
		problems = []ProblemRecord{}
	}
	out[keyProblems] = problems
	return json.Marshal(out)
}

// UnmarshalJSON splits a catalog document into modelled fields and Extra.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Catalog{}

	fields := []struct {
		key string
		dst any
	}{
		{keyGenerationID, &c.GenerationID},
		{keyGeneratedAt, &c.GeneratedAt},
		{keyTotalCount, &c.TotalCount},
		{keyProblems, &c.Problems},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return fmt.Errorf("catalog field %q: %w", f.key, err)
		}
		delete(raw, f.key)
	}
	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

// Find returns the record with the given catalog id.
func (c *Catalog) Find(id string) (ProblemRecord, bool) {
	for _, p := range c.Problems {
		if p.ID == id {
			return p, true
		}
	}
	return ProblemRecord{}, false
}
