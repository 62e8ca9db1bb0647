package classify

import (
	"fmt"

	"github.com/CTAG07/mensagen/pkg/problem"
)

// GenericTitle is used for types without an entry in TypeTitles.
const GenericTitle = "認知推論"

// TypeTitles holds the display name of each problem type.
var TypeTitles = map[problem.ProblemType]string{
	problem.TypeMatrixReasoning:    "行列推論",
	problem.TypeSequenceCompletion: "数列完成",
	problem.TypeSpatialReasoning:   "空間認識",
	problem.TypePatternRecognition: "パターン認識",
	problem.TypeLogicalDeduction:   "論理推論",
}

// TypeTitle returns the display name of a problem type.
func TypeTitle(pt problem.ProblemType) string {
	if t, ok := TypeTitles[pt]; ok {
		return t
	}
	return GenericTitle
}

// Title builds the record title for a classification. Questions from an
// unrecognised category get GenericTitle rather than the title of the
// fallback type.
func Title(c Classification) string {
	name := TypeTitle(c.Type)
	if c.Fallback {
		name = GenericTitle
	}
	return fmt.Sprintf("%s - %s", name, c.Subtype)
}

// Explanation builds the one-sentence explanation for a question, citing the
// text of its correct option.
func Explanation(q problem.RawQuestion) (string, error) {
	answer, err := q.CorrectOption()
	if err != nil {
		return "", err
	}
	switch q.Type {
	case SourceLogical:
		return fmt.Sprintf("三段論法の基本原理により、正解は「%s」", answer), nil
	case SourceNumerical:
		return fmt.Sprintf("数列のパターンを分析すると、正解は「%s」", answer), nil
	case SourceSpatial:
		return fmt.Sprintf("空間変換を考慮すると、正解は「%s」", answer), nil
	default:
		return fmt.Sprintf("問題の規則性から、正解は「%s」", answer), nil
	}
}
