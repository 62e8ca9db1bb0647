package classify

import (
	"encoding/json"
	"strings"

	"github.com/CTAG07/mensagen/pkg/problem"
)

// Source question categories.
const (
	SourceLogical   = "logical"
	SourceNumerical = "numerical"
	SourceSpatial   = "spatial"
	SourceMatrix    = "matrix"
	SourceVerbal    = "verbal"
	SourceAbstract  = "abstract"
	SourceMemory    = "memory"
)

// FallbackType is assigned to questions whose category is not in TypeTable.
const FallbackType = problem.TypePatternRecognition

// FallbackSubtype is assigned when neither a rule nor a category default applies.
const FallbackSubtype = problem.SubtypeOddOneOut

// TypeTable maps source categories to problem types.
var TypeTable = map[string]problem.ProblemType{
	SourceLogical:   problem.TypeLogicalDeduction,
	SourceNumerical: problem.TypeSequenceCompletion,
	SourceSpatial:   problem.TypeSpatialReasoning,
	SourceMatrix:    problem.TypeMatrixReasoning,
	SourceVerbal:    problem.TypePatternRecognition,
	SourceAbstract:  problem.TypeMatrixReasoning,
	SourceMemory:    problem.TypePatternRecognition,
}

// Matcher reports whether a rule applies to a question. text is the question
// prompt and visual is the JSON form of its visual data ("" when absent).
type Matcher func(text, visual string) bool

// Rule assigns Subtype to questions of category Source when Match holds.
type Rule struct {
	Source  string
	Match   Matcher
	Subtype problem.Subtype
}

// Rules is evaluated top to bottom and the first matching rule for the
// question's category wins.
var Rules = []Rule{
	{SourceLogical, TextContains("すべて", "いくつか"), problem.SubtypeSetTheory},
	{SourceLogical, TextContains(">", "より"), problem.SubtypeConditionalLogic},

	{SourceNumerical, TextContains("数列", "次の数", "パターン"), problem.SubtypeNumerical},

	{SourceSpatial, Either(TextContains("立方体"), VisualContains("cube")), problem.SubtypeCubeRotation},
	{SourceSpatial, Either(TextContains("展開"), VisualContains("net")), problem.SubtypeFolding},
	{SourceSpatial, Either(TextContains("鏡"), VisualContains("mirror")), problem.SubtypeMirrorReflection},

	{SourceMatrix, TextContains("点対称"), problem.SubtypePointSymmetry},
	{SourceMatrix, TextContains("回転"), problem.SubtypeRotation},
	{SourceMatrix, TextContains("進行", "progression"), problem.SubtypeProgression},
}

// Defaults holds the subtype used when no rule of a category matches.
var Defaults = map[string]problem.Subtype{
	SourceLogical:   problem.SubtypeBooleanOperations,
	SourceNumerical: problem.SubtypeMixed,
	SourceSpatial:   problem.SubtypeProjection,
	SourceMatrix:    problem.SubtypeDistribution,
	SourceVerbal:    problem.SubtypeClassification,
	SourceAbstract:  problem.SubtypeProgression,
	SourceMemory:    problem.SubtypeShapeCounting,
}

// TextContains matches when the prompt contains any of subs.
func TextContains(subs ...string) Matcher {
	return func(text, _ string) bool {
		return containsAny(text, subs)
	}
}

// VisualContains matches when the visual data contains any of subs.
func VisualContains(subs ...string) Matcher {
	return func(_, visual string) bool {
		return containsAny(visual, subs)
	}
}

// Either matches when any of ms matches.
func Either(ms ...Matcher) Matcher {
	return func(text, visual string) bool {
		for _, m := range ms {
			if m(text, visual) {
				return true
			}
		}
		return false
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Classification is the outcome of Classify.
type Classification struct {
	Type    problem.ProblemType
	Subtype problem.Subtype
	// Fallback is set when the source category was not recognised.
	Fallback bool
}

// Classify labels a question. It never fails: unknown categories resolve to
// FallbackType and FallbackSubtype.
func Classify(source, text string, visualData any) Classification {
	pt, ok := TypeTable[source]
	if !ok {
		return Classification{Type: FallbackType, Subtype: FallbackSubtype, Fallback: true}
	}

	visual := visualString(visualData)
	for _, r := range Rules {
		if r.Source == source && r.Match(text, visual) {
			return Classification{Type: pt, Subtype: r.Subtype}
		}
	}
	if st, ok := Defaults[source]; ok {
		return Classification{Type: pt, Subtype: st}
	}
	return Classification{Type: pt, Subtype: FallbackSubtype}
}

func visualString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
