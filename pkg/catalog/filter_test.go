package catalog

import (
	"testing"

	"github.com/CTAG07/mensagen/pkg/problem"
)

func TestFilter_Apply(t *testing.T) {
	problems := []problem.ProblemRecord{
		{ID: "001", Type: problem.TypeMatrixReasoning, Subtype: problem.SubtypeRotation, Difficulty: 3, Description: "Rotate the shape"},
		{ID: "002", Type: problem.TypeMatrixReasoning, Subtype: problem.SubtypeDistribution, Difficulty: 9, Title: "行列推論 - distribution"},
		{ID: "003", Type: problem.TypeSequenceCompletion, Subtype: problem.SubtypeNumerical, Difficulty: 15, Explanation: "数列のパターン"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero", Filter{}, []string{"001", "002", "003"}},
		{"type", Filter{Type: problem.TypeMatrixReasoning}, []string{"001", "002"}},
		{"subtype", Filter{Subtype: problem.SubtypeNumerical}, []string{"003"}},
		{"min difficulty", Filter{MinDifficulty: 9}, []string{"002", "003"}},
		{"difficulty range", Filter{MinDifficulty: 2, MaxDifficulty: 9}, []string{"001", "002"}},
		{"search description ignores case", Filter{Search: "ROTATE"}, []string{"001"}},
		{"search title", Filter{Search: "distribution"}, []string{"002"}},
		{"search explanation", Filter{Search: "数列"}, []string{"003"}},
		{"search folds full-width", Filter{Search: "ＲＯＴＡＴＥ"}, []string{"001"}},
		{"limit", Filter{Limit: 1}, []string{"001"}},
		{"no match", Filter{Type: problem.TypeLogicalDeduction}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(problems)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d problems, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("result %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFilter_IsZero(t *testing.T) {
	if !(Filter{}).IsZero() {
		t.Error("empty filter should be zero")
	}
	if (Filter{Limit: 3}).IsZero() {
		t.Error("limited filter should not be zero")
	}
}
