package catalog

import (
	"strings"

	"github.com/CTAG07/mensagen/pkg/problem"
	"golang.org/x/text/width"
)

// Filter selects a subset of the catalog. Zero values disable a criterion.
type Filter struct {
	Type          problem.ProblemType `json:"type,omitempty"`
	Subtype       problem.Subtype     `json:"subtype,omitempty"`
	MinDifficulty int                 `json:"min_difficulty,omitempty"`
	MaxDifficulty int                 `json:"max_difficulty,omitempty"`
	// Search matches case-insensitively against description, title and explanation.
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// IsZero reports whether the filter selects everything.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether a record passes every criterion except Limit.
func (f Filter) Match(p problem.ProblemRecord) bool {
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Subtype != "" && p.Subtype != f.Subtype {
		return false
	}
	if f.MinDifficulty > 0 && p.Difficulty < f.MinDifficulty {
		return false
	}
	if f.MaxDifficulty > 0 && p.Difficulty > f.MaxDifficulty {
		return false
	}
	if f.Search != "" {
		s := foldText(f.Search)
		if !strings.Contains(foldText(p.Description), s) &&
			!strings.Contains(foldText(p.Title), s) &&
			!strings.Contains(foldText(p.Explanation), s) {
			return false
		}
	}
	return true
}

// foldText lowercases s and maps full-width characters to their narrow forms.
func foldText(s string) string {
	return strings.ToLower(width.Fold.String(s))
}

// Apply returns the matching records in catalog order.
func (f Filter) Apply(problems []problem.ProblemRecord) []problem.ProblemRecord {
	out := make([]problem.ProblemRecord, 0, len(problems))
	for _, p := range problems {
		if !f.Match(p) {
			continue
		}
		out = append(out, p)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}
