package render

import "github.com/CTAG07/mensagen/pkg/problem"

// Template file names.
const (
	MatrixTemplate   = "matrix.tmpl.html"
	SequenceTemplate = "sequence.tmpl.html"
	SpatialTemplate  = "spatial.tmpl.html"
)

// Layout pairs a page template with the builder for its content slot.
type Layout struct {
	Template string
	Content  FragmentBuilder
}

// GenericLayout is used for types without a dedicated layout.
var GenericLayout = Layout{Template: MatrixTemplate, Content: GenericFragment}

// Layouts maps each problem type to its layout.
var Layouts = map[problem.ProblemType]Layout{
	problem.TypeMatrixReasoning:    {Template: MatrixTemplate, Content: MatrixFragment},
	problem.TypeSequenceCompletion: {Template: SequenceTemplate, Content: SequenceFragment},
	problem.TypeSpatialReasoning:   {Template: SpatialTemplate, Content: SpatialFragment},
	problem.TypePatternRecognition: GenericLayout,
	problem.TypeLogicalDeduction:   GenericLayout,
}

// LayoutFor returns the layout of a problem type.
func LayoutFor(pt problem.ProblemType) Layout {
	if l, ok := Layouts[pt]; ok {
		return l
	}
	return GenericLayout
}

// layoutTemplates lists every template name a layout refers to.
func layoutTemplates() []string {
	seen := map[string]bool{GenericLayout.Template: true}
	names := []string{GenericLayout.Template}
	for _, l := range Layouts {
		if !seen[l.Template] {
			seen[l.Template] = true
			names = append(names, l.Template)
		}
	}
	return names
}
