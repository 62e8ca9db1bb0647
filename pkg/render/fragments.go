package render

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/CTAG07/mensagen/pkg/problem"
	"golang.org/x/text/width"
)

// FragmentBuilder produces the main content block of a page.
type FragmentBuilder func(p problem.ProblemRecord) template.HTML

// cell markup for the stock matrices. Each grid has eight cells; the ninth is
// always the missing one.
var (
	pointSymmetryCells = shapeCells(
		"arrow arrow-up", "arrow arrow-left", "arrow arrow-down",
		"arrow arrow-left", "arrow arrow-up", "arrow arrow-right",
		"arrow arrow-down", "arrow arrow-right",
	)
	rotationCells = shapeCells(
		"triangle", "triangle rotate-90", "triangle rotate-180",
		"triangle rotate-90", "triangle rotate-180", "triangle rotate-270",
		"triangle rotate-180", "triangle rotate-270",
	)
	distributionCells = shapeCells(
		"circle", "triangle", "square",
		"square", "circle", "triangle",
		"triangle", "square",
	)
	progressionCells = shapeCells(
		"circle small", "circle medium", "circle large",
		"triangle small", "triangle medium", "triangle large",
		"square small", "square medium",
	)
	letterCells = textCells("A", "B", "C", "D", "E", "F", "G", "H")
)

// matrixFragments is keyed by subtype; other subtypes get the lettered grid.
var matrixFragments = map[problem.Subtype]FragmentBuilder{
	problem.SubtypePointSymmetry: matrixOf(pointSymmetryCells),
	problem.SubtypeRotation:      matrixOf(rotationCells),
	problem.SubtypeDistribution:  matrixOf(distributionCells),
	problem.SubtypeProgression:   matrixOf(progressionCells),
}

// spatialFragments is keyed by subtype; other subtypes get a plain label.
var spatialFragments = map[problem.Subtype]FragmentBuilder{
	problem.SubtypeCubeRotation: fixed(`
<div class="spatial-item">
    <div class="cube-net">
        <div class="cube-face" style="grid-column: 2; grid-row: 1;">A</div>
        <div class="cube-face" style="grid-column: 1; grid-row: 2;">B</div>
        <div class="cube-face" style="grid-column: 2; grid-row: 2;">C</div>
        <div class="cube-face" style="grid-column: 3; grid-row: 2;">D</div>
        <div class="cube-face" style="grid-column: 4; grid-row: 2;">E</div>
        <div class="cube-face" style="grid-column: 2; grid-row: 3;">F</div>
    </div>
</div>
`),
	problem.SubtypeFolding: fixed(`
<div class="spatial-item">
    <div class="fold-pattern">
        <div class="fold-section">1</div>
        <div class="fold-section">2</div>
        <div class="fold-section">3</div>
    </div>
</div>
`),
	problem.SubtypeProjection: fixed(`<div class="spatial-item">立体図形の投影</div>`),
}

func fixed(markup string) FragmentBuilder {
	return func(problem.ProblemRecord) template.HTML {
		return template.HTML(markup)
	}
}

func shapeCells(classes ...string) []template.HTML {
	cells := make([]template.HTML, len(classes))
	for i, c := range classes {
		cells[i] = template.HTML(`<span class="` + c + `"></span>`)
	}
	return cells
}

func textCells(texts ...string) []template.HTML {
	cells := make([]template.HTML, len(texts))
	for i, t := range texts {
		cells[i] = template.HTML(template.HTMLEscapeString(t))
	}
	return cells
}

// matrixOf returns a builder for a 3x3 grid. Cells listed in the record's
// visual data take precedence over the stock cells.
func matrixOf(stock []template.HTML) FragmentBuilder {
	return func(p problem.ProblemRecord) template.HTML {
		if cells := visualCells(p.VisualData); cells != nil {
			return grid(cells)
		}
		return grid(stock)
	}
}

// MatrixFragment builds the grid for a matrix problem.
func MatrixFragment(p problem.ProblemRecord) template.HTML {
	if b, ok := matrixFragments[p.Subtype]; ok {
		return b(p)
	}
	return grid(letterCells)
}

// SpatialFragment builds the diagram for a spatial problem.
func SpatialFragment(p problem.ProblemRecord) template.HTML {
	if b, ok := spatialFragments[p.Subtype]; ok {
		return b(p)
	}
	return `<div class="spatial-item">空間認識問題</div>`
}

// GenericFragment shows the title and description as text.
func GenericFragment(p problem.ProblemRecord) template.HTML {
	var builder strings.Builder
	builder.WriteString("\n<div class=\"generic-problem\">\n")
	builder.WriteString("    <h3>" + template.HTMLEscapeString(p.Title) + "</h3>\n")
	builder.WriteString("    <p>" + template.HTMLEscapeString(p.Description) + "</p>\n")
	builder.WriteString("</div>\n")
	return template.HTML(builder.String())
}

func grid(cells []template.HTML) template.HTML {
	var builder strings.Builder
	builder.WriteString("\n<div class=\"matrix-3x3\">\n")
	for i := 0; i < 8 && i < len(cells); i++ {
		builder.WriteString("    <div class=\"cell\">")
		builder.WriteString(string(cells[i]))
		builder.WriteString("</div>\n")
	}
	builder.WriteString("    <div class=\"cell missing\">?</div>\n")
	builder.WriteString("</div>\n")
	return template.HTML(builder.String())
}

// visualCells reads up to eight shape names from a "cells" list in the
// visual data. It returns nil when there are fewer than eight.
func visualCells(visual any) []template.HTML {
	m, ok := visual.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := m["cells"].([]any)
	if !ok || len(list) < 8 {
		return nil
	}
	cells := make([]template.HTML, 0, 8)
	for _, v := range list[:8] {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		cells = append(cells, renderShape(s))
	}
	return cells
}

func renderShape(def string) template.HTML {
	if dir, ok := strings.CutPrefix(def, "arrow-"); ok {
		return template.HTML(`<span class="arrow arrow-` + template.HTMLEscapeString(dir) + `"></span>`)
	}
	switch def {
	case "circle", "square", "triangle", "diamond":
		return template.HTML(`<div class="` + def + `"></div>`)
	}
	return template.HTML(template.HTMLEscapeString(def))
}

var (
	sequencePattern = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:\s*[,、，]\s*-?\d+(?:\.\d+)?){2,}`)
	sequenceSplit   = regexp.MustCompile(`\s*[,、，]\s*`)
)

// SequenceItems extracts the first run of three or more comma separated
// numbers from text and appends the unknown term. Full-width digits and
// commas are read as their ASCII forms. When there is no such run it
// returns six unknowns.
func SequenceItems(text string) []string {
	run := sequencePattern.FindString(width.Fold.String(text))
	if run == "" {
		return []string{"?", "?", "?", "?", "?", "?"}
	}
	return append(sequenceSplit.Split(run, -1), "?")
}

// SequenceFragment lays the sequence out left to right with arrows between terms.
func SequenceFragment(p problem.ProblemRecord) template.HTML {
	items := SequenceItems(p.Description)
	var builder strings.Builder
	for i, item := range items {
		if item == "?" {
			builder.WriteString(`<div class="sequence-item missing">?</div>`)
		} else {
			builder.WriteString(`<div class="sequence-item"><span class="number">` + template.HTMLEscapeString(item) + `</span></div>`)
		}
		if i < len(items)-1 {
			builder.WriteString(`<span class="arrow-between">→</span>`)
		}
	}
	return template.HTML(builder.String())
}

// OptionsFragment emits one block per option, labelled by position.
func OptionsFragment(options []string) (template.HTML, error) {
	var builder strings.Builder
	for i, opt := range options {
		letter, err := problem.Letter(i)
		if err != nil {
			return "", err
		}
		builder.WriteString("\n<div class=\"option\">\n")
		builder.WriteString("    <span class=\"option-letter\">" + letter + "</span>\n")
		builder.WriteString("    <span class=\"option-content\">" + template.HTMLEscapeString(opt) + "</span>\n")
		builder.WriteString("</div>\n")
	}
	return template.HTML(builder.String()), nil
}
