package render

import (
	"errors"
	"fmt"
	"html/template"
	"sort"
	"text/template/parse"
)

// Page slots. Each names a field of Page.
const (
	SlotNumber      = "Number"
	SlotTitle       = "Title"
	SlotDifficulty  = "Difficulty"
	SlotTime        = "Time"
	SlotInstruction = "Instruction"
	SlotContent     = "Content"
	SlotOptions     = "Options"
)

var (
	// ErrMissingSlot is returned when a page template does not reference a required slot.
	ErrMissingSlot = errors.New("template is missing a required slot")
	// ErrMissingTemplate is returned when a layout names a template that was not loaded.
	ErrMissingTemplate = errors.New("template not found")
)

// Page is the data every page template is executed with.
type Page struct {
	Number      string
	Title       string
	Difficulty  int
	Time        string
	Instruction string
	Content     template.HTML
	Options     template.HTML
}

// checkSlots verifies that the named template, including any templates it
// calls, references every required slot.
func checkSlots(set *template.Template, name string, required []string) error {
	t := set.Lookup(name)
	if t == nil || t.Tree == nil {
		return fmt.Errorf("%w: %s", ErrMissingTemplate, name)
	}

	w := slotWalker{set: set, found: map[string]bool{}, visited: map[string]bool{name: true}}
	w.node(t.Tree.Root)

	var missing []string
	for _, slot := range required {
		if !w.found[slot] {
			missing = append(missing, slot)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s does not use %v", ErrMissingSlot, name, missing)
	}
	return nil
}

// slotWalker collects the top-level field names referenced by a parse tree.
type slotWalker struct {
	set     *template.Template
	found   map[string]bool
	visited map[string]bool
}

func (w *slotWalker) node(n parse.Node) {
	switch n := n.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			w.node(c)
		}
	case *parse.ActionNode:
		w.pipe(n.Pipe)
	case *parse.IfNode:
		w.branch(&n.BranchNode)
	case *parse.RangeNode:
		w.branch(&n.BranchNode)
	case *parse.WithNode:
		w.branch(&n.BranchNode)
	case *parse.TemplateNode:
		w.pipe(n.Pipe)
		if w.visited[n.Name] {
			return
		}
		w.visited[n.Name] = true
		if t := w.set.Lookup(n.Name); t != nil && t.Tree != nil {
			w.node(t.Tree.Root)
		}
	}
}

func (w *slotWalker) branch(b *parse.BranchNode) {
	w.pipe(b.Pipe)
	w.node(b.List)
	if b.ElseList != nil {
		w.node(b.ElseList)
	}
}

func (w *slotWalker) pipe(p *parse.PipeNode) {
	if p == nil {
		return
	}
	for _, cmd := range p.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				if len(a.Ident) > 0 {
					w.found[a.Ident[0]] = true
				}
			case *parse.PipeNode:
				w.pipe(a)
			}
		}
	}
}
