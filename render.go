package solvee

import (
	"strings"

	"github.com/njchilds90/solvee/collector"
	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/operation"
)

// Render draws the reachable tree as indented text, one equation per line
// followed by the step applied to it. The selected equation is marked
// with "*", dead ends with "✗".
func (s *Session) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return ""
	}
	var b strings.Builder
	s.tree.Walk(s.tree.Root(), func(n equation.Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		if n.ID == s.selected {
			b.WriteString("* ")
		}
		b.WriteString(n.String())
		if label := stepLabel(n); label != "" {
			b.WriteString("   ")
			b.WriteString(label)
		}
		if n.IsError() {
			b.WriteString("   ✗ ")
			b.WriteString(n.Error)
		}
		if n.Hint != "" {
			b.WriteString("   (")
			b.WriteString(n.Hint)
			b.WriteString(")")
		}
		b.WriteString("\n")
	})
	return b.String()
}

func stepLabel(n equation.Node) string {
	k, ok := n.Operation.(operation.Kind)
	if !ok {
		return ""
	}
	return k.Describe(n.Argument)
}

// NodeView is the JSON form of one equation.
type NodeView struct {
	ID         equation.ID   `json:"id"`
	Former     equation.ID   `json:"former"`
	Derived    []equation.ID `json:"derived,omitempty"`
	Variable   string        `json:"variable"`
	Equation   string        `json:"equation"`
	Left       string        `json:"left"`
	Right      string        `json:"right"`
	LaTeX      string        `json:"latex"`
	Operation  string        `json:"operation,omitempty"`
	Argument   string        `json:"argument,omitempty"`
	Step       string        `json:"step,omitempty"`
	Error      string        `json:"error,omitempty"`
	Hint       string        `json:"hint,omitempty"`
	LeftTree   interface{}   `json:"left_tree,omitempty"`
	RightTree  interface{}   `json:"right_tree,omitempty"`
	IsSolution bool          `json:"is_solution,omitempty"`
}

// View is the JSON form of a session.
type View struct {
	Root      equation.ID `json:"root"`
	Selected  equation.ID `json:"selected"`
	Variable  string      `json:"variable"`
	Nodes     []NodeView  `json:"nodes"`
	Solutions []string    `json:"solutions"`
	Hints     []string    `json:"hints"`
	Expected  []string    `json:"expected,omitempty"`
	Valid     *bool       `json:"valid,omitempty"`
	Expanding bool        `json:"expanding"`
}

// Snapshot returns the reachable tree with solutions and hints, ready to
// be encoded as JSON.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{Root: equation.NoID, Selected: s.selected, Expanding: s.expanding, Solutions: []string{}, Hints: []string{}}
	if s.hasExpected {
		v.Expected = collector.Strings(s.expected)
	}
	if s.tree == nil {
		return v
	}
	root, _ := s.tree.Node(s.tree.Root())
	v.Root, v.Variable = root.ID, root.Variable

	res := s.collectLocked()
	v.Solutions = collector.Strings(res.Solutions)
	if res.Hints != nil {
		v.Hints = res.Hints
	}
	if s.hasExpected {
		ok := s.validLocked(res)
		v.Valid = &ok
	}

	s.tree.Walk(s.tree.Root(), func(n equation.Node, _ int) {
		nv := NodeView{
			ID:        n.ID,
			Former:    n.Former,
			Derived:   n.Derived,
			Variable:  n.Variable,
			Equation:  n.String(),
			Left:      n.Left.String(),
			Right:     n.Right.String(),
			LaTeX:     n.Left.LaTeX() + " = " + n.Right.LaTeX(),
			Step:      stepLabel(n),
			Error:     n.Error,
			Hint:      n.Hint,
			LeftTree:  expr.ToJSON(n.Left),
			RightTree: expr.ToJSON(n.Right),
		}
		if n.Operation != nil {
			nv.Operation = n.Operation.String()
		}
		if n.Argument != nil {
			nv.Argument = n.Argument.String()
		}
		if sym, ok := n.Left.(*expr.Sym); ok && n.IsLeaf() && !n.IsError() {
			nv.IsSolution = sym.Name() == root.Variable && expr.IsNumber(n.Right)
		}
		v.Nodes = append(v.Nodes, nv)
	})
	return v
}
