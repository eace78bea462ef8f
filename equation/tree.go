// Package equation holds the derivation tree: every equation reached while
// solving, linked to the equation it was derived from.
//
// Nodes live in an arena and are addressed by ID. A node is created either
// as the root of a tree or as a child of an existing node, so the Former
// links never form a cycle. Re-deriving a node replaces its children; the
// detached nodes stay in the arena but are no longer reachable from the
// root.
package equation

import (
	"errors"
	"fmt"

	"github.com/njchilds90/solvee/expr"
)

// ID addresses a node in a Tree.
type ID int

// NoID is the Former of a root node.
const NoID ID = -1

var (
	ErrUnknownNode = errors.New("equation: unknown node")
	ErrErrorLeaf   = errors.New("equation: error node cannot be derived")
	ErrNoBranches  = errors.New("equation: operation produced no equations")
)

// Tag names the operation recorded on a node.
type Tag interface {
	String() string
}

// Node is one equation of the derivation.
type Node struct {
	ID       ID
	Variable string
	Left     expr.Expr
	Right    expr.Expr

	Former  ID
	Derived []ID

	// Operation is the operation applied to this node, nil until one is.
	Operation Tag
	Argument  expr.Expr

	// Error is set on dead ends: the node repeats its parent's equation and
	// explains why the operation was rejected.
	Error string
	Hint  string
}

func (n Node) IsError() bool { return n.Error != "" }
func (n Node) IsLeaf() bool  { return len(n.Derived) == 0 }

// String renders "left = right".
func (n Node) String() string {
	return n.Left.String() + " = " + n.Right.String()
}

// Branch describes a node to be created by Attach.
type Branch struct {
	Variable string
	Left     expr.Expr
	Right    expr.Expr
	Error    string
	Hint     string
}

// Tree is an arena of equation nodes. It is not safe for concurrent
// mutation; callers serialize access.
type Tree struct {
	nodes []*Node
	root  ID
}

// NewTree creates a tree whose root is left = right in variable.
func NewTree(variable string, left, right expr.Expr) *Tree {
	t := &Tree{}
	t.root = t.add(&Node{Variable: variable, Left: left, Right: right, Former: NoID})
	return t
}

func (t *Tree) add(n *Node) ID {
	n.ID = ID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	return n.ID
}

func (t *Tree) get(id ID) (*Node, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return t.nodes[id], nil
}

// Root returns the ID of the root node.
func (t *Tree) Root() ID { return t.root }

// Len returns the number of nodes in the arena, reachable or not.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns a copy of the node id.
func (t *Tree) Node(id ID) (Node, bool) {
	n, err := t.get(id)
	if err != nil {
		return Node{}, false
	}
	cp := *n
	cp.Derived = append([]ID(nil), n.Derived...)
	return cp, true
}

// Attach records that tag (with argument arg) was applied to parent and
// replaces the parent's children with new nodes built from branches.
func (t *Tree) Attach(parent ID, tag Tag, arg expr.Expr, branches []Branch) ([]ID, error) {
	p, err := t.get(parent)
	if err != nil {
		return nil, err
	}
	if p.IsError() {
		return nil, fmt.Errorf("%w: %d", ErrErrorLeaf, parent)
	}
	if len(branches) == 0 {
		return nil, ErrNoBranches
	}
	ids := make([]ID, 0, len(branches))
	for _, b := range branches {
		ids = append(ids, t.add(&Node{
			Variable: b.Variable,
			Left:     b.Left,
			Right:    b.Right,
			Former:   parent,
			Error:    b.Error,
			Hint:     b.Hint,
		}))
	}
	p.Operation = tag
	p.Argument = arg
	p.Derived = ids
	return append([]ID(nil), ids...), nil
}

// Reset detaches the children of id and clears its operation.
func (t *Tree) Reset(id ID) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	n.Derived = nil
	n.Operation = nil
	n.Argument = nil
	return nil
}

// SetHint replaces the hint of id.
func (t *Tree) SetHint(id ID, hint string) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	n.Hint = hint
	return nil
}

// Lineage returns id followed by its ancestors up to the root.
func (t *Tree) Lineage(id ID) []ID {
	var out []ID
	for id != NoID {
		n, err := t.get(id)
		if err != nil {
			break
		}
		out = append(out, id)
		id = n.Former
	}
	return out
}

// Top returns the root of the tree containing id.
func (t *Tree) Top(id ID) ID {
	lineage := t.Lineage(id)
	if len(lineage) == 0 {
		return NoID
	}
	return lineage[len(lineage)-1]
}

// Walk visits the subtree below from depth first, parents before
// children, children in order.
func (t *Tree) Walk(from ID, visit func(n Node, depth int)) {
	type frame struct {
		id    ID
		depth int
	}
	stack := []frame{{from, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := t.Node(f.id)
		if !ok {
			continue
		}
		visit(n, f.depth)
		for i := len(n.Derived) - 1; i >= 0; i-- {
			stack = append(stack, frame{n.Derived[i], f.depth + 1})
		}
	}
}
