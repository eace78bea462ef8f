// Package strategy expands a derivation tree automatically by classifying
// each pending equation and applying the operation its shape calls for.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/internal/logging"
	"github.com/njchilds90/solvee/operation"
)

var ErrUnknownStrategy = errors.New("strategy: unknown strategy")

// ApplyFunc applies kind to node id and returns the new child IDs. It is the
// only way a strategy writes operations to the tree.
type ApplyFunc func(ctx context.Context, id equation.ID, kind operation.Kind, arg expr.Expr) ([]equation.ID, error)

// HintFunc replaces the hint of node id.
type HintFunc func(id equation.ID, hint string) error

// Strategy is a named expansion procedure.
type Strategy struct {
	Name  string
	Title string
	Help  string

	step func(r *runner, n equation.Node) ([]equation.ID, error)
}

// Option configures a single Run.
type Option func(*runner)

// WithLogger logs classifications at debug level.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithHintFunc routes hint writes through f instead of the tree.
func WithHintFunc(f HintFunc) Option {
	return func(r *runner) {
		if f != nil {
			r.hint = f
		}
	}
}

type runner struct {
	ctx   context.Context
	tree  *equation.Tree
	apply ApplyFunc
	hint  HintFunc
	log   logrus.FieldLogger
}

// Run expands the subtree below root until every pending equation is
// terminal, a dead end, or of a shape the strategy does not handle. Nodes
// are processed from a LIFO work list; children are visited in order.
// Cancelling ctx stops scheduling and returns ctx.Err(); nodes already
// built stay in the tree.
func (s *Strategy) Run(ctx context.Context, tree *equation.Tree, root equation.ID, apply ApplyFunc, opts ...Option) error {
	if _, ok := tree.Node(root); !ok {
		return fmt.Errorf("%w: %d", equation.ErrUnknownNode, root)
	}
	r := &runner{ctx: ctx, tree: tree, apply: apply, hint: tree.SetHint, log: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("strategy", s.Name)

	stack := []equation.ID{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := tree.Node(id)
		if !ok || n.IsError() {
			continue
		}
		next, err := s.step(r, n)
		if err != nil {
			return err
		}
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
	return nil
}

// do applies kind and returns only the children that are not error leaves.
func (r *runner) do(id equation.ID, kind operation.Kind, arg expr.Expr) ([]equation.ID, error) {
	ids, err := r.apply(r.ctx, id, kind, arg)
	if err != nil {
		return nil, err
	}
	var live []equation.ID
	for _, c := range ids {
		if n, ok := r.tree.Node(c); ok && !n.IsError() {
			live = append(live, c)
		}
	}
	return live, nil
}

// chain applies steps one after another, each on the first live child of
// the previous one. It stops early at a dead end.
func (r *runner) chain(id equation.ID, steps ...link) ([]equation.ID, error) {
	cur := []equation.ID{id}
	for _, s := range steps {
		if s.skip {
			continue
		}
		if len(cur) == 0 {
			return nil, nil
		}
		next, err := r.do(cur[0], s.kind, s.arg)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

type link struct {
	kind operation.Kind
	arg  expr.Expr
	skip bool
}

func (r *runner) shape(n equation.Node, shape string) {
	r.log.WithFields(logrus.Fields{"node": n.ID, "equation": n.String(), "shape": shape}).Debug("classified equation")
}

func terminal(n equation.Node) bool {
	sym, ok := n.Left.(*expr.Sym)
	return ok && sym.Name() == n.Variable && !expr.Has(n.Right, n.Variable)
}

var registry = []*Strategy{Polynomial, Trigonometrical}

// Lookup returns the strategy called name.
func Lookup(name string) (*Strategy, error) {
	for _, s := range registry {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Names lists the registered strategies.
func Names() []string {
	out := make([]string, len(registry))
	for i, s := range registry {
		out[i] = s.Name
	}
	return out
}

// All returns the registered strategies.
func All() []*Strategy { return append([]*Strategy(nil), registry...) }
