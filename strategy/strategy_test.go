package strategy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/operation"
	"github.com/njchilds90/solvee/strategy"
)

// ============================================================
// helpers
// ============================================================

func direct(tree *equation.Tree) strategy.ApplyFunc {
	return func(_ context.Context, id equation.ID, kind operation.Kind, arg expr.Expr) ([]equation.ID, error) {
		return operation.Apply(tree, id, kind, arg)
	}
}

func expand(t *testing.T, name, text string) *equation.Tree {
	t.Helper()
	l, r, err := expr.ParseEquation(text)
	require.NoError(t, err)
	tree := equation.NewTree("x", l, r)
	s, err := strategy.Lookup(name)
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), tree, tree.Root(), direct(tree)))
	return tree
}

// leaves lists the reachable leaves that are not dead ends.
func leaves(tree *equation.Tree) []string {
	var out []string
	tree.Walk(tree.Root(), func(n equation.Node, _ int) {
		if n.IsLeaf() && !n.IsError() {
			out = append(out, n.String())
		}
	})
	return out
}

func deadEnds(tree *equation.Tree) []equation.Node {
	var out []equation.Node
	tree.Walk(tree.Root(), func(n equation.Node, _ int) {
		if n.IsError() {
			out = append(out, n)
		}
	})
	return out
}

// ============================================================
// Registry
// ============================================================

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"polynomial", "trigonometrical"}, strategy.Names())
	s, err := strategy.Lookup("polynomial")
	require.NoError(t, err)
	assert.Same(t, strategy.Polynomial, s)

	_, err = strategy.Lookup("cubic")
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}

// ============================================================
// Polynomial
// ============================================================

func TestPolynomial_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		equation string
		want     []string
	}{
		{"already solved", "x = 4", []string{"x = 4"}},
		{"linear", "2x + 4 = 10", []string{"x = 3"}},
		{"linear without constant", "3x = 0", []string{"x = 0"}},
		{"quadratic", "2x^2 - 4x - 6 = 0", []string{"x = -1", "x = 3"}},
		{"quadratic with right side", "x^2 = 2x + 3", []string{"x = -1", "x = 3"}},
		{"pure square", "x^2 = 4", []string{"x = 2", "x = -2"}},
		{"pure cube", "x^3 = 8", []string{"x = 2"}},
		{"scaled power", "2x^4 - 32 = 0", []string{"x = 2", "x = -2"}},
		{"product", "(x - 2)(x - 3) = 0", []string{"x = 2", "x = 3"}},
		{"common factor", "x^3 - 4x = 0", []string{"x = 0", "x = 2", "x = -2"}},
		{"biquadratic", "x^4 - 5x^2 + 4 = 0", []string{"x = 1", "x = -1", "x = 2", "x = -2"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := expand(t, "polynomial", tc.equation)
			assert.ElementsMatch(t, tc.want, leaves(tree))
		})
	}
}

func TestPolynomial_NoRealSolution(t *testing.T) {
	tree := expand(t, "polynomial", "x^2 + 1 = 0")
	assert.Empty(t, leaves(tree))
	assert.Len(t, deadEnds(tree), 1)
}

func TestPolynomial_BiquadraticWithoutRealRoots(t *testing.T) {
	tree := expand(t, "polynomial", "x^4 + x^2 + 1 = 0")
	assert.Empty(t, leaves(tree))
	dead := deadEnds(tree)
	require.Len(t, dead, 1)
	assert.Equal(t, "D = -3 < 0", dead[0].Error)
}

func TestPolynomial_UnknownShapeHalts(t *testing.T) {
	tree := expand(t, "polynomial", "sin(x) = 0")
	assert.Equal(t, 1, tree.Len())
	root, _ := tree.Node(tree.Root())
	assert.Nil(t, root.Operation)
}

func TestPolynomial_Deterministic(t *testing.T) {
	a := expand(t, "polynomial", "x^4 - 5x^2 + 4 = 0")
	b := expand(t, "polynomial", "x^4 - 5x^2 + 4 = 0")
	assert.Equal(t, a.Len(), b.Len())
	assert.Equal(t, leaves(a), leaves(b))
}

func TestPolynomial_VisitsChildrenInOrder(t *testing.T) {
	tree := expand(t, "polynomial", "x^4 - 5x^2 + 4 = 0")
	assert.Equal(t, []string{"x = 1", "x = -1", "x = 2", "x = -2"}, leaves(tree))
}

// ============================================================
// Trigonometrical
// ============================================================

func TestTrigonometrical_IsolatesAndPeriodizes(t *testing.T) {
	tree := expand(t, "trigonometrical", "2sin(x) - 1 = 0")
	assert.Equal(t, []string{"x = 2*k*pi + 1/6*pi", "x = 2*k*pi + 5/6*pi"}, leaves(tree))
}

func TestTrigonometrical_Cosine(t *testing.T) {
	tree := expand(t, "trigonometrical", "cos(x) = 1/2")
	assert.Equal(t, []string{"x = 2*k*pi + 1/3*pi", "x = 2*k*pi - 1/3*pi"}, leaves(tree))
}

func TestTrigonometrical_CompoundArgument(t *testing.T) {
	tree := expand(t, "trigonometrical", "sin(2x) = 1/2")
	root, _ := tree.Node(tree.Root())
	assert.Equal(t, "p = pi", root.Hint)
	assert.Equal(t, []string{"x = k*pi + 1/12*pi", "x = k*pi + 5/12*pi"}, leaves(tree))
}

func TestTrigonometrical_ConstantCoefficientPeriod(t *testing.T) {
	tree := expand(t, "trigonometrical", "cos(pi*x) = 0")
	root, _ := tree.Node(tree.Root())
	assert.Equal(t, "p = 2", root.Hint)
	got := leaves(tree)
	require.NotEmpty(t, got)
	for _, leaf := range got {
		assert.NotContains(t, leaf, "abs")
	}
}

func TestTrigonometrical_ReciprocalFactor(t *testing.T) {
	tree := expand(t, "trigonometrical", "1/2 sin(x) = 1/4")
	root, _ := tree.Node(tree.Root())
	assert.Equal(t, operation.Multiply, root.Operation)
	assert.Equal(t, "2", root.Argument.String())
	assert.Len(t, leaves(tree), 2)
}

func TestTrigonometrical_OutOfRange(t *testing.T) {
	tree := expand(t, "trigonometrical", "sin(x) = 2")
	assert.Empty(t, leaves(tree))
	assert.Len(t, deadEnds(tree), 1)
}

// ============================================================
// Run
// ============================================================

func TestRun_CancelledBeforeStart(t *testing.T) {
	l, r, err := expr.ParseEquation("2x^2 - 4x - 6 = 0")
	require.NoError(t, err)
	tree := equation.NewTree("x", l, r)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = strategy.Polynomial.Run(ctx, tree, tree.Root(), direct(tree))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, tree.Len())
}

func TestRun_PropagatesApplyError(t *testing.T) {
	l, r, err := expr.ParseEquation("2x + 4 = 10")
	require.NoError(t, err)
	tree := equation.NewTree("x", l, r)
	boom := errors.New("boom")
	failing := func(context.Context, equation.ID, operation.Kind, expr.Expr) ([]equation.ID, error) {
		return nil, boom
	}
	assert.ErrorIs(t, strategy.Polynomial.Run(context.Background(), tree, tree.Root(), failing), boom)
}

func TestRun_UnknownRoot(t *testing.T) {
	tree := equation.NewTree("x", expr.S("x"), expr.N(1))
	err := strategy.Polynomial.Run(context.Background(), tree, equation.ID(5), direct(tree))
	assert.ErrorIs(t, err, equation.ErrUnknownNode)
}

func TestRun_LogsShapes(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	l, r, err := expr.ParseEquation("2x + 4 = 10")
	require.NoError(t, err)
	tree := equation.NewTree("x", l, r)
	require.NoError(t, strategy.Polynomial.Run(context.Background(), tree, tree.Root(), direct(tree), strategy.WithLogger(logger)))

	var shapes []interface{}
	for _, e := range hook.AllEntries() {
		shapes = append(shapes, e.Data["shape"])
	}
	assert.Equal(t, []interface{}{"unnormalized", "linear"}, shapes)
}

func TestRun_HintFunc(t *testing.T) {
	l, r, err := expr.ParseEquation("cos(3x) = 0")
	require.NoError(t, err)
	tree := equation.NewTree("x", l, r)
	got := map[equation.ID]string{}
	hint := func(id equation.ID, h string) error {
		got[id] = h
		return nil
	}
	require.NoError(t, strategy.Trigonometrical.Run(context.Background(), tree, tree.Root(), direct(tree), strategy.WithHintFunc(hint)))
	assert.Equal(t, map[equation.ID]string{tree.Root(): "p = 2/3*pi"}, got)
	root, _ := tree.Node(tree.Root())
	assert.Empty(t, root.Hint)
}
