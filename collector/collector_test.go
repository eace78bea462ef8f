package collector_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/solvee/collector"
	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/operation"
	"github.com/njchilds90/solvee/strategy"
)

func solved(t *testing.T, s *strategy.Strategy, text string) *equation.Tree {
	t.Helper()
	l, r, err := expr.ParseEquation(text)
	require.NoError(t, err)
	tree := equation.NewTree("x", l, r)
	apply := func(_ context.Context, id equation.ID, kind operation.Kind, arg expr.Expr) ([]equation.ID, error) {
		return operation.Apply(tree, id, kind, arg)
	}
	require.NoError(t, s.Run(context.Background(), tree, tree.Root(), apply))
	return tree
}

// ============================================================
// Collect
// ============================================================

func TestCollect_SolutionsSortedAndUnique(t *testing.T) {
	tree := solved(t, strategy.Polynomial, "x^4 - 5x^2 + 4 = 0")
	res := collector.Collect(tree, tree.Root(), nil)
	assert.Equal(t, []string{"-2", "-1", "1", "2"}, collector.Strings(res.Solutions))
	assert.Empty(t, res.Hints)
}

func TestCollect_IgnoresErrorLeavesAndPeriodized(t *testing.T) {
	tree := solved(t, strategy.Polynomial, "x^2 + 1 = 0")
	assert.Empty(t, collector.Collect(tree, tree.Root(), nil).Solutions)

	tree = solved(t, strategy.Trigonometrical, "2sin(x) - 1 = 0")
	assert.Empty(t, collector.Collect(tree, tree.Root(), nil).Solutions)
}

func TestCollect_NodeHints(t *testing.T) {
	tree := solved(t, strategy.Trigonometrical, "sin(2x) = 1/2")
	res := collector.Collect(tree, tree.Root(), nil)
	require.NotEmpty(t, res.Hints)
	assert.Equal(t, "p = pi", res.Hints[0])
}

func TestCollect_RuleMessages(t *testing.T) {
	rule, err := collector.NewRule(operation.Factorize, "_a*x^2 + _b*x = 0", "factor instead")
	require.NoError(t, err)

	tree := solved(t, strategy.Polynomial, "x^2 - 3x = 0")
	res := collector.Collect(tree, tree.Root(), []collector.Rule{rule})
	assert.Contains(t, res.Hints, "factor instead")
	assert.Equal(t, []string{"0", "3"}, collector.Strings(res.Solutions))

	tree = solved(t, strategy.Polynomial, "2x^2 - 4x - 6 = 0")
	res = collector.Collect(tree, tree.Root(), []collector.Rule{rule})
	assert.NotContains(t, res.Hints, "factor instead")
}

func TestCollect_SubtreeOnly(t *testing.T) {
	tree := solved(t, strategy.Polynomial, "(x - 2)(x - 3) = 0")
	root, _ := tree.Node(tree.Root())
	res := collector.Collect(tree, root.Derived[1], nil)
	assert.Equal(t, []string{"3"}, collector.Strings(res.Solutions))
}

// ============================================================
// Rules
// ============================================================

func TestLoadRules_YAML(t *testing.T) {
	rules, err := collector.LoadRules(strings.NewReader(`
- operation: sqrt
  match: "x^2 = _a"
  message: two roots
`))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, operation.Sqrt, rules[0].Operation)
	assert.Equal(t, "two roots", rules[0].Message)
}

func TestLoadRules_JSON(t *testing.T) {
	rules, err := collector.LoadRules(strings.NewReader(`[{"operation": "divide", "match": "_a*x = _b", "message": "isolate"}]`))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, operation.Divide, rules[0].Operation)
}

func TestLoadRules_Errors(t *testing.T) {
	_, err := collector.LoadRules(strings.NewReader(`- operation: levitate
  match: "x = 1"
`))
	assert.ErrorIs(t, err, operation.ErrUnknownOperation)

	_, err = collector.LoadRules(strings.NewReader(`- operation: sqrt
  match: "x^^2 = 1"
`))
	assert.ErrorIs(t, err, expr.ErrSyntax)

	rules, err := collector.LoadRules(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestDefaultRules(t *testing.T) {
	rules := collector.DefaultRules()
	require.NotEmpty(t, rules)

	tree := solved(t, strategy.Polynomial, "x^2 = 4")
	res := collector.Collect(tree, tree.Root(), rules)
	assert.Contains(t, res.Hints, "The square root has two solutions: do not forget the negative one.")
}

// ============================================================
// Expected solutions
// ============================================================

func TestParseExpected(t *testing.T) {
	got, err := collector.ParseExpected("3, −1, 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"-1", "3"}, collector.Strings(got))

	got, err = collector.ParseExpected("  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = collector.ParseExpected("1, y")
	assert.ErrorIs(t, err, collector.ErrNotNumeric)

	_, err = collector.ParseExpected("1, (2")
	assert.ErrorIs(t, err, expr.ErrSyntax)
}

func TestEquivalent(t *testing.T) {
	exact := []expr.Expr{expr.SqrtOf(expr.N(2)), expr.Neg(expr.SqrtOf(expr.N(2)))}
	approx := []expr.Expr{expr.NFloat(-1.4142), expr.NFloat(1.4142)}
	assert.False(t, collector.Equivalent(exact, approx), "difference above tolerance")

	a, err := collector.ParseExpected("-1, 3")
	require.NoError(t, err)
	b, err := collector.ParseExpected("3, -1, 3")
	require.NoError(t, err)
	assert.True(t, collector.Equivalent(a, b))
	assert.False(t, collector.Equivalent(a, b[:1]))
	assert.True(t, collector.Equivalent(nil, nil))

	c, err := collector.ParseExpected("sqrt(2), -sqrt(2)")
	require.NoError(t, err)
	assert.True(t, collector.Equivalent(exact, c))
}
