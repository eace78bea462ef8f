package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/solvee/expr"
)

func strs(es []expr.Expr) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.String()
	}
	return out
}

func TestExpand_Distribution(t *testing.T) {
	assert.Equal(t, "x^2 - 5*x + 6", expr.Expand(expr.MustParse("(x-2)(x-3)")).String())
	assert.Equal(t, "x^2 + 2*x + 1", expr.Expand(expr.MustParse("(x+1)^2")).String())
}

func TestExpand_DividesTermwise(t *testing.T) {
	got := expr.Expand(expr.Divide(expr.MustParse("x^3 - 4x"), expr.S("x")))
	assert.Equal(t, "x^2 - 4", got.String())
}

func TestDegree(t *testing.T) {
	assert.Equal(t, 1, expr.Degree(expr.MustParse("2x + 1"), "x"))
	assert.Equal(t, 3, expr.Degree(expr.MustParse("x^3 + x"), "x"))
	assert.Equal(t, 0, expr.Degree(expr.N(5), "x"))
}

func TestMaxPower(t *testing.T) {
	assert.Equal(t, 4.0, expr.MaxPower(expr.MustParse("x^4 - 5x^2")))
	assert.Equal(t, 0.0, expr.MaxPower(expr.MustParse("2x + 1")))
}

func TestPolyCoeffs(t *testing.T) {
	coeffs, ok := expr.PolyCoeffs(expr.MustParse("2x^2 - 4x - 6"), "x")
	require.True(t, ok)
	assert.Equal(t, "2", coeffs[2].String())
	assert.Equal(t, "-4", coeffs[1].String())
	assert.Equal(t, "-6", coeffs[0].String())

	_, ok = expr.PolyCoeffs(expr.MustParse("sin(x) + 1"), "x")
	assert.False(t, ok)
	_, ok = expr.PolyCoeffs(expr.MustParse("1/x"), "x")
	assert.False(t, ok)
}

func TestSolve_Exact(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"2x - 6", []string{"3"}},
		{"3x + 1", []string{"-1/3"}},
		{"2x^2 - 4x - 6", []string{"-1", "3"}},
		{"x^2 - 2x + 1", []string{"1"}},
		{"x^2 - 2", []string{"-sqrt(2)", "sqrt(2)"}},
		{"x^2 + 1", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, strs(expr.Solve(expr.MustParse(tt.in), "x")))
		})
	}
}

func TestSolve_Newton(t *testing.T) {
	roots := expr.Solve(expr.MustParse("x^3 - 8"), "x")
	require.Len(t, roots, 1)
	assert.Equal(t, "2", roots[0].String())
}

func TestHasRealRoot(t *testing.T) {
	assert.True(t, expr.HasRealRoot(expr.MustParse("x - 2"), "x"))
	assert.False(t, expr.HasRealRoot(expr.MustParse("x^2 + 1"), "x"))
	assert.False(t, expr.HasRealRoot(expr.MustParse("sin(x) + 2"), "x"))
	assert.False(t, expr.HasRealRoot(expr.N(3), "x"))
	assert.True(t, expr.HasRealRoot(expr.N(0), "x"))
}

func TestHasRealRoot_SmallValuesAreNotRoots(t *testing.T) {
	assert.False(t, expr.HasRealRoot(expr.MustParse("exp(x)"), "x"))
	assert.False(t, expr.HasRealRoot(expr.MustParse("x^4 + 1"), "x"))
	assert.False(t, expr.HasRealRoot(expr.MustParse("exp(-x^2) + 1"), "x"))
	assert.True(t, expr.HasRealRoot(expr.MustParse("x*exp(x)"), "x"))
	assert.True(t, expr.HasRealRoot(expr.MustParse("(x - 3)^4"), "x"))
	assert.True(t, expr.HasRealRoot(expr.MustParse("exp(x) - 2"), "x"))
}
