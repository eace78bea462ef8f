package expr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/solvee/expr"
)

func TestParse_Canonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2x^2 - 4x - 6", "2*x^2 - 4*x - 6"},
		{"x⁴ − 5x² + 4", "x^4 - 5*x^2 + 4"},
		{"sin(2x)", "sin(2*x)"},
		{"2 sin(x) - 1", "2*sin(x) - 1"},
		{"(x-2)(x-3)", "(x - 2)*(x - 3)"},
		{"3(x-1)(x+2)", "3*(x + 2)*(x - 1)"},
		{"2(x+1)", "2*x + 2"},
		{"4(x+1)/2", "2*x + 2"},
		{"0.5", "1/2"},
		{"-x^2", "-x^2"},
		{"2^-1", "1/2"},
		{"6 : 2", "3"},
		{"3·x", "3*x"},
		{"√9", "3"},
		{"arccos(1)", "0"},
		{"π", "pi"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := expr.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParse_MultiLetterWordsSplit(t *testing.T) {
	e, err := expr.Parse("xy")
	require.NoError(t, err)
	assert.Equal(t, "x*y", e.String())
}

func TestParse_Wildcards(t *testing.T) {
	e, err := expr.Parse("_a*x + _b")
	require.NoError(t, err)
	assert.True(t, expr.Has(e, "_a"))
	assert.True(t, expr.Has(e, "_b"))
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"2x +", "x $ 1", "(x + 1", "", "x = "} {
		t.Run(in, func(t *testing.T) {
			_, err := expr.Parse(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, expr.ErrSyntax))
			var se *expr.SyntaxError
			assert.True(t, errors.As(err, &se))
		})
	}
}

func TestParseEquation(t *testing.T) {
	l, r, err := expr.ParseEquation("2x = 6")
	require.NoError(t, err)
	assert.Equal(t, "2*x", l.String())
	assert.Equal(t, "6", r.String())

	l, r, err = expr.ParseEquation("x^2 - 4")
	require.NoError(t, err)
	assert.Equal(t, "x^2 - 4", l.String())
	assert.True(t, expr.IsZero(r))

	_, _, err = expr.ParseEquation("x = 1 = 2")
	assert.ErrorIs(t, err, expr.ErrSyntax)
}
