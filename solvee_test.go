package solvee_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/solvee"
	"github.com/njchilds90/solvee/collector"
	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/operation"
	"github.com/njchilds90/solvee/strategy"
)

func newSession(t *testing.T, text string, opts ...solvee.Option) *solvee.Session {
	t.Helper()
	s, err := solvee.New(opts...)
	require.NoError(t, err)
	require.NoError(t, s.SetEquationText(text))
	return s
}

func solutions(s *solvee.Session) []string {
	return collector.Strings(s.Solutions())
}

// ============================================================
// Expansion
// ============================================================

func TestSession_ExpandQuadratic(t *testing.T) {
	s := newSession(t, "2x^2 - 4x - 6 = 0", solvee.WithExpected("−1, 3"))
	require.NoError(t, s.Expand(context.Background(), "polynomial"))
	assert.Equal(t, []string{"-1", "3"}, solutions(s))
	assert.True(t, s.Valid())
}

func TestSession_ExpandBiquadratic(t *testing.T) {
	s := newSession(t, "x^4 - 5x^2 + 4 = 0", solvee.WithExpected("-2, -1, 1, 2"))
	require.NoError(t, s.Expand(context.Background(), "polynomial"))
	assert.Equal(t, []string{"-2", "-1", "1", "2"}, solutions(s))
	assert.True(t, s.Valid())

	require.NoError(t, s.SetExpected("1, 2"))
	assert.False(t, s.Valid())
}

func TestSession_ExpandIsRepeatable(t *testing.T) {
	s := newSession(t, "x^4 - 5x^2 + 4 = 0")
	require.NoError(t, s.Expand(context.Background(), "polynomial"))
	first, size := s.Render(), s.Tree().Len()

	require.NoError(t, s.Expand(context.Background(), "polynomial"))
	assert.Equal(t, first, s.Render())
	assert.Equal(t, size, s.Tree().Len())
}

func TestSession_ExpandRestartsFromRoot(t *testing.T) {
	s := newSession(t, "2x + 4 = 10")
	_, err := s.Apply("multiply", "3")
	require.NoError(t, err)
	require.NoError(t, s.Expand(context.Background(), "polynomial"))

	root, _ := s.Tree().Node(s.Root())
	assert.Equal(t, operation.Subtract, root.Operation)
	assert.Equal(t, []string{"3"}, solutions(s))
}

func TestSession_ExpandTrigonometric(t *testing.T) {
	s := newSession(t, "sin(2x) = 1/2")
	require.NoError(t, s.Expand(context.Background(), "trigonometrical"))
	assert.Contains(t, s.Hints(), "p = pi")
	assert.Empty(t, s.Solutions())
	assert.False(t, s.Valid(), "no expectation set")
}

func TestSession_ExpandErrors(t *testing.T) {
	s, err := solvee.New()
	require.NoError(t, err)
	assert.ErrorIs(t, s.Expand(context.Background(), "polynomial"), solvee.ErrNoEquation)

	require.NoError(t, s.SetEquationText("x = 1"))
	assert.ErrorIs(t, s.Expand(context.Background(), "cubic"), strategy.ErrUnknownStrategy)
}

// ============================================================
// Pacing
// ============================================================

func TestSession_PacedMatchesUnpaced(t *testing.T) {
	plain := newSession(t, "2x + 4 = 10")
	require.NoError(t, plain.Expand(context.Background(), "polynomial"))

	paced := newSession(t, "2x + 4 = 10", solvee.WithPace(time.Millisecond))
	require.NoError(t, paced.Expand(context.Background(), "polynomial"))

	assert.Equal(t, plain.Render(), paced.Render())
}

func TestSession_PacedExpansionHonorsCancellation(t *testing.T) {
	s := newSession(t, "2x^2 - 4x - 6 = 0", solvee.WithPace(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Expand(ctx, "polynomial")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, s.Tree().Len())

	_, err = s.Apply("null_form", "")
	assert.NoError(t, err, "session usable after cancellation")
}

func TestSession_BusyDuringExpansion(t *testing.T) {
	s := newSession(t, "2x + 4 = 10", solvee.WithPace(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Expand(ctx, "polynomial") }()

	require.Eventually(t, func() bool { return s.Snapshot().Expanding }, time.Second, time.Millisecond)
	_, err := s.Apply("subtract", "4")
	assert.ErrorIs(t, err, solvee.ErrBusy)
	assert.ErrorIs(t, s.Select(s.Root()), solvee.ErrBusy)
	assert.ErrorIs(t, s.SetEquationText("x = 2"), solvee.ErrBusy)
	assert.ErrorIs(t, s.Expand(context.Background(), "polynomial"), solvee.ErrBusy)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, s.Snapshot().Expanding)
}

// ============================================================
// Manual steps
// ============================================================

func TestSession_ApplyMovesSelection(t *testing.T) {
	s := newSession(t, "2x + 4 = 10")
	ids, err := s.Apply("subtract", "4")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, ids[0], s.Selected())

	_, err = s.Apply("divide", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, solutions(s))
}

func TestSession_ApplyErrors(t *testing.T) {
	s, err := solvee.New(solvee.WithOperations("trigonometrical"))
	require.NoError(t, err)

	_, err = s.Apply("arcsin", "")
	assert.ErrorIs(t, err, solvee.ErrNoEquation)

	require.NoError(t, s.SetEquationText("x^2 = 4"))
	_, err = s.Apply("sqrt", "")
	assert.ErrorIs(t, err, solvee.ErrOperationDisabled)

	_, err = s.Apply("levitate", "")
	assert.ErrorIs(t, err, operation.ErrUnknownOperation)

	_, err = s.Apply("divide", "")
	assert.ErrorIs(t, err, operation.ErrArgumentRequired)

	_, err = s.Apply("divide", "2 +")
	assert.Error(t, err)
	assert.Equal(t, 1, s.Tree().Len(), "nothing recorded on failure")

	require.NoError(t, s.Configure())
	_, err = s.Apply("sqrt", "")
	assert.NoError(t, err)
}

func TestSession_ErrorLeafCannotBeDerived(t *testing.T) {
	s := newSession(t, "2x = 6")
	ids, err := s.Apply("divide", "0")
	require.NoError(t, err)
	n, _ := s.Tree().Node(ids[0])
	assert.True(t, n.IsError())

	_, err = s.Apply("divide", "2")
	assert.ErrorIs(t, err, operation.ErrErrorLeaf)
}

func TestSession_SelectDiscardsSubtree(t *testing.T) {
	s := newSession(t, "(x - 2)(x - 3) = 0")
	require.NoError(t, s.Expand(context.Background(), "polynomial"))
	require.Equal(t, []string{"2", "3"}, solutions(s))

	root, _ := s.Tree().Node(s.Root())
	first := root.Derived[0]
	require.NoError(t, s.Select(first))
	assert.Equal(t, first, s.Selected())
	assert.Equal(t, []string{"3"}, solutions(s), "sibling untouched")

	n, _ := s.Tree().Node(first)
	assert.Nil(t, n.Derived)
	assert.Nil(t, n.Operation)

	require.NoError(t, s.Select(s.Root()))
	assert.Empty(t, s.Solutions())

	assert.ErrorIs(t, s.Select(equation.ID(99)), equation.ErrUnknownNode)
}

func TestSession_VariableChoice(t *testing.T) {
	s := newSession(t, "2y = 4")
	root, _ := s.Tree().Node(s.Root())
	assert.Equal(t, "y", root.Variable)
	require.NoError(t, s.Expand(context.Background(), "polynomial"))
	assert.Equal(t, []string{"2"}, solutions(s))

	s = newSession(t, "a x = b")
	root, _ = s.Tree().Node(s.Root())
	assert.Equal(t, "x", root.Variable)
}

func TestSession_OptionErrors(t *testing.T) {
	_, err := solvee.New(solvee.WithOperations("polynomial", "levitate"))
	assert.ErrorIs(t, err, operation.ErrUnknownOperation)

	_, err = solvee.New(solvee.WithExpected("1, y"))
	assert.ErrorIs(t, err, collector.ErrNotNumeric)

	_, err = solvee.New(solvee.WithPace(-time.Second))
	assert.Error(t, err)
}

func TestSession_Operations(t *testing.T) {
	s, err := solvee.New(solvee.WithOperations("polynomial", "root"))
	require.NoError(t, err)
	ops := s.Operations()
	assert.Len(t, ops, 12)
	assert.Contains(t, ops, operation.Root)
	assert.NotContains(t, ops, operation.Arcsin)
}

func TestSession_LogsAppliedOperations(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s := newSession(t, "2x + 4 = 10", solvee.WithLogger(logger))

	_, err := s.Apply("subtract", "4")
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "operation applied", entry.Message)
	assert.Equal(t, "subtract", entry.Data["operation"])
	assert.Equal(t, "4", entry.Data["argument"])
	assert.Equal(t, 1, entry.Data["branches"])
}

// ============================================================
// Views
// ============================================================

func TestSession_Render(t *testing.T) {
	s := newSession(t, "2x + 4 = 10")
	require.NoError(t, s.Expand(context.Background(), "polynomial"))
	want := "2*x + 4 = 10   | − 10\n" +
		"  2*x - 6 = 0   | + 6\n" +
		"    2*x = 6   | : 2\n" +
		"      * x = 3\n"
	assert.Equal(t, want, s.Render())
}

func TestSession_RenderMarksDeadEnds(t *testing.T) {
	s := newSession(t, "x^2 = -4")
	_, err := s.Apply("sqrt", "")
	require.NoError(t, err)
	assert.Contains(t, s.Render(), "✗ The square root of a negative number is not defined over the reals!")
}

func TestSession_Snapshot(t *testing.T) {
	s := newSession(t, "2x + 4 = 10")
	v := s.Snapshot()
	assert.Nil(t, v.Valid)
	assert.Len(t, v.Nodes, 1)

	require.NoError(t, s.SetExpected("3"))
	require.NoError(t, s.Expand(context.Background(), "polynomial"))
	v = s.Snapshot()
	require.NotNil(t, v.Valid)
	assert.True(t, *v.Valid)
	assert.Equal(t, "x", v.Variable)
	assert.Equal(t, []string{"3"}, v.Solutions)
	require.Len(t, v.Nodes, 4)
	assert.Equal(t, "subtract", v.Nodes[0].Operation)
	assert.Equal(t, "| − 10", v.Nodes[0].Step)
	assert.True(t, v.Nodes[3].IsSolution)
	assert.Equal(t, `x = 3`, v.Nodes[3].LaTeX)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"solutions":["3"]`)
}

func TestSession_SnapshotWithoutEquation(t *testing.T) {
	s, err := solvee.New()
	require.NoError(t, err)
	v := s.Snapshot()
	assert.Equal(t, equation.NoID, v.Root)
	assert.Empty(t, v.Nodes)
	assert.Equal(t, "", s.Render())
}
