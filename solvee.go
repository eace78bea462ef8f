// Package solvee solves equations step by step.
//
// A Session holds one equation and its derivation tree. Operations are
// applied by hand with Apply, or a whole strategy runs with Expand. Every
// step is recorded, so the tree shows how each solution was reached and
// where a transformation led nowhere.
//
//	s, _ := solvee.New(solvee.WithOperations("polynomial"))
//	_ = s.SetEquationText("2x^2 - 4x - 6 = 0")
//	_ = s.Expand(ctx, "polynomial")
//	s.Solutions() // [-1 3]
package solvee

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/njchilds90/solvee/collector"
	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/internal/logging"
	"github.com/njchilds90/solvee/operation"
	"github.com/njchilds90/solvee/strategy"
)

// DefaultVariable is used by SetEquationText when the equation mentions x
// or several other symbols.
const DefaultVariable = "x"

// Session is safe for concurrent use. While Expand runs, mutating calls
// fail with ErrBusy; reads see the tree as built so far.
type Session struct {
	mu sync.Mutex

	log     logrus.FieldLogger
	pace    time.Duration
	enabled map[operation.Kind]bool
	rules   []collector.Rule

	expected    []expr.Expr
	hasExpected bool

	tree      *equation.Tree
	selected  equation.ID
	expanding bool
}

// Option configures a Session.
type Option func(*Session) error

// WithOperations restricts manual steps to the named operations and
// presets.
func WithOperations(names ...string) Option {
	return func(s *Session) error { return s.configure(names) }
}

// WithPace waits d before every operation Expand applies.
func WithPace(d time.Duration) Option {
	return func(s *Session) error {
		if d < 0 {
			return fmt.Errorf("solvee: negative pace %s", d)
		}
		s.pace = d
		return nil
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) error {
		if l != nil {
			s.log = l
		}
		return nil
	}
}

// WithRules sets the hint rules.
func WithRules(rules []collector.Rule) Option {
	return func(s *Session) error {
		s.rules = append([]collector.Rule(nil), rules...)
		return nil
	}
}

// WithExpected sets the expected solutions, such as "-1, 3".
func WithExpected(text string) Option {
	return func(s *Session) error { return s.setExpected(text) }
}

// New creates a session with every operation enabled, no pace, the
// built-in hint rules and no equation.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		log:      logging.Discard(),
		rules:    collector.DefaultRules(),
		selected: equation.NoID,
	}
	if err := s.configure(nil); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) configure(names []string) error {
	kinds := operation.All()
	if len(names) > 0 {
		var err error
		if kinds, err = operation.Resolve(names...); err != nil {
			return err
		}
	}
	s.enabled = make(map[operation.Kind]bool, len(kinds))
	for _, k := range kinds {
		s.enabled[k] = true
	}
	return nil
}

// Configure replaces the set of operations allowed in Apply. No names
// enables the whole catalog.
func (s *Session) Configure(names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanding {
		return ErrBusy
	}
	return s.configure(names)
}

// Operations lists the enabled operations in catalog order.
func (s *Session) Operations() []operation.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []operation.Kind
	for _, k := range operation.All() {
		if s.enabled[k] {
			out = append(out, k)
		}
	}
	return out
}

// SetEquation starts a new derivation of left = right in variable.
func (s *Session) SetEquation(variable string, left, right expr.Expr) error {
	if variable == "" || left == nil || right == nil {
		return fmt.Errorf("%w: incomplete equation", ErrNoEquation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanding {
		return ErrBusy
	}
	s.tree = equation.NewTree(variable, left, right)
	s.selected = s.tree.Root()
	s.log.WithFields(logrus.Fields{"variable": variable, "equation": left.String() + " = " + right.String()}).Debug("equation set")
	return nil
}

// SetEquationText parses text such as "2x^2 - 4x - 6 = 0" and starts a new
// derivation. The variable is x when it occurs, otherwise the first free
// symbol in alphabetical order.
func (s *Session) SetEquationText(text string) error {
	left, right, err := expr.ParseEquation(text)
	if err != nil {
		return err
	}
	return s.SetEquation(pickVariable(left, right), left, right)
}

func pickVariable(left, right expr.Expr) string {
	free := expr.FreeSymbols(expr.AddOf(left, right))
	if _, ok := free[DefaultVariable]; ok || len(free) == 0 {
		return DefaultVariable
	}
	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

// Apply runs the named operation on the selected equation. arg is parsed
// as an expression unless empty. The selection moves to the first new
// equation.
func (s *Session) Apply(name, arg string) ([]equation.ID, error) {
	kind, err := operation.Parse(name)
	if err != nil {
		return nil, err
	}
	var a expr.Expr
	if arg != "" {
		if a, err = expr.Parse(arg); err != nil {
			return nil, err
		}
	}
	return s.ApplyKind(kind, a)
}

// ApplyKind is Apply with a parsed kind and argument.
func (s *Session) ApplyKind(kind operation.Kind, arg expr.Expr) ([]equation.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanding {
		return nil, ErrBusy
	}
	if s.tree == nil {
		return nil, ErrNoEquation
	}
	if kind.Valid() && !s.enabled[kind] {
		return nil, fmt.Errorf("%w: %s", ErrOperationDisabled, kind)
	}
	return s.applyLocked(s.selected, kind, arg)
}

func (s *Session) applyLocked(id equation.ID, kind operation.Kind, arg expr.Expr) ([]equation.ID, error) {
	ids, err := operation.Apply(s.tree, id, kind, arg)
	if err != nil {
		return nil, err
	}
	fields := logrus.Fields{"operation": kind.String(), "node": id, "branches": len(ids)}
	if arg != nil {
		fields["argument"] = arg.String()
	}
	s.log.WithFields(fields).Debug("operation applied")
	s.selected = ids[0]
	return ids, nil
}

// Select discards everything derived from id and makes it the selected
// equation.
func (s *Session) Select(id equation.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanding {
		return ErrBusy
	}
	if s.tree == nil {
		return ErrNoEquation
	}
	if err := s.tree.Reset(id); err != nil {
		return err
	}
	s.selected = id
	return nil
}

// Expand restarts from the root equation and runs the named strategy to
// completion. It returns ctx.Err() when cancelled; the steps taken so far
// remain in the tree.
func (s *Session) Expand(ctx context.Context, name string) error {
	st, err := strategy.Lookup(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.expanding {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.tree == nil {
		s.mu.Unlock()
		return ErrNoEquation
	}
	root, _ := s.tree.Node(s.tree.Root())
	tree := equation.NewTree(root.Variable, root.Left, root.Right)
	s.tree, s.selected, s.expanding = tree, tree.Root(), true
	log := s.log.WithField("strategy", st.Name)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.expanding = false
		s.mu.Unlock()
	}()

	start := time.Now()
	err = st.Run(ctx, tree, tree.Root(), s.hook, strategy.WithLogger(log), strategy.WithHintFunc(s.hint))
	log.WithFields(logrus.Fields{"nodes": tree.Len(), "elapsed": time.Since(start)}).Debug("expansion finished")
	return err
}

func (s *Session) hook(ctx context.Context, id equation.ID, kind operation.Kind, arg expr.Expr) ([]equation.ID, error) {
	if err := wait(ctx, s.pace); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(id, kind, arg)
}

func (s *Session) hint(id equation.ID, hint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.SetHint(id, hint)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Solutions returns the collected solutions, sorted and deduplicated.
func (s *Session) Solutions() []expr.Expr {
	return s.collect().Solutions
}

// Hints returns the node hints and matching rule messages.
func (s *Session) Hints() []string {
	return s.collect().Hints
}

func (s *Session) collect() collector.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectLocked()
}

func (s *Session) collectLocked() collector.Result {
	if s.tree == nil {
		return collector.Result{}
	}
	return collector.Collect(s.tree, s.tree.Root(), s.rules)
}

// SetExpected sets the expected solutions Valid compares against.
func (s *Session) SetExpected(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setExpected(text)
}

func (s *Session) setExpected(text string) error {
	values, err := collector.ParseExpected(text)
	if err != nil {
		return err
	}
	s.expected, s.hasExpected = values, true
	return nil
}

// Valid reports whether the collected solutions equal the expected ones.
// It is false while no expectation is set.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked(s.collectLocked())
}

func (s *Session) validLocked(res collector.Result) bool {
	return s.hasExpected && collector.Equivalent(res.Solutions, s.expected)
}

// Tree returns the derivation tree. Callers must not mutate it.
func (s *Session) Tree() *equation.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Root returns the root ID, or equation.NoID without an equation.
func (s *Session) Root() equation.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return equation.NoID
	}
	return s.tree.Root()
}

// Selected returns the equation manual steps apply to.
func (s *Session) Selected() equation.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}
