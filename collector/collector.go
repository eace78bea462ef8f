// Package collector gathers the solutions and hints of a derivation tree.
package collector

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/solvee/equation"
	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/operation"
)

// Tolerance is the largest difference at which two solutions are the same.
const Tolerance = 1e-9

var ErrNotNumeric = errors.New("collector: expected value is not a number")

// Rule adds Message to the hints whenever Operation was applied to an
// equation matching Match, a pattern such as "_a*x^2 + _c = 0".
type Rule struct {
	Operation operation.Kind `yaml:"operation" json:"operation"`
	Match     string         `yaml:"match" json:"match"`
	Message   string         `yaml:"message" json:"message"`

	left, right expr.Expr
}

// NewRule compiles a rule.
func NewRule(kind operation.Kind, match, message string) (Rule, error) {
	r := Rule{Operation: kind, Match: match, Message: message}
	if err := r.compile(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func (r *Rule) compile() error {
	if !r.Operation.Valid() {
		return fmt.Errorf("%w: %d", operation.ErrUnknownOperation, int(r.Operation))
	}
	l, rt, err := expr.ParseEquation(r.Match)
	if err != nil {
		return fmt.Errorf("rule %s %q: %w", r.Operation, r.Match, err)
	}
	r.left, r.right = l, rt
	return nil
}

func (r Rule) applies(n equation.Node) bool {
	if r.left == nil || n.Operation == nil {
		return false
	}
	if k, ok := n.Operation.(operation.Kind); !ok || k != r.Operation {
		return false
	}
	_, ok := expr.MatchEquation(n.Left, n.Right, r.left, r.right)
	return ok
}

// LoadRules reads a YAML list of rules. JSON is valid input too.
func LoadRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	if err := yaml.NewDecoder(r).Decode(&rules); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	for i := range rules {
		if err := rules[i].compile(); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// Result is what Collect found.
type Result struct {
	Solutions []expr.Expr
	Hints     []string
}

// Collect walks the tree below root. A leaf x = value, with x the variable
// of root and value numeric, is a solution. Node hints and the messages of
// matching rules are hints, each reported once in walk order.
func Collect(tree *equation.Tree, root equation.ID, rules []Rule) Result {
	var res Result
	top, ok := tree.Node(root)
	if !ok {
		return res
	}
	seen := map[string]bool{}
	hint := func(h string) {
		if h != "" && !seen[h] {
			seen[h] = true
			res.Hints = append(res.Hints, h)
		}
	}
	tree.Walk(root, func(n equation.Node, _ int) {
		hint(n.Hint)
		for _, r := range rules {
			if r.applies(n) {
				hint(r.Message)
			}
		}
		if n.IsLeaf() && !n.IsError() && isSolution(n, top.Variable) {
			res.Solutions = append(res.Solutions, n.Right)
		}
	})
	res.Solutions = Normalize(res.Solutions)
	return res
}

func isSolution(n equation.Node, variable string) bool {
	sym, ok := n.Left.(*expr.Sym)
	return ok && sym.Name() == variable && expr.IsNumber(n.Right)
}

// Normalize sorts values numerically and drops duplicates. Non-numeric
// values sort last in their original order.
func Normalize(values []expr.Expr) []expr.Expr {
	type entry struct {
		e expr.Expr
		v float64
		n bool
	}
	entries := make([]entry, 0, len(values))
	for _, e := range values {
		v, ok := expr.Float(e)
		entries = append(entries, entry{e, v, ok && !math.IsNaN(v)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.n != b.n {
			return a.n
		}
		return a.n && a.v < b.v
	})
	out := make([]expr.Expr, 0, len(entries))
	for i, en := range entries {
		if i > 0 {
			prev := entries[i-1]
			if en.n && prev.n && math.Abs(en.v-prev.v) <= Tolerance {
				continue
			}
			if !en.n && !prev.n && en.e.Equal(prev.e) {
				continue
			}
		}
		out = append(out, en.e)
	}
	return out
}

// Equivalent reports whether two solution sets contain the same values.
func Equivalent(got, want []expr.Expr) bool {
	got, want = Normalize(got), Normalize(want)
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		a, okA := expr.Float(got[i])
		b, okB := expr.Float(want[i])
		if okA && okB {
			if math.Abs(a-b) > Tolerance {
				return false
			}
			continue
		}
		if !got[i].Equal(want[i]) {
			return false
		}
	}
	return true
}

// ParseExpected parses a comma separated list of numbers such as
// "−1, 3" or "sqrt(2), -sqrt(2)". An empty text is the empty set.
func ParseExpected(text string) ([]expr.Expr, error) {
	var out []expr.Expr
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		e, err := expr.Parse(part)
		if err != nil {
			return nil, err
		}
		if !expr.IsNumber(e) {
			return nil, fmt.Errorf("%w: %s", ErrNotNumeric, part)
		}
		out = append(out, e)
	}
	return Normalize(out), nil
}

// Strings renders values with String.
func Strings(values []expr.Expr) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

//go:embed rules.yaml
var defaultRules string

// DefaultRules returns the built-in hint rules.
func DefaultRules() []Rule {
	rules, err := LoadRules(strings.NewReader(defaultRules))
	if err != nil {
		panic(fmt.Sprintf("collector: built-in rules: %v", err))
	}
	return rules
}
