package solvee

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/njchilds90/solvee/expr"
	"github.com/njchilds90/solvee/operation"
	"github.com/njchilds90/solvee/strategy"
)

// ============================================================
// Tool interface
// ============================================================

// ToolRequest is a stateless call for agent frameworks: every call builds
// its own session.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// OperationInfo describes one catalog entry.
type OperationInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Help     string `json:"help"`
	Argument bool   `json:"argument"`
}

// DescribeOperations lists kinds for display.
func DescribeOperations(kinds []operation.Kind) []OperationInfo {
	out := make([]OperationInfo, len(kinds))
	for i, k := range kinds {
		out[i] = OperationInfo{Name: k.String(), Title: k.Title(), Help: k.Help(), Argument: k.ArgumentRequired()}
	}
	return out
}

// ParseStep splits "divide:2" into the operation name and its argument.
func ParseStep(step string) (name, arg string) {
	name, arg, _ = strings.Cut(step, ":")
	return strings.TrimSpace(name), strings.TrimSpace(arg)
}

func HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getString := func(key string, required bool) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			if required {
				return "", fmt.Errorf("missing param: %s", key)
			}
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getStrings := func(key string) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, nil
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		out := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			out[i] = s
		}
		return out, nil
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	session := func() (*Session, error) {
		text, err := getString("equation", true)
		if err != nil {
			return nil, err
		}
		ops, err := getStrings("operations")
		if err != nil {
			return nil, err
		}
		opts := []Option{WithOperations(ops...)}
		if expected, err := getString("expected", false); err != nil {
			return nil, err
		} else if expected != "" {
			opts = append(opts, WithExpected(expected))
		}
		s, err := New(opts...)
		if err != nil {
			return nil, err
		}
		return s, s.SetEquationText(text)
	}
	respond := func(s *Session) ToolResponse {
		v := s.Snapshot()
		return ToolResponse{Result: v, String: strings.Join(v.Solutions, ", ")}
	}

	switch req.Tool {
	case "solve":
		name, err := getString("strategy", false)
		if err != nil {
			return fail(err)
		}
		if name == "" {
			name = strategy.Polynomial.Name
		}
		s, err := session()
		if err != nil {
			return fail(err)
		}
		if err := s.Expand(ctx, name); err != nil {
			return fail(err)
		}
		return respond(s)

	case "apply":
		steps, err := getStrings("steps")
		if err != nil {
			return fail(err)
		}
		s, err := session()
		if err != nil {
			return fail(err)
		}
		for _, step := range steps {
			name, arg := ParseStep(step)
			if _, err := s.Apply(name, arg); err != nil {
				return fail(fmt.Errorf("step %q: %w", step, err))
			}
		}
		return respond(s)

	case "parse":
		text, err := getString("expr", true)
		if err != nil {
			return fail(err)
		}
		e, err := expr.Parse(text)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: expr.ToJSON(e), LaTeX: e.LaTeX(), String: e.String()}

	case "operations":
		preset, err := getString("preset", false)
		if err != nil {
			return fail(err)
		}
		kinds := operation.All()
		if preset != "" {
			if kinds, err = operation.Preset(preset); err != nil {
				return fail(err)
			}
		}
		return ToolResponse{Result: DescribeOperations(kinds)}

	case "strategies":
		return ToolResponse{Result: strategy.Names(), String: strings.Join(strategy.Names(), ", ")}

	case "tool_spec":
		return ToolResponse{String: ToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the tool schema for agent registration.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("solve", "Solve an equation with a strategy and return the derivation tree", []string{"equation"},
			map[string]string{"equation": "string", "strategy": "string", "operations": "array", "expected": "string"}),
		ts("apply", "Apply operations step by step. steps are \"name\" or \"name:argument\"", []string{"equation", "steps"},
			map[string]string{"equation": "string", "steps": "array", "operations": "array", "expected": "string"}),
		ts("parse", "Parse an expression into its canonical form", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("operations", "List the operation catalog, optionally of one preset", []string{}, map[string]string{"preset": "string"}),
		ts("strategies", "List the strategies", []string{}, map[string]string{}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	b, _ := json.MarshalIndent(map[string]interface{}{"tools": tools}, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
