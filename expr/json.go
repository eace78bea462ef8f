package expr

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// MarshalJSONExpr encodes e as its JSON tree.
func MarshalJSONExpr(e Expr) ([]byte, error) {
	return json.Marshal(e.toJSON())
}

// UnmarshalJSONExpr decodes a JSON tree produced by MarshalJSONExpr.
func UnmarshalJSONExpr(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("expr: %w", err)
	}
	return FromJSON(m)
}

// FromJSON rebuilds an expression from the tree returned by ToJSON.
func FromJSON(m map[string]interface{}) (Expr, error) {
	t, _ := m["type"].(string)
	switch t {
	case "num":
		s, _ := m["value"].(string)
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return nil, fmt.Errorf("expr: invalid number %q", s)
		}
		return NRat(r), nil
	case "sym":
		name, _ := m["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("expr: symbol without name")
		}
		return S(name), nil
	case "const":
		switch m["name"] {
		case "pi":
			return Pi, nil
		case "e":
			return E, nil
		}
		return nil, fmt.Errorf("expr: unknown constant %v", m["name"])
	case "add", "mul":
		key := "terms"
		if t == "mul" {
			key = "factors"
		}
		ops, err := fromJSONList(m[key])
		if err != nil {
			return nil, err
		}
		if t == "add" {
			return AddOf(ops...), nil
		}
		return MulOf(ops...), nil
	case "pow":
		base, err := fromJSONValue(m["base"])
		if err != nil {
			return nil, err
		}
		exp, err := fromJSONValue(m["exp"])
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	case "func":
		name, _ := m["name"].(string)
		if _, ok := funcHeads[name]; !ok {
			return nil, fmt.Errorf("expr: unknown function %q", name)
		}
		arg, err := fromJSONValue(m["arg"])
		if err != nil {
			return nil, err
		}
		return (&Func{name: name, arg: arg}).Simplify(), nil
	}
	return nil, fmt.Errorf("expr: unknown node type %q", t)
}

func fromJSONValue(v interface{}) (Expr, error) {
	switch m := v.(type) {
	case map[string]interface{}:
		return FromJSON(m)
	}
	return nil, fmt.Errorf("expr: expected object, got %T", v)
}

func fromJSONList(v interface{}) ([]Expr, error) {
	var items []interface{}
	switch l := v.(type) {
	case []interface{}:
		items = l
	case []map[string]interface{}:
		for _, m := range l {
			items = append(items, m)
		}
	default:
		return nil, fmt.Errorf("expr: expected list, got %T", v)
	}
	out := make([]Expr, len(items))
	for i, item := range items {
		e, err := fromJSONValue(item)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
