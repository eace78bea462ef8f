package solvee_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/solvee"
)

// ============================================================
// Tool interface
// ============================================================

func call(tool string, params map[string]interface{}) solvee.ToolResponse {
	return solvee.HandleToolCall(context.Background(), solvee.ToolRequest{Tool: tool, Params: params})
}

func TestHandleToolCall_Solve(t *testing.T) {
	resp := call("solve", map[string]interface{}{
		"equation": "2x^2 - 4x - 6 = 0",
		"expected": "-1, 3",
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "-1, 3", resp.String)
	v, ok := resp.Result.(solvee.View)
	require.True(t, ok)
	require.NotNil(t, v.Valid)
	assert.True(t, *v.Valid)
}

func TestHandleToolCall_SolveTrigonometric(t *testing.T) {
	resp := call("solve", map[string]interface{}{"equation": "2sin(x) - 1 = 0", "strategy": "trigonometrical"})
	require.Empty(t, resp.Error)
	v := resp.Result.(solvee.View)
	assert.NotEmpty(t, v.Nodes)
}

func TestHandleToolCall_Apply(t *testing.T) {
	resp := call("apply", map[string]interface{}{
		"equation": "2x + 4 = 10",
		"steps":    []interface{}{"subtract:4", "divide: 2"},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "3", resp.String)
}

func TestHandleToolCall_ApplyDisabled(t *testing.T) {
	resp := call("apply", map[string]interface{}{
		"equation":   "x^2 = 4",
		"operations": []interface{}{"trigonometrical"},
		"steps":      []interface{}{"sqrt"},
	})
	assert.Contains(t, resp.Error, "operation not enabled")
}

func TestHandleToolCall_Parse(t *testing.T) {
	resp := call("parse", map[string]interface{}{"expr": "(x-2)(x-3)"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "(x - 2)*(x - 3)", resp.String)
	assert.NotEmpty(t, resp.LaTeX)
}

func TestHandleToolCall_Operations(t *testing.T) {
	resp := call("operations", map[string]interface{}{"preset": "polynomial"})
	require.Empty(t, resp.Error)
	ops := resp.Result.([]solvee.OperationInfo)
	assert.Len(t, ops, 11)
	assert.Equal(t, "add", ops[0].Name)
	assert.True(t, ops[0].Argument)

	resp = call("operations", map[string]interface{}{"preset": "nope"})
	assert.NotEmpty(t, resp.Error)
}

func TestHandleToolCall_Errors(t *testing.T) {
	assert.Equal(t, "missing param: equation", call("solve", nil).Error)
	assert.Equal(t, "param steps must be array", call("apply", map[string]interface{}{"equation": "x = 1", "steps": "divide"}).Error)
	assert.Equal(t, "unknown tool: integrate", call("integrate", nil).Error)
	assert.NotEmpty(t, call("solve", map[string]interface{}{"equation": "x = ", "strategy": "polynomial"}).Error)
}

func TestToolSpec_IsValidJSON(t *testing.T) {
	var spec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(solvee.ToolSpec()), &spec))
	tools, ok := spec["tools"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tools, 6)
}

func TestParseStep(t *testing.T) {
	name, arg := solvee.ParseStep(" root : 3 ")
	assert.Equal(t, "root", name)
	assert.Equal(t, "3", arg)

	name, arg = solvee.ParseStep("sqrt")
	assert.Equal(t, "sqrt", name)
	assert.Empty(t, arg)
}
