package gosolve

import (
	"context"
	"encoding/json"
	"fmt"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result   interface{} `json:"result,omitempty"`
	LaTeX    string      `json:"latex,omitempty"`
	String   string      `json:"string,omitempty"`
	Steps    []Step      `json:"steps,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// HandleToolCall runs req against a default Solver.
func HandleToolCall(req ToolRequest) ToolResponse {
	return New().HandleToolCall(context.Background(), req)
}

func (s *Solver) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		str, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return str, nil
	}
	getBindings := func() (map[string]float64, error) {
		v, ok := req.Params["bindings"]
		if !ok || v == nil {
			return nil, nil
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param bindings must be an object")
		}
		out := make(map[string]float64, len(raw))
		for name, val := range raw {
			switch n := val.(type) {
			case float64:
				out[name] = n
			case json.Number:
				f, err := n.Float64()
				if err != nil {
					return nil, fmt.Errorf("binding %s: %w", name, err)
				}
				out[name] = f
			default:
				return nil, fmt.Errorf("binding %s must be a number", name)
			}
		}
		return out, nil
	}
	respond := func(res *Result) ToolResponse {
		resp := ToolResponse{Steps: res.Steps}
		for _, w := range res.Warnings {
			resp.Warnings = append(resp.Warnings, w.Error())
		}
		if res.Unknown != "" {
			resp.Result = map[string]interface{}{"unknown": res.Unknown, "value": res.Value, "bindings": res.Bindings}
			resp.String = res.Unknown + " = " + FormatNumber(res.Value)
			resp.LaTeX = res.Unknown + " = " + FormatNumber(res.Value)
			return resp
		}
		resp.Result = map[string]interface{}{"value": res.Value}
		resp.String = FormatNumber(res.Value)
		return resp
	}
	input := func() (string, map[string]float64, error) {
		eq, err := getString("equation")
		if err != nil {
			return "", nil, err
		}
		b, err := getBindings()
		return eq, b, err
	}

	switch req.Tool {
	case "solve", "evaluate":
		eq, b, err := input()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		run := s.Solve
		if req.Tool == "evaluate" {
			run = s.Evaluate
		}
		res, err := run(ctx, eq, b)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(res)

	case "check":
		eq, b, err := input()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res, err := s.Check(ctx, eq, b)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		resp := respond(res)
		resp.Result = map[string]interface{}{"holds": res.Holds, "residual": res.Residual}
		resp.String = fmt.Sprintf("%t", res.Holds)
		return resp

	case "normalize":
		eq, err := getString("equation")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		text := Normalize(eq)
		return ToolResponse{Result: text, String: text}

	case "parse":
		eq, err := getString("equation")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		parsed, err := Parse(eq)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		tree := map[string]interface{}{"lhs": parsed.LHS.toJSON()}
		if parsed.RHS != nil {
			tree["rhs"] = parsed.RHS.toJSON()
		}
		return ToolResponse{Result: tree, LaTeX: EquationLaTeX(parsed), String: parsed.String()}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	eqProps := map[string]string{"equation": "string", "bindings": "object"}
	tools := []map[string]interface{}{
		ts("solve", "Solve an equation with one unknown. bindings maps names to numbers", []string{"equation"}, eqProps),
		ts("evaluate", "Evaluate an expression without '='", []string{"equation"}, eqProps),
		ts("check", "Check that both sides of a fully bound equation agree", []string{"equation"}, eqProps),
		ts("normalize", "Return the canonical text of an equation", []string{"equation"}, map[string]string{"equation": "string"}),
		ts("parse", "Return the expression tree and LaTeX of an equation", []string{"equation"}, map[string]string{"equation": "string"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
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
