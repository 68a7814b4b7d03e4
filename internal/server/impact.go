package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"depscope/internal/config"
	"depscope/internal/depgraph"
	"depscope/internal/impact"
	"depscope/internal/snapshot"
)

// ImpactTool handles the depscope_impact MCP tool.
type ImpactTool struct {
	holder *snapshot.Holder
	cfg    *config.Config
}

// NewImpactTool creates the tool with its dependencies injected.
func NewImpactTool(holder *snapshot.Holder, cfg *config.Config) *ImpactTool {
	return &ImpactTool{holder: holder, cfg: cfg}
}

// Definition returns the MCP tool definition for depscope_impact.
func (t *ImpactTool) Definition() mcp.Tool {
	return mcp.NewTool("depscope_impact",
		mcp.WithDescription(
			"Assess the blast radius of changing one element: who depends on it "+
				"directly and transitively, how many elements are affected in total, "+
				"and a LOW/MEDIUM/HIGH/CRITICAL risk level.",
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Element id or unique name to assess"),
		),
		mcp.WithString("operation",
			mcp.Description("Kind of change being considered (default: modify)"),
			mcp.Enum("modify", "delete", "refactor"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Transitive traversal bound (default 3)"),
		),
	)
}

// Handle processes the depscope_impact tool call.
func (t *ImpactTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.holder.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	target := req.GetString("target", "")
	if target == "" {
		return mcp.NewToolResultError("'target' is required"), nil
	}
	op := impact.Operation(req.GetString("operation", string(impact.OperationModify)))
	if !op.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown operation %q", op)), nil
	}
	maxDepth := intArg(req, "max_depth", t.cfg.Query.MaxDepth)

	ctx, cancel := context.WithTimeout(ctx, t.cfg.QueryTimeout())
	defer cancel()

	analyzer := impact.NewAnalyzer(depgraph.NewEngine(snap.Graph))
	res, err := analyzer.Analyze(ctx, target, op, maxDepth)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("impact analysis failed: %v", err)), nil
	}
	return jsonResult(res), nil
}
