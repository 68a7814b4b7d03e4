package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"depscope/internal/config"
	"depscope/internal/depgraph"
	"depscope/internal/snapshot"
)

// QueryTool handles the depscope_query MCP tool.
type QueryTool struct {
	holder *snapshot.Holder
	cfg    *config.Config
}

// NewQueryTool creates the tool with its dependencies injected.
func NewQueryTool(holder *snapshot.Holder, cfg *config.Config) *QueryTool {
	return &QueryTool{holder: holder, cfg: cfg}
}

// Definition returns the MCP tool definition for depscope_query.
func (t *QueryTool) Definition() mcp.Tool {
	return mcp.NewTool("depscope_query",
		mcp.WithDescription(
			"Walk dependency relationships from one code element. "+
				"Forward queries (calls, imports, depends-on) follow what the element uses; "+
				"reverse queries (calls-me, imports-me, depends-on-me) follow what uses it. "+
				"Results are breadth-first up to max_depth, each tagged with its distance.",
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Element id (file:name:line) or a name unique in the snapshot"),
		),
		mcp.WithString("query_type",
			mcp.Required(),
			mcp.Description("Relationship to walk"),
			mcp.Enum("calls", "imports", "depends-on", "calls-me", "imports-me", "depends-on-me"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Traversal depth bound (default 3, 0 returns an empty set)"),
		),
	)
}

// Handle processes the depscope_query tool call.
func (t *QueryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.holder.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	target := req.GetString("target", "")
	if target == "" {
		return mcp.NewToolResultError("'target' is required"), nil
	}
	qt, err := depgraph.ParseQueryType(req.GetString("query_type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxDepth := intArg(req, "max_depth", t.cfg.Query.MaxDepth)

	ctx, cancel := context.WithTimeout(ctx, t.cfg.QueryTimeout())
	defer cancel()

	res, err := depgraph.NewEngine(snap.Graph).Query(ctx, target, qt, maxDepth)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return jsonResult(res), nil
}
