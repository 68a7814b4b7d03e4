package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"depscope/internal/config"
	"depscope/internal/depgraph"
	"depscope/internal/snapshot"
)

// PathTool handles the depscope_path MCP tool.
type PathTool struct {
	holder *snapshot.Holder
	cfg    *config.Config
}

// NewPathTool creates the tool with its dependencies injected.
func NewPathTool(holder *snapshot.Holder, cfg *config.Config) *PathTool {
	return &PathTool{holder: holder, cfg: cfg}
}

// Definition returns the MCP tool definition for depscope_path.
func (t *PathTool) Definition() mcp.Tool {
	return mcp.NewTool("depscope_path",
		mcp.WithDescription(
			"Find how one element reaches another through the dependency graph. "+
				"By default returns the shortest path over all edge kinds; "+
				"with all_paths=true enumerates every simple path up to max_depth edges.",
		),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Starting element id or unique name"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Destination element id or unique name"),
		),
		mcp.WithBoolean("all_paths",
			mcp.Description("Enumerate every simple path instead of just the shortest (default: false)"),
		),
		mcp.WithNumber("max_depth",
			mcp.Description("Path length bound in edges, only used with all_paths (default 3)"),
		),
	)
}

type pathResult struct {
	From  string           `json:"from"`
	To    string           `json:"to"`
	Found bool             `json:"found"`
	Path  []depgraph.Item  `json:"path,omitempty"`
	Paths [][]depgraph.Item `json:"paths,omitempty"`
}

// Handle processes the depscope_path tool call.
func (t *PathTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.holder.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	from := req.GetString("from", "")
	to := req.GetString("to", "")
	if from == "" || to == "" {
		return mcp.NewToolResultError("'from' and 'to' are required"), nil
	}
	allPaths, _ := req.GetArguments()["all_paths"].(bool)

	ctx, cancel := context.WithTimeout(ctx, t.cfg.QueryTimeout())
	defer cancel()

	engine := depgraph.NewEngine(snap.Graph)
	res := pathResult{From: from, To: to}

	if allPaths {
		maxDepth := intArg(req, "max_depth", t.cfg.Query.MaxDepth)
		paths, err := engine.AllPaths(ctx, from, to, maxDepth)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("path search failed: %v", err)), nil
		}
		res.Found = len(paths) > 0
		res.Paths = paths
	} else {
		path, err := engine.ShortestPath(ctx, from, to)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("path search failed: %v", err)), nil
		}
		res.Found = path != nil
		res.Path = path
	}
	return jsonResult(res), nil
}
