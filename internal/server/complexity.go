package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"depscope/internal/complexity"
	"depscope/internal/snapshot"
)

// ComplexityTool handles the depscope_complexity MCP tool.
type ComplexityTool struct {
	holder *snapshot.Holder
}

// NewComplexityTool creates the tool with its dependencies injected.
func NewComplexityTool(holder *snapshot.Holder) *ComplexityTool {
	return &ComplexityTool{holder: holder}
}

// Definition returns the MCP tool definition for depscope_complexity.
func (t *ComplexityTool) Definition() mcp.Tool {
	return mcp.NewTool("depscope_complexity",
		mcp.WithDescription(
			"Score one element (or every element) on a size-and-parameter "+
				"complexity metric with low/medium/high buckets. Scores built "+
				"from incomplete signals are flagged partial.",
		),
		mcp.WithString("target",
			mcp.Description("Element id or unique name; omit to score every element"),
		),
	)
}

// Handle processes the depscope_complexity tool call.
func (t *ComplexityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.holder.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scorer := complexity.NewScorer(snap.Elements)

	if target := req.GetString("target", ""); target != "" {
		res, err := scorer.Score(target)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
		}
		return jsonResult(res), nil
	}
	return jsonResult(scorer.ScoreAll()), nil
}
