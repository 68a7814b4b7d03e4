package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"depscope/internal/config"
	"depscope/internal/scanner"
	"depscope/internal/snapshot"
	"depscope/internal/storage"
)

// RescanTool handles the depscope_rescan MCP tool.
type RescanTool struct {
	holder *snapshot.Holder
	store  storage.Store
	cfg    *config.Config
}

// NewRescanTool creates the tool with its dependencies injected.
func NewRescanTool(holder *snapshot.Holder, store storage.Store, cfg *config.Config) *RescanTool {
	return &RescanTool{holder: holder, store: store, cfg: cfg}
}

// Definition returns the MCP tool definition for depscope_rescan.
func (t *RescanTool) Definition() mcp.Tool {
	return mcp.NewTool("depscope_rescan",
		mcp.WithDescription(
			"Rescan the project, persist the new snapshot and make it the one "+
				"all other tools query. In-flight queries keep reading the "+
				"snapshot they started on.",
		),
		mcp.WithString("trigger",
			mcp.Description("Free-form note on why the rescan ran, recorded with the snapshot"),
		),
	)
}

type rescanResult struct {
	SnapshotID string   `json:"snapshot_id"`
	Elements   int      `json:"elements"`
	Edges      int      `json:"edges"`
	Files      int      `json:"files"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Handle processes the depscope_rescan tool call.
func (t *RescanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sc, err := scanner.New(t.cfg.Project.Root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("creating scanner: %v", err)), nil
	}
	payload, err := sc.Scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	snap, err := snapshot.New(payload, snapshot.Provenance{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Trigger:     req.GetString("trigger", "rescan"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan produced a malformed snapshot: %v", err)), nil
	}

	if err := t.store.SaveSnapshot(ctx, snap); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("persisting snapshot: %v", err)), nil
	}
	t.holder.Swap(snap)

	return jsonResult(rescanResult{
		SnapshotID: snap.Provenance.ID,
		Elements:   snap.Elements.Len(),
		Edges:      len(snap.Graph.Edges()),
		Files:      len(snap.Signatures),
		Warnings:   snap.Warnings,
	}), nil
}
