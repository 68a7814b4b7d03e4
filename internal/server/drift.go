package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"depscope/internal/config"
	"depscope/internal/drift"
	"depscope/internal/scanner"
	"depscope/internal/snapshot"
)

// DriftTool handles the depscope_drift MCP tool. It rescans the project in
// memory and classifies every element of the stored snapshot against the
// fresh state; nothing is persisted and the stored snapshot is not replaced.
type DriftTool struct {
	holder *snapshot.Holder
	cfg    *config.Config
}

// NewDriftTool creates the tool with its dependencies injected.
func NewDriftTool(holder *snapshot.Holder, cfg *config.Config) *DriftTool {
	return &DriftTool{holder: holder, cfg: cfg}
}

// Definition returns the MCP tool definition for depscope_drift.
func (t *DriftTool) Definition() mcp.Tool {
	return mcp.NewTool("depscope_drift",
		mcp.WithDescription(
			"Check whether stored element references are stale. Rescans the "+
				"project and classifies every known element as unchanged, moved, "+
				"renamed, missing or ambiguous, with a confidence per entry. "+
				"Moved and single-candidate renames carry an auto-fix suggestion.",
		),
	)
}

type driftResult struct {
	SnapshotID   string               `json:"snapshot_id"`
	GeneratedAt  time.Time            `json:"generated_at"`
	ChangedFiles []string             `json:"changed_files"`
	Counts       map[drift.Status]int `json:"counts"`
	Entries      []drift.Entry        `json:"entries"`
}

// Handle processes the depscope_drift tool call.
func (t *DriftTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := t.holder.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sc, err := scanner.New(t.cfg.Project.Root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("creating scanner: %v", err)), nil
	}
	payload, err := sc.Scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rescan failed: %v", err)), nil
	}
	fresh, err := snapshot.New(payload, snapshot.Provenance{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Trigger:     "drift-check",
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rescan produced a malformed snapshot: %v", err)), nil
	}

	detector := drift.NewDetector(t.cfg.DriftConfig())
	report := detector.Compare(snap.Elements, fresh.Elements)

	return jsonResult(driftResult{
		SnapshotID:   snap.Provenance.ID,
		GeneratedAt:  snap.Provenance.GeneratedAt,
		ChangedFiles: drift.ChangedFiles(snap.Signatures, fresh.Signatures),
		Counts:       report.Counts(),
		Entries:      report.Entries,
	}), nil
}
