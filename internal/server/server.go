// Package server wires the query engine, the snapshot store and the scanner
// into an MCP server. This is the composition root: concrete implementations
// are created here and injected into the tools that depend on them. No
// business logic lives here, only wiring.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"depscope/internal/config"
	"depscope/internal/snapshot"
	"depscope/internal/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with every tool registered. The latest stored
// snapshot is loaded into the shared holder when one exists; an empty
// database is not an error, queries simply report that a scan is needed.
//
// The returned cleanup function closes the snapshot database and must be
// called on shutdown (typically via defer). It is always non-nil.
func New(cfg *config.Config) (*server.MCPServer, func(), error) {
	store, err := storage.NewSQLiteStore(cfg.DB.Path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("opening snapshot store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing snapshot store", "err", err)
		}
	}

	holder := &snapshot.Holder{}
	snap, err := store.LoadLatest(context.Background())
	switch {
	case err == nil:
		holder.Swap(snap)
		slog.Info("loaded snapshot",
			"id", snap.Provenance.ID,
			"elements", snap.Elements.Len(),
			"edges", len(snap.Graph.Edges()))
	case errors.As(err, new(*snapshot.NotLoadedError)):
		slog.Info("no stored snapshot yet, waiting for first scan")
	default:
		cleanup()
		return nil, func() {}, fmt.Errorf("loading latest snapshot: %w", err)
	}

	s := server.NewMCPServer(
		"depscope",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	queryTool := NewQueryTool(holder, cfg)
	s.AddTool(queryTool.Definition(), queryTool.Handle)

	pathTool := NewPathTool(holder, cfg)
	s.AddTool(pathTool.Definition(), pathTool.Handle)

	impactTool := NewImpactTool(holder, cfg)
	s.AddTool(impactTool.Definition(), impactTool.Handle)

	driftTool := NewDriftTool(holder, cfg)
	s.AddTool(driftTool.Definition(), driftTool.Handle)

	complexityTool := NewComplexityTool(holder)
	s.AddTool(complexityTool.Definition(), complexityTool.Handle)

	rescanTool := NewRescanTool(holder, store, cfg)
	s.AddTool(rescanTool.Definition(), rescanTool.Handle)

	return s, cleanup, nil
}

// Serve runs the server over stdio until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const serverInstructions = `depscope answers dependency questions about a scanned codebase.

Typical flow:
1. depscope_rescan to index the project (or reuse the stored snapshot).
2. depscope_query to walk relationships (calls, imports, depends-on and
   their reverse forms) from any function, type or constant.
3. depscope_impact before modifying or deleting an element, to see the
   blast radius and a risk level.
4. depscope_drift when stored references may be stale: it classifies each
   known element as unchanged, moved, renamed, missing or ambiguous.
5. depscope_complexity for a quick size/parameter-based complexity signal.

Targets accept an element id (file:name:line) or a name that is unique in
the snapshot. Failed lookups return ranked near-matches.`
