// Package snapshot bundles one scanner pass into an immutable unit: the
// element store, the validated dependency graph, and per-file content
// signatures. A snapshot is created wholesale, never mutated, and superseded
// by the next scan.
package snapshot

import (
	"fmt"
	"sync/atomic"
	"time"

	"depscope/internal/depgraph"
	"depscope/internal/element"
)

// Payload is the exact shape the scanner collaborator hands over.
type Payload struct {
	Elements   []element.CodeElement `json:"elements"`
	Edges      []element.Edge        `json:"edges"`
	Signatures map[string]string     `json:"signatures"` // file -> content hash
}

// Provenance rides alongside a snapshot as plain data; it never mutates the
// snapshot it describes.
type Provenance struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Trigger     string    `json:"trigger,omitempty"`
}

// Snapshot is an immutable point-in-time bundle of elements, edges and file
// signatures. Any number of queries may read it concurrently without locking.
type Snapshot struct {
	Elements   *element.Store
	Graph      *depgraph.Graph
	Signatures map[string]string
	Provenance Provenance
	// Warnings recorded during the tolerant load (duplicate ids, dangling
	// edges).
	Warnings []string
}

// New validates a scanner payload and builds the snapshot. Missing required
// fields fail fast here rather than surfacing mid-traversal; recoverable
// imperfections (duplicate ids, dangling edges, unknown kinds) are dropped
// with warnings instead.
func New(p Payload, prov Provenance) (*Snapshot, error) {
	for i := range p.Elements {
		el := &p.Elements[i]
		if el.Name == "" || el.File == "" {
			return nil, fmt.Errorf("malformed snapshot: element %d is missing name or file", i)
		}
		if !el.Type.Valid() {
			return nil, fmt.Errorf("malformed snapshot: element %q has unknown type %q", el.Name, el.Type)
		}
	}

	store, warnings := element.NewStore(p.Elements)
	graph, edgeWarnings := depgraph.Build(store, p.Edges)
	warnings = append(warnings, edgeWarnings...)

	sigs := make(map[string]string, len(p.Signatures))
	for f, sig := range p.Signatures {
		sigs[f] = sig
	}

	return &Snapshot{
		Elements:   store,
		Graph:      graph,
		Signatures: sigs,
		Provenance: prov,
		Warnings:   warnings,
	}, nil
}

// NotLoadedError means no snapshot is available at query time. The remedy is
// to trigger a scan; nothing is retried automatically.
type NotLoadedError struct{}

func (e *NotLoadedError) Error() string {
	return "no snapshot loaded: run a scan first"
}

// Holder publishes the current snapshot to concurrent readers. Replacement is
// an atomic pointer swap: queries already holding the old snapshot keep
// operating on it until they return.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// Swap installs a new snapshot and returns the one it replaced (nil on first
// load).
func (h *Holder) Swap(s *Snapshot) *Snapshot {
	return h.current.Swap(s)
}

// Current returns the published snapshot or a NotLoadedError.
func (h *Holder) Current() (*Snapshot, error) {
	if s := h.current.Load(); s != nil {
		return s, nil
	}
	return nil, &NotLoadedError{}
}
