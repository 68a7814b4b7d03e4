package storage

import (
	"context"

	"depscope/internal/snapshot"
)

// Store persists scanner snapshots. Rows are append-only: a new scan adds a
// snapshot, it never rewrites an old one.
type Store interface {
	// SaveSnapshot persists a snapshot under its provenance id.
	SaveSnapshot(ctx context.Context, s *snapshot.Snapshot) error

	// LoadSnapshot rebuilds one snapshot by provenance id.
	LoadSnapshot(ctx context.Context, id string) (*snapshot.Snapshot, error)

	// LoadLatest rebuilds the most recently generated snapshot, or a
	// snapshot.NotLoadedError when none exists.
	LoadLatest(ctx context.Context) (*snapshot.Snapshot, error)

	// ListSnapshots returns provenance rows, newest first.
	ListSnapshots(ctx context.Context) ([]snapshot.Provenance, error)

	Close() error
}
