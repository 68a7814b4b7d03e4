package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"depscope/internal/element"
	"depscope/internal/snapshot"
)

// SQLiteStore persists snapshots in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			generated_at TIMESTAMP NOT NULL,
			reason TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS elements (
			snapshot_id TEXT NOT NULL,
			ord INTEGER NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			file TEXT NOT NULL,
			line INTEGER NOT NULL,
			end_line INTEGER,
			exported INTEGER NOT NULL,
			language TEXT,
			param_count INTEGER,
			PRIMARY KEY (snapshot_id, id)
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			snapshot_id TEXT NOT NULL,
			ord INTEGER NOT NULL,
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			PRIMARY KEY (snapshot_id, from_id, to_id, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS signatures (
			snapshot_id TEXT NOT NULL,
			file TEXT NOT NULL,
			signature TEXT NOT NULL,
			PRIMARY KEY (snapshot_id, file)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_elements_file ON elements(snapshot_id, file);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *snapshot.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, generated_at, reason) VALUES (?, ?, ?)`,
		snap.Provenance.ID, snap.Provenance.GeneratedAt.UTC(), snap.Provenance.Trigger,
	); err != nil {
		return fmt.Errorf("failed to save snapshot row: %w", err)
	}

	elStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO elements (snapshot_id, ord, id, name, type, file, line, end_line, exported, language, param_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer elStmt.Close()

	for i, el := range snap.Elements.All() {
		var params sql.NullInt64
		if el.ParamCount != nil {
			params = sql.NullInt64{Int64: int64(*el.ParamCount), Valid: true}
		}
		if _, err := elStmt.ExecContext(ctx,
			snap.Provenance.ID, i, el.ID, el.Name, string(el.Type), el.File,
			el.Line, el.EndLine, el.Exported, el.Language, params,
		); err != nil {
			return fmt.Errorf("failed to save element %s: %w", el.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (snapshot_id, ord, from_id, to_id, kind) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(snapshot_id, from_id, to_id, kind) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for i, e := range snap.Graph.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, snap.Provenance.ID, i, e.From, e.To, string(e.Kind)); err != nil {
			return fmt.Errorf("failed to save edge %s->%s: %w", e.From, e.To, err)
		}
	}

	sigStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO signatures (snapshot_id, file, signature) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer sigStmt.Close()

	for file, sig := range snap.Signatures {
		if _, err := sigStmt.ExecContext(ctx, snap.Provenance.ID, file, sig); err != nil {
			return fmt.Errorf("failed to save signature for %s: %w", file, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	var prov snapshot.Provenance
	var generatedAt time.Time
	row := s.db.QueryRowContext(ctx, `SELECT id, generated_at, reason FROM snapshots WHERE id = ?`, id)
	if err := row.Scan(&prov.ID, &generatedAt, &prov.Trigger); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &snapshot.NotLoadedError{}
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	prov.GeneratedAt = generatedAt

	payload, err := s.loadPayload(ctx, prov.ID)
	if err != nil {
		return nil, err
	}
	return snapshot.New(payload, prov)
}

func (s *SQLiteStore) LoadLatest(ctx context.Context) (*snapshot.Snapshot, error) {
	var id string
	row := s.db.QueryRowContext(ctx, `SELECT id FROM snapshots ORDER BY generated_at DESC, id DESC LIMIT 1`)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &snapshot.NotLoadedError{}
		}
		return nil, fmt.Errorf("failed to find latest snapshot: %w", err)
	}
	return s.LoadSnapshot(ctx, id)
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]snapshot.Provenance, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, generated_at, reason FROM snapshots ORDER BY generated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []snapshot.Provenance
	for rows.Next() {
		var p snapshot.Provenance
		if err := rows.Scan(&p.ID, &p.GeneratedAt, &p.Trigger); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadPayload(ctx context.Context, id string) (snapshot.Payload, error) {
	var p snapshot.Payload

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, file, line, end_line, exported, language, param_count
		FROM elements WHERE snapshot_id = ? ORDER BY ord
	`, id)
	if err != nil {
		return p, fmt.Errorf("failed to query elements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var el element.CodeElement
		var typ string
		var endLine sql.NullInt64
		var params sql.NullInt64
		if err := rows.Scan(&el.ID, &el.Name, &typ, &el.File, &el.Line, &endLine, &el.Exported, &el.Language, &params); err != nil {
			return p, fmt.Errorf("failed to scan element: %w", err)
		}
		el.Type = element.Type(typ)
		if endLine.Valid {
			el.EndLine = int(endLine.Int64)
		}
		if params.Valid {
			n := int(params.Int64)
			el.ParamCount = &n
		}
		p.Elements = append(p.Elements, el)
	}
	if err := rows.Err(); err != nil {
		return p, err
	}

	edgeRows, err := s.db.QueryContext(ctx, `
		SELECT from_id, to_id, kind FROM edges WHERE snapshot_id = ? ORDER BY ord
	`, id)
	if err != nil {
		return p, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e element.Edge
		var kind string
		if err := edgeRows.Scan(&e.From, &e.To, &kind); err != nil {
			return p, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Kind = element.EdgeKind(kind)
		p.Edges = append(p.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return p, err
	}

	sigRows, err := s.db.QueryContext(ctx, `
		SELECT file, signature FROM signatures WHERE snapshot_id = ?
	`, id)
	if err != nil {
		return p, fmt.Errorf("failed to query signatures: %w", err)
	}
	defer sigRows.Close()

	p.Signatures = make(map[string]string)
	for sigRows.Next() {
		var file, sig string
		if err := sigRows.Scan(&file, &sig); err != nil {
			return p, fmt.Errorf("failed to scan signature: %w", err)
		}
		p.Signatures[file] = sig
	}
	return p, sigRows.Err()
}
