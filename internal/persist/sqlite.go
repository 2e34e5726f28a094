package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harborfood/pantry-backend/internal/pantry"
	_ "modernc.org/sqlite"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshot (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    state      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite keeps the serialized snapshot in a single-row table. The database
// gives durable, torn-write-free storage without changing the blob model:
// there is still one state, one writer, last write wins.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the snapshot database at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(snapshotSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating snapshot table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Load reads the snapshot row. A missing row or unparseable blob degrades
// to the default state instead of failing.
func (s *SQLite) Load(ctx context.Context) (*pantry.State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM snapshot WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return pantry.DefaultState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	state := &pantry.State{}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return pantry.DefaultState(), nil
	}
	state.Normalize()
	return state, nil
}

// Save upserts the single snapshot row.
func (s *SQLite) Save(ctx context.Context, state *pantry.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("serializing state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO snapshot (id, state, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
ON CONFLICT (id) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP
`, string(raw))
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
