// Package persist provides the durable snapshot store the state engine
// saves through. Every driver holds one serialized state blob with
// last-write-wins semantics; there is exactly one writer (the engine).
package persist

import (
	"context"

	"github.com/harborfood/pantry-backend/internal/pantry"
)

// Store loads and saves the full state snapshot.
type Store interface {
	Load(ctx context.Context) (*pantry.State, error)
	Save(ctx context.Context, state *pantry.State) error
	Ping(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)
