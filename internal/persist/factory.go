package persist

import (
	"fmt"
	"strings"

	"github.com/harborfood/pantry-backend/pkg/config"
)

// Open builds the store selected by configuration.
func Open(cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverFile, "":
		return NewFile(cfg.Path)
	case DriverSQLite:
		return NewSQLite(cfg.Path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
