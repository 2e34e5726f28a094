package export

import (
	"encoding/json"
	"io"

	"github.com/harborfood/pantry-backend/internal/pantry"
)

// StateJSON writes the full state object in the persisted layout.
func StateJSON(w io.Writer, state *pantry.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}
