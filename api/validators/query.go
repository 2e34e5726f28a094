package validators

import (
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/harborfood/pantry-backend/pkg/errors"
)

const queryDateLayout = "2006-01-02"

// ParseQueryDate reads an optional YYYY-MM-DD query parameter. An empty
// value returns "", meaning unbounded.
func ParseQueryDate(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse(queryDateLayout, raw); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a YYYY-MM-DD date").
			WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}
