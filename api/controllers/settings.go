package controllers

import (
	"net/http"

	"github.com/harborfood/pantry-backend/api/responses"
	"github.com/harborfood/pantry-backend/api/validators"
	"github.com/harborfood/pantry-backend/internal/pantry"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

// GetSettings returns the current operator settings.
func GetSettings(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, engine.CurrentSettings())
	}
}

type updateSettingsRequest struct {
	VisitWarningDays *int `json:"visitWarningDays,omitempty" validate:"omitempty,gte=0"`
}

// UpdateSettings shallow-merges recognized options; unknown keys are
// rejected by the decoder.
func UpdateSettings(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settings := engine.UpdateSettings(r.Context(), pantry.SettingsInput{
			VisitWarningDays: payload.VisitWarningDays,
		})
		responses.WriteSuccess(w, settings)
	}
}
