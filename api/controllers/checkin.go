package controllers

import (
	"net/http"
	"time"

	"github.com/harborfood/pantry-backend/api/responses"
	"github.com/harborfood/pantry-backend/api/validators"
	"github.com/harborfood/pantry-backend/internal/pantry"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

type checkinRequest struct {
	ItemID    string           `json:"itemId" validate:"required,uuid"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	Source    string           `json:"source,omitempty"`
	Donor     string           `json:"donor,omitempty"`
	Timestamp *time.Time       `json:"timestamp,omitempty"`
	Location  *geoPointRequest `json:"location,omitempty"`
}

// RecordCheckin receives donated or purchased stock: it increments the item
// and appends one IN ledger entry.
func RecordCheckin(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkinRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseUUID(payload.ItemID, "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tx, err := engine.RecordInbound(r.Context(), pantry.InboundInput{
			ItemID:    itemID,
			Quantity:  payload.Quantity,
			Source:    payload.Source,
			Donor:     payload.Donor,
			Timestamp: payload.Timestamp,
			Location:  payload.Location.toGeoPoint(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, tx)
	}
}
