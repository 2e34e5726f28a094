package controllers

import (
	"net/http"
	"time"

	"github.com/harborfood/pantry-backend/api/responses"
	"github.com/harborfood/pantry-backend/api/validators"
	"github.com/harborfood/pantry-backend/internal/pantry"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

type checkoutLineRequest struct {
	ItemID   string `json:"itemId" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type checkoutRequest struct {
	Client    upsertClientRequest   `json:"client" validate:"required"`
	Items     []checkoutLineRequest `json:"items" validate:"required,min=1,dive"`
	Timestamp *time.Time            `json:"timestamp,omitempty"`
	Location  *geoPointRequest      `json:"location,omitempty"`
}

// RecordCheckout distributes a cart to a client. The client is resolved or
// created with the same rules as the client upsert; stock sufficiency is
// enforced across the whole cart before anything is decremented.
func RecordCheckout(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := payload.Client.creationRequiresIdentity(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientInput, err := payload.Client.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]pantry.OutboundLine, 0, len(payload.Items))
		for _, line := range payload.Items {
			itemID, err := parseUUID(line.ItemID, "item id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			lines = append(lines, pantry.OutboundLine{ItemID: itemID, Quantity: line.Quantity})
		}

		result, err := engine.RecordOutbound(r.Context(), pantry.OutboundInput{
			Client:    clientInput,
			Items:     lines,
			Timestamp: payload.Timestamp,
			Location:  payload.Location.toGeoPoint(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
