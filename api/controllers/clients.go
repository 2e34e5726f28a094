package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborfood/pantry-backend/api/responses"
	"github.com/harborfood/pantry-backend/api/validators"
	"github.com/harborfood/pantry-backend/internal/pantry"
	pkgerrors "github.com/harborfood/pantry-backend/pkg/errors"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

// ListClients returns all client records.
func ListClients(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, engine.Clients())
	}
}

// GetClient returns one client by id.
func GetClient(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUID(chi.URLParam(r, "clientId"), "client id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		client, err := engine.Client(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

type upsertClientRequest struct {
	ID         *string   `json:"id,omitempty" validate:"omitempty,uuid"`
	Name       *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Identifier *string   `json:"identifier,omitempty" validate:"omitempty,min=1"`
	Contact    *string   `json:"contact,omitempty"`
	Allergies  *[]string `json:"allergies,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
}

func (p upsertClientRequest) toInput() (pantry.ClientInput, error) {
	id, err := parseOptionalUUID(p.ID, "client id")
	if err != nil {
		return pantry.ClientInput{}, err
	}
	return pantry.ClientInput{
		ID:         id,
		Name:       p.Name,
		Identifier: p.Identifier,
		Contact:    p.Contact,
		Allergies:  p.Allergies,
		Notes:      p.Notes,
	}, nil
}

// creationRequiresIdentity enforces the create-time requirements the engine
// itself does not: a brand-new client needs a name and an identifier.
func (p upsertClientRequest) creationRequiresIdentity() error {
	if p.ID != nil {
		return nil
	}
	if p.Name == nil || p.Identifier == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "name and identifier are required for new clients")
	}
	return nil
}

// UpsertClient creates or updates a client, resolving identity by id first,
// then by identifier.
func UpsertClient(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload upsertClientRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := payload.creationRequiresIdentity(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		client := engine.UpsertClient(r.Context(), input)
		responses.WriteSuccess(w, client)
	}
}

// ClientVisits returns the client's check-out history in ledger order.
func ClientVisits(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUID(chi.URLParam(r, "clientId"), "client id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := engine.Client(id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pantry.ClientVisits(engine.Snapshot(), id))
	}
}

// OverdueClients lists clients past the visit-warning window.
func OverdueClients(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pantry.OverdueClients(engine.Snapshot(), time.Now()))
	}
}
