package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborfood/pantry-backend/api/responses"
	"github.com/harborfood/pantry-backend/api/validators"
	"github.com/harborfood/pantry-backend/internal/barcode"
	"github.com/harborfood/pantry-backend/internal/pantry"
	pkgerrors "github.com/harborfood/pantry-backend/pkg/errors"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

type barcodeLookupResult struct {
	Barcode string                    `json:"barcode"`
	Found   bool                      `json:"found"`
	Cached  bool                      `json:"cached"`
	Entry   *pantry.BarcodeCacheEntry `json:"entry,omitempty"`
	ItemID  *uuid.UUID                `json:"itemId,omitempty"`
}

// LookupBarcode resolves a scanned code. The local cache wins; on a miss the
// external resolver is consulted and a hit is written back to the cache so
// the next scan works offline. If an inventory item already carries the
// barcode its id is included so callers can jump straight to it.
func LookupBarcode(engine *pantry.Engine, resolver barcode.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "barcode required"))
			return
		}

		result := barcodeLookupResult{Barcode: code}
		if item, ok := engine.ItemByBarcode(code); ok {
			result.ItemID = &item.ID
		}

		if entry, ok := engine.BarcodeEntry(code); ok {
			result.Found = true
			result.Cached = true
			result.Entry = &entry
			responses.WriteSuccess(w, result)
			return
		}

		if resolver != nil {
			product, err := resolver.Lookup(r.Context(), code)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "barcode lookup failed"))
				return
			}
			if product != nil {
				entry, err := engine.UpsertBarcodeCache(r.Context(), code, pantry.CacheInput{
					Name:             product.Name,
					Category:         product.Category,
					WeightPerUnitLbs: product.WeightPerUnitLbs,
					Allergens:        product.Allergens,
				})
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				result.Found = true
				result.Entry = &entry
			}
		}

		responses.WriteSuccess(w, result)
	}
}

type upsertBarcodeRequest struct {
	Name             string   `json:"name" validate:"required,min=1"`
	Category         string   `json:"category,omitempty"`
	WeightPerUnitLbs float64  `json:"weightPerUnitLbs,omitempty" validate:"omitempty,gte=0"`
	Allergens        []string `json:"allergens,omitempty"`
}

// UpsertBarcode writes cached metadata for a code directly, for corrections
// and products the external database does not know.
func UpsertBarcode(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		var payload upsertBarcodeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := engine.UpsertBarcodeCache(r.Context(), code, pantry.CacheInput{
			Name:             payload.Name,
			Category:         payload.Category,
			WeightPerUnitLbs: payload.WeightPerUnitLbs,
			Allergens:        payload.Allergens,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}
