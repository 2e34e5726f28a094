package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborfood/pantry-backend/api/responses"
	"github.com/harborfood/pantry-backend/api/validators"
	"github.com/harborfood/pantry-backend/internal/pantry"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

// ListInventory returns all items in insertion order.
func ListInventory(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, engine.Items())
	}
}

// GetInventoryItem returns one item by id.
func GetInventoryItem(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUID(chi.URLParam(r, "itemId"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := engine.Item(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type upsertItemRequest struct {
	ID               *string   `json:"id,omitempty" validate:"omitempty,uuid"`
	Name             *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Category         *string   `json:"category,omitempty"`
	Barcode          *string   `json:"barcode,omitempty"`
	Quantity         *int      `json:"quantity,omitempty"`
	WeightPerUnitLbs *float64  `json:"weightPerUnitLbs,omitempty"`
	ValuePerUnitUsd  *float64  `json:"valuePerUnitUsd,omitempty"`
	ReorderThreshold *int      `json:"reorderThreshold,omitempty"`
	Allergens        *[]string `json:"allergens,omitempty"`
}

func (p upsertItemRequest) toInput() (pantry.ItemInput, error) {
	id, err := parseOptionalUUID(p.ID, "item id")
	if err != nil {
		return pantry.ItemInput{}, err
	}
	return pantry.ItemInput{
		ID:               id,
		Name:             p.Name,
		Category:         p.Category,
		Barcode:          p.Barcode,
		Quantity:         p.Quantity,
		WeightPerUnitLbs: p.WeightPerUnitLbs,
		ValuePerUnitUsd:  p.ValuePerUnitUsd,
		ReorderThreshold: p.ReorderThreshold,
		Allergens:        p.Allergens,
	}, nil
}

// UpsertInventoryItem creates or updates an item, resolving identity by id
// first, then barcode.
func UpsertInventoryItem(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload upsertItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item := engine.UpsertInventoryItem(r.Context(), input)
		responses.WriteSuccess(w, item)
	}
}

type adjustQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// AdjustInventoryQuantity applies a quick stock correction outside the ledger.
func AdjustInventoryQuantity(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUID(chi.URLParam(r, "itemId"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := engine.AdjustQuantity(r.Context(), id, payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// LowStockInventory lists items at or below their reorder threshold.
func LowStockInventory(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pantry.LowStockItems(engine.Snapshot()))
	}
}

// InventorySummary returns item count, unit total and total weight.
func InventorySummary(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pantry.Summarize(engine.Snapshot()))
	}
}
