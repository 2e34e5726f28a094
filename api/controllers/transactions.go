package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborfood/pantry-backend/api/responses"
	"github.com/harborfood/pantry-backend/internal/pantry"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

// ListTransactions returns the full ledger in append order.
func ListTransactions(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, engine.Transactions())
	}
}

// GetTransaction returns one ledger entry by id.
func GetTransaction(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUID(chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tx, err := engine.Transaction(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tx)
	}
}
