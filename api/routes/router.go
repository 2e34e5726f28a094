package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborfood/pantry-backend/api/controllers"
	"github.com/harborfood/pantry-backend/api/middleware"
	"github.com/harborfood/pantry-backend/internal/barcode"
	"github.com/harborfood/pantry-backend/internal/pantry"
	"github.com/harborfood/pantry-backend/pkg/config"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

type storePinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store storePinger,
	engine *pantry.Engine,
	resolver barcode.Resolver,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListInventory(engine, logg))
			r.Post("/", controllers.UpsertInventoryItem(engine, logg))
			r.Get("/low-stock", controllers.LowStockInventory(engine, logg))
			r.Get("/summary", controllers.InventorySummary(engine, logg))
			r.Get("/{itemId}", controllers.GetInventoryItem(engine, logg))
			r.Post("/{itemId}/adjust", controllers.AdjustInventoryQuantity(engine, logg))
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ListClients(engine, logg))
			r.Post("/", controllers.UpsertClient(engine, logg))
			r.Get("/overdue", controllers.OverdueClients(engine, logg))
			r.Get("/{clientId}", controllers.GetClient(engine, logg))
			r.Get("/{clientId}/visits", controllers.ClientVisits(engine, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(engine, logg))
			r.Get("/{transactionId}", controllers.GetTransaction(engine, logg))
		})

		r.Post("/checkins", controllers.RecordCheckin(engine, logg))
		r.Post("/checkouts", controllers.RecordCheckout(engine, logg))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(engine, logg))
			r.Patch("/", controllers.UpdateSettings(engine, logg))
		})

		r.Route("/barcodes", func(r chi.Router) {
			r.Get("/{code}", controllers.LookupBarcode(engine, resolver, logg))
			r.Put("/{code}", controllers.UpsertBarcode(engine, logg))
		})

		r.Route("/vocab", func(r chi.Router) {
			r.Get("/sources", controllers.ListSources(engine, logg))
			r.Post("/sources", controllers.AddSource(engine, logg))
			r.Get("/donors", controllers.ListDonors(engine, logg))
			r.Post("/donors", controllers.AddDonor(engine, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/distribution", controllers.DistributionReport(engine, logg))
			r.Get("/distribution.xlsx", controllers.DistributionReportXLSX(engine, logg))
		})

		r.Route("/exports", func(r chi.Router) {
			r.Get("/transactions.csv", controllers.ExportTransactionsCSV(engine, logg))
			r.Get("/state.json", controllers.ExportStateJSON(engine, logg))
		})
	})

	return r
}
