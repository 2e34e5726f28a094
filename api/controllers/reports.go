package controllers

import (
	"net/http"

	"github.com/harborfood/pantry-backend/api/responses"
	"github.com/harborfood/pantry-backend/api/validators"
	"github.com/harborfood/pantry-backend/internal/export"
	"github.com/harborfood/pantry-backend/internal/pantry"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

func reportRange(r *http.Request) (from, to string, err error) {
	if from, err = validators.ParseQueryDate(r, "from"); err != nil {
		return "", "", err
	}
	if to, err = validators.ParseQueryDate(r, "to"); err != nil {
		return "", "", err
	}
	return from, to, nil
}

// DistributionReport aggregates OUT transactions over an inclusive date
// range; either bound may be omitted to leave the range open.
func DistributionReport(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := reportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pantry.DistributionReport(engine.Snapshot(), from, to))
	}
}

// DistributionReportXLSX renders the same report as a downloadable workbook.
func DistributionReportXLSX(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := reportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report := pantry.DistributionReport(engine.Snapshot(), from, to)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="distribution-report.xlsx"`)
		if err := export.ReportXLSX(w, report); err != nil {
			logg.Error(r.Context(), "report.xlsx.write", err)
		}
	}
}

// ExportTransactionsCSV streams the full ledger flattened to one row per
// line item.
func ExportTransactionsCSV(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
		if err := export.TransactionsCSV(w, engine.Snapshot()); err != nil {
			logg.Error(r.Context(), "export.csv.write", err)
		}
	}
}

// ExportStateJSON dumps the entire durable state blob for backup.
func ExportStateJSON(engine *pantry.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="pantry-state.json"`)
		if err := export.StateJSON(w, engine.Snapshot()); err != nil {
			logg.Error(r.Context(), "export.json.write", err)
		}
	}
}
