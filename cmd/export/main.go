package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/harborfood/pantry-backend/internal/export"
	"github.com/harborfood/pantry-backend/internal/pantry"
	"github.com/harborfood/pantry-backend/internal/persist"
	"github.com/harborfood/pantry-backend/pkg/config"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

// export dumps the durable state to stdout or a file without starting the
// API server. Formats: csv (ledger rows), json (full state), xlsx
// (distribution report).
func main() {
	format := flag.String("format", "csv", "output format: csv, json or xlsx")
	out := flag.String("out", "", "output file (default stdout)")
	from := flag.String("from", "", "report range start, YYYY-MM-DD (xlsx only)")
	to := flag.String("to", "", "report range end, YYYY-MM-DD (xlsx only)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "export"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	store, err := persist.Open(cfg.Store)
	if err != nil {
		logg.Error(context.Background(), "failed to open state store", err)
		os.Exit(1)
	}
	defer store.Close()

	state, err := store.Load(context.Background())
	if err != nil {
		logg.Error(context.Background(), "failed to load state", err)
		os.Exit(1)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logg.Error(context.Background(), "failed to create output file", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	switch *format {
	case "csv":
		err = export.TransactionsCSV(w, state)
	case "json":
		err = export.StateJSON(w, state)
	case "xlsx":
		err = export.ReportXLSX(w, pantry.DistributionReport(state, *from, *to))
	default:
		err = fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		logg.Error(context.Background(), "export failed", err)
		os.Exit(1)
	}
}
