// Package export renders read-only views of a state snapshot as CSV, JSON
// and XLSX. Nothing here mutates state.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/harborfood/pantry-backend/internal/pantry"
)

var csvHeader = []string{
	"type",
	"timestamp",
	"client",
	"clientIdentifier",
	"itemName",
	"quantity",
	"weightPerUnitLbs",
	"valuePerUnitUsd",
}

// TransactionsCSV writes the ledger as one row per transaction line item.
func TransactionsCSV(w io.Writer, state *pantry.State) error {
	identifiers := make(map[uuid.UUID]string, len(state.Clients))
	for _, client := range state.Clients {
		identifiers[client.ID] = client.Identifier
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, tx := range state.Transactions {
		clientName := tx.ClientName
		clientIdentifier := ""
		if tx.ClientID != nil {
			clientIdentifier = identifiers[*tx.ClientID]
		}
		for _, line := range tx.Items {
			row := []string{
				string(tx.Type),
				tx.Timestamp.Format(time.RFC3339),
				clientName,
				clientIdentifier,
				line.Name,
				strconv.Itoa(line.Quantity),
				strconv.FormatFloat(line.WeightPerUnitLbs, 'f', -1, 64),
				strconv.FormatFloat(line.ValuePerUnitUsd, 'f', -1, 64),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
