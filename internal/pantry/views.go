package pantry

import (
	"time"

	"github.com/google/uuid"
)

// Derived views are pure functions over a state snapshot. They never mutate
// the state and recompute from scratch on every call.

const reportDateLayout = "2006-01-02"

// LowStockItems returns every item at or below its reorder threshold.
func LowStockItems(state *State) []InventoryItem {
	out := []InventoryItem{}
	for _, item := range state.Inventory {
		if item.LowStock() {
			out = append(out, item.clone())
		}
	}
	return out
}

// InventorySummary aggregates the whole inventory.
type InventorySummary struct {
	ItemCount      int     `json:"itemCount"`
	TotalQuantity  int     `json:"totalQuantity"`
	TotalWeightLbs float64 `json:"totalWeightLbs"`
}

// Summarize computes distinct item count, unit total and weight total.
func Summarize(state *State) InventorySummary {
	summary := InventorySummary{ItemCount: len(state.Inventory)}
	for _, item := range state.Inventory {
		summary.TotalQuantity += item.Quantity
		summary.TotalWeightLbs += float64(item.Quantity) * item.WeightPerUnitLbs
	}
	return summary
}

// ClientVisits returns the client's OUT transactions in ledger order.
func ClientVisits(state *State, clientID uuid.UUID) []Transaction {
	out := []Transaction{}
	for _, tx := range state.Transactions {
		if tx.Type == TransactionOut && tx.ClientID != nil && *tx.ClientID == clientID {
			out = append(out, tx.clone())
		}
	}
	return out
}

// ReportItemTotal is the per-item distribution aggregate.
type ReportItemTotal struct {
	ItemID   uuid.UUID `json:"itemId"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
}

// ReportClientTotal is the per-client distribution aggregate.
type ReportClientTotal struct {
	ClientID uuid.UUID `json:"clientId"`
	Name     string    `json:"name"`
	Visits   int       `json:"visits"`
	Units    int       `json:"units"`
}

// Report aggregates OUT transactions over an inclusive date range.
type Report struct {
	From             string              `json:"from,omitempty"`
	To               string              `json:"to,omitempty"`
	TransactionCount int                 `json:"transactionCount"`
	TotalUnits       int                 `json:"totalUnits"`
	TotalWeightLbs   float64             `json:"totalWeightLbs"`
	TotalValueUsd    float64             `json:"totalValueUsd"`
	Items            []ReportItemTotal   `json:"items"`
	Clients          []ReportClientTotal `json:"clients"`
}

// DistributionReport filters OUT transactions whose date-only timestamp lies
// in [from, to] (inclusive; empty bound means unbounded) and aggregates by
// item and by client. Totals come from the snapshotted line values, so the
// report is stable against later item edits.
func DistributionReport(state *State, from, to string) Report {
	report := Report{
		From:    from,
		To:      to,
		Items:   []ReportItemTotal{},
		Clients: []ReportClientTotal{},
	}

	itemPos := map[uuid.UUID]int{}
	clientPos := map[uuid.UUID]int{}

	for _, tx := range state.Transactions {
		if tx.Type != TransactionOut {
			continue
		}
		date := tx.Timestamp.Format(reportDateLayout)
		if from != "" && date < from {
			continue
		}
		if to != "" && date > to {
			continue
		}

		report.TransactionCount++

		txUnits := 0
		for _, line := range tx.Items {
			txUnits += line.Quantity
			report.TotalUnits += line.Quantity
			report.TotalWeightLbs += float64(line.Quantity) * line.WeightPerUnitLbs
			report.TotalValueUsd += float64(line.Quantity) * line.ValuePerUnitUsd

			pos, ok := itemPos[line.ItemID]
			if !ok {
				pos = len(report.Items)
				itemPos[line.ItemID] = pos
				report.Items = append(report.Items, ReportItemTotal{ItemID: line.ItemID, Name: line.Name})
			}
			report.Items[pos].Quantity += line.Quantity
		}

		if tx.ClientID != nil {
			pos, ok := clientPos[*tx.ClientID]
			if !ok {
				pos = len(report.Clients)
				clientPos[*tx.ClientID] = pos
				report.Clients = append(report.Clients, ReportClientTotal{ClientID: *tx.ClientID, Name: tx.ClientName})
			}
			report.Clients[pos].Visits++
			report.Clients[pos].Units += txUnits
		}
	}

	return report
}

// OverdueClient pairs a client with their last recorded visit, if any.
type OverdueClient struct {
	Client    ClientRecord `json:"client"`
	LastVisit *time.Time   `json:"lastVisit,omitempty"`
}

// OverdueClients returns clients whose last check-out is older than the
// visit-warning window, or who have never checked out at all.
func OverdueClients(state *State, now time.Time) []OverdueClient {
	lastVisit := map[uuid.UUID]time.Time{}
	for _, tx := range state.Transactions {
		if tx.Type != TransactionOut || tx.ClientID == nil {
			continue
		}
		if prev, ok := lastVisit[*tx.ClientID]; !ok || tx.Timestamp.After(prev) {
			lastVisit[*tx.ClientID] = tx.Timestamp
		}
	}

	window := time.Duration(state.Settings.VisitWarningDays) * 24 * time.Hour
	out := []OverdueClient{}
	for _, client := range state.Clients {
		visited, ok := lastVisit[client.ID]
		if !ok {
			out = append(out, OverdueClient{Client: client.clone()})
			continue
		}
		if now.Sub(visited) > window {
			ts := visited
			out = append(out, OverdueClient{Client: client.clone(), LastVisit: &ts})
		}
	}
	return out
}
