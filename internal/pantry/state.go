package pantry

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType distinguishes receiving from distribution ledger entries.
type TransactionType string

const (
	TransactionIn  TransactionType = "IN"
	TransactionOut TransactionType = "OUT"
)

const (
	DefaultCategory         = "Uncategorized"
	DefaultVisitWarningDays = 7
)

// GeoPoint is an optional caller-captured location attached to transactions.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// InventoryItem is a stocked product. Quantity never goes negative.
type InventoryItem struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	Barcode          string    `json:"barcode,omitempty"`
	Quantity         int       `json:"quantity"`
	WeightPerUnitLbs float64   `json:"weightPerUnitLbs"`
	ValuePerUnitUsd  float64   `json:"valuePerUnitUsd"`
	ReorderThreshold *int      `json:"reorderThreshold,omitempty"`
	Allergens        []string  `json:"allergens,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// LowStock reports whether the item sits at or below its reorder threshold.
// Items without a threshold are never low-stock.
func (i InventoryItem) LowStock() bool {
	return i.ReorderThreshold != nil && i.Quantity <= *i.ReorderThreshold
}

func (i InventoryItem) clone() InventoryItem {
	out := i
	if i.ReorderThreshold != nil {
		v := *i.ReorderThreshold
		out.ReorderThreshold = &v
	}
	if i.Allergens != nil {
		out.Allergens = append([]string(nil), i.Allergens...)
	}
	return out
}

// ClientRecord identifies a pantry client. Identifier is the natural key
// (card number, email) used for identity resolution alongside the id.
type ClientRecord struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Identifier string    `json:"identifier"`
	Contact    string    `json:"contact,omitempty"`
	Allergies  []string  `json:"allergies,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (c ClientRecord) clone() ClientRecord {
	out := c
	if c.Allergies != nil {
		out.Allergies = append([]string(nil), c.Allergies...)
	}
	return out
}

// TransactionItem is a ledger line. Name, weight and value are snapshotted at
// recording time so later item edits never rewrite history.
type TransactionItem struct {
	ItemID           uuid.UUID `json:"itemId"`
	Name             string    `json:"name"`
	Quantity         int       `json:"quantity"`
	WeightPerUnitLbs float64   `json:"weightPerUnitLbs"`
	ValuePerUnitUsd  float64   `json:"valuePerUnitUsd"`
}

// Transaction is an immutable, append-only ledger entry.
type Transaction struct {
	ID        uuid.UUID         `json:"id"`
	Type      TransactionType   `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Items     []TransactionItem `json:"items"`

	// IN only.
	Source string `json:"source,omitempty"`
	Donor  string `json:"donor,omitempty"`

	// OUT only.
	ClientID   *uuid.UUID `json:"clientId,omitempty"`
	ClientName string     `json:"clientName,omitempty"`

	Location *GeoPoint `json:"location,omitempty"`
}

func (t Transaction) clone() Transaction {
	out := t
	out.Items = append([]TransactionItem(nil), t.Items...)
	if t.ClientID != nil {
		id := *t.ClientID
		out.ClientID = &id
	}
	if t.Location != nil {
		loc := *t.Location
		out.Location = &loc
	}
	return out
}

// Settings holds recognized configuration options.
type Settings struct {
	VisitWarningDays int `json:"visitWarningDays"`
}

// BarcodeCacheEntry is an advisory prefill cache keyed by barcode. It is
// never authoritative; items own their own fields.
type BarcodeCacheEntry struct {
	Name             string    `json:"name,omitempty"`
	Category         string    `json:"category,omitempty"`
	WeightPerUnitLbs float64   `json:"weightPerUnitLbs,omitempty"`
	Allergens        []string  `json:"allergens,omitempty"`
	CachedAt         time.Time `json:"cachedAt"`
}

func (b BarcodeCacheEntry) clone() BarcodeCacheEntry {
	out := b
	if b.Allergens != nil {
		out.Allergens = append([]string(nil), b.Allergens...)
	}
	return out
}

// State is the full persisted snapshot. Field names match the serialized
// layout consumed by export and by earlier versions of the tool.
type State struct {
	Inventory    []InventoryItem              `json:"inventory"`
	Clients      []ClientRecord               `json:"clients"`
	Transactions []Transaction                `json:"transactions"`
	Settings     Settings                     `json:"settings"`
	BarcodeCache map[string]BarcodeCacheEntry `json:"barcodeCache"`
	Sources      []string                     `json:"sources"`
	Donors       []string                     `json:"donors"`
}

func defaultSources() []string {
	return []string{"Food Bank", "Local Donation", "Food Drive", "Purchase"}
}

func defaultDonors() []string {
	return []string{"Anonymous"}
}

// DefaultState returns the empty-collections state used when the durable
// store has nothing usable.
func DefaultState() *State {
	return &State{
		Inventory:    []InventoryItem{},
		Clients:      []ClientRecord{},
		Transactions: []Transaction{},
		Settings:     Settings{VisitWarningDays: DefaultVisitWarningDays},
		BarcodeCache: map[string]BarcodeCacheEntry{},
		Sources:      defaultSources(),
		Donors:       defaultDonors(),
	}
}

// Normalize fills any missing top-level field with its default, so a partial
// blob from an older version loads instead of failing.
func (s *State) Normalize() {
	if s.Inventory == nil {
		s.Inventory = []InventoryItem{}
	}
	if s.Clients == nil {
		s.Clients = []ClientRecord{}
	}
	if s.Transactions == nil {
		s.Transactions = []Transaction{}
	}
	if s.Settings.VisitWarningDays <= 0 {
		s.Settings.VisitWarningDays = DefaultVisitWarningDays
	}
	if s.BarcodeCache == nil {
		s.BarcodeCache = map[string]BarcodeCacheEntry{}
	}
	if s.Sources == nil {
		s.Sources = defaultSources()
	}
	if s.Donors == nil {
		s.Donors = defaultDonors()
	}
}

// Clone deep-copies the state so callers can never reach engine-owned data.
func (s *State) Clone() *State {
	out := &State{
		Inventory:    make([]InventoryItem, 0, len(s.Inventory)),
		Clients:      make([]ClientRecord, 0, len(s.Clients)),
		Transactions: make([]Transaction, 0, len(s.Transactions)),
		Settings:     s.Settings,
		BarcodeCache: make(map[string]BarcodeCacheEntry, len(s.BarcodeCache)),
		Sources:      append([]string{}, s.Sources...),
		Donors:       append([]string{}, s.Donors...),
	}
	for _, item := range s.Inventory {
		out.Inventory = append(out.Inventory, item.clone())
	}
	for _, client := range s.Clients {
		out.Clients = append(out.Clients, client.clone())
	}
	for _, tx := range s.Transactions {
		out.Transactions = append(out.Transactions, tx.clone())
	}
	for code, entry := range s.BarcodeCache {
		out.BarcodeCache[code] = entry.clone()
	}
	return out
}
