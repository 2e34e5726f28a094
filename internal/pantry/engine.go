package pantry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harborfood/pantry-backend/pkg/errors"
	"github.com/harborfood/pantry-backend/pkg/logger"
)

// Store is the durable snapshot adapter the engine persists through. Save is
// best-effort: the in-memory state stays authoritative when a write fails.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}

// Engine owns all domain state and applies every mutation as one atomic
// read-modify-write transition. Callers only ever receive deep copies.
type Engine struct {
	mu    sync.Mutex
	state *State
	store Store
	logg  *logger.Logger
	now   func() time.Time
}

// NewEngine loads the persisted snapshot (or defaults) and returns the single
// state authority the rest of the application shares.
func NewEngine(ctx context.Context, store Store, logg *logger.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	state, err := store.Load(ctx)
	if err != nil || state == nil {
		if logg != nil {
			logg.Error(ctx, "state load failed, starting from defaults", err)
		}
		state = DefaultState()
	}
	state.Normalize()
	return &Engine{
		state: state,
		store: store,
		logg:  logg,
		now:   time.Now,
	}, nil
}

// ItemInput is a partial inventory item. Nil fields are left untouched on
// update and defaulted on create.
type ItemInput struct {
	ID               *uuid.UUID
	Name             *string
	Category         *string
	Barcode          *string
	Quantity         *int
	WeightPerUnitLbs *float64
	ValuePerUnitUsd  *float64
	ReorderThreshold *int
	Allergens        *[]string
}

// UpsertInventoryItem resolves identity by id, then barcode, then creates.
// It always succeeds; callers validate shape before reaching the engine.
func (e *Engine) UpsertInventoryItem(ctx context.Context, in ItemInput) InventoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.resolveItemLocked(in)
	now := e.now()

	if idx >= 0 {
		item := &e.state.Inventory[idx]
		applyItemInput(item, in)
		item.UpdatedAt = now
		e.persistLocked(ctx)
		return item.clone()
	}

	item := InventoryItem{
		ID:        uuid.New(),
		Category:  DefaultCategory,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyItemInput(&item, in)
	e.state.Inventory = append(e.state.Inventory, item)
	e.persistLocked(ctx)
	return item.clone()
}

func (e *Engine) resolveItemLocked(in ItemInput) int {
	if in.ID != nil {
		if idx := e.itemIndexByIDLocked(*in.ID); idx >= 0 {
			return idx
		}
	}
	if in.Barcode != nil {
		if code := strings.TrimSpace(*in.Barcode); code != "" {
			return e.itemIndexByBarcodeLocked(code)
		}
	}
	return -1
}

func applyItemInput(item *InventoryItem, in ItemInput) {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			category = DefaultCategory
		}
		item.Category = category
	}
	if in.Barcode != nil {
		item.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.Quantity != nil {
		item.Quantity = max(0, *in.Quantity)
	}
	if in.WeightPerUnitLbs != nil {
		item.WeightPerUnitLbs = max(0, *in.WeightPerUnitLbs)
	}
	if in.ValuePerUnitUsd != nil {
		item.ValuePerUnitUsd = max(0, *in.ValuePerUnitUsd)
	}
	if in.ReorderThreshold != nil {
		threshold := max(0, *in.ReorderThreshold)
		item.ReorderThreshold = &threshold
	}
	if in.Allergens != nil {
		item.Allergens = append([]string(nil), *in.Allergens...)
	}
}

// AdjustQuantity applies a quick +/- stock correction outside the ledger.
// No transaction is recorded; that asymmetry with check-in/check-out is
// deliberate.
func (e *Engine) AdjustQuantity(ctx context.Context, itemID uuid.UUID, delta int) (InventoryItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.itemIndexByIDLocked(itemID)
	if idx < 0 {
		return InventoryItem{}, errors.New(errors.CodeNotFound, "inventory item not found")
	}

	item := &e.state.Inventory[idx]
	item.Quantity = max(0, item.Quantity+delta)
	item.UpdatedAt = e.now()
	e.persistLocked(ctx)
	return item.clone(), nil
}

// ClientInput is a partial client record. Name and Identifier are required
// on create, enforced at the REST boundary.
type ClientInput struct {
	ID         *uuid.UUID
	Name       *string
	Identifier *string
	Contact    *string
	Allergies  *[]string
	Notes      *string
}

// UpsertClient resolves identity by id, then by identifier, then creates.
func (e *Engine) UpsertClient(ctx context.Context, in ClientInput) ClientRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	client := e.upsertClientLocked(in)
	e.persistLocked(ctx)
	return client
}

func (e *Engine) upsertClientLocked(in ClientInput) ClientRecord {
	now := e.now()

	idx := -1
	if in.ID != nil {
		idx = e.clientIndexByIDLocked(*in.ID)
	}
	if idx < 0 && in.Identifier != nil {
		if ident := strings.TrimSpace(*in.Identifier); ident != "" {
			idx = e.clientIndexByIdentifierLocked(ident)
		}
	}

	if idx >= 0 {
		client := &e.state.Clients[idx]
		applyClientInput(client, in)
		client.UpdatedAt = now
		return client.clone()
	}

	client := ClientRecord{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyClientInput(&client, in)
	e.state.Clients = append(e.state.Clients, client)
	return client.clone()
}

func applyClientInput(client *ClientRecord, in ClientInput) {
	if in.Name != nil {
		client.Name = strings.TrimSpace(*in.Name)
	}
	if in.Identifier != nil {
		client.Identifier = strings.TrimSpace(*in.Identifier)
	}
	if in.Contact != nil {
		client.Contact = strings.TrimSpace(*in.Contact)
	}
	if in.Allergies != nil {
		client.Allergies = append([]string(nil), *in.Allergies...)
	}
	if in.Notes != nil {
		client.Notes = *in.Notes
	}
}

// InboundInput describes one check-in: a single item received from an
// optional source/donor.
type InboundInput struct {
	ItemID    uuid.UUID
	Quantity  int
	Source    string
	Donor     string
	Timestamp *time.Time
	Location  *GeoPoint
}

// RecordInbound increments stock and appends exactly one IN transaction
// whose line snapshots the item at the moment of recording.
func (e *Engine) RecordInbound(ctx context.Context, in InboundInput) (Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.Quantity <= 0 {
		return Transaction{}, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	idx := e.itemIndexByIDLocked(in.ItemID)
	if idx < 0 {
		return Transaction{}, errors.New(errors.CodeNotFound, "inventory item not found")
	}

	now := e.now()
	item := &e.state.Inventory[idx]

	line := TransactionItem{
		ItemID:           item.ID,
		Name:             item.Name,
		Quantity:         in.Quantity,
		WeightPerUnitLbs: item.WeightPerUnitLbs,
		ValuePerUnitUsd:  item.ValuePerUnitUsd,
	}

	item.Quantity += in.Quantity
	item.UpdatedAt = now

	tx := Transaction{
		ID:        uuid.New(),
		Type:      TransactionIn,
		Timestamp: now,
		Items:     []TransactionItem{line},
		Source:    strings.TrimSpace(in.Source),
		Donor:     strings.TrimSpace(in.Donor),
	}
	if in.Timestamp != nil {
		tx.Timestamp = *in.Timestamp
	}
	if in.Location != nil {
		loc := *in.Location
		tx.Location = &loc
	}
	e.state.Transactions = append(e.state.Transactions, tx)

	// Keep the pickers in sync with what was actually recorded.
	e.addVocabLocked(&e.state.Sources, tx.Source)
	e.addVocabLocked(&e.state.Donors, tx.Donor)

	e.persistLocked(ctx)
	return tx.clone(), nil
}

// OutboundLine is one cart entry of a check-out.
type OutboundLine struct {
	ItemID   uuid.UUID
	Quantity int
}

// OutboundInput describes one check-out: a cart distributed to a client,
// resolved or created with the same rules as UpsertClient.
type OutboundInput struct {
	Client    ClientInput
	Items     []OutboundLine
	Timestamp *time.Time
	Location  *GeoPoint
}

// CheckoutResult carries the resolved client and the appended OUT entry.
type CheckoutResult struct {
	Client      ClientRecord
	Transaction Transaction
}

// RecordOutbound validates the whole cart before touching state: lines for
// unknown items are dropped, an empty or fully-dropped cart aborts, and a
// line exceeding on-hand stock aborts the entire operation. Stock
// sufficiency is enforced here, not left to callers.
func (e *Engine) RecordOutbound(ctx context.Context, in OutboundInput) (CheckoutResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(in.Items) == 0 {
		return CheckoutResult{}, errors.New(errors.CodeValidation, "cart is empty")
	}

	type pick struct {
		idx  int
		line OutboundLine
	}
	picks := make([]pick, 0, len(in.Items))
	planned := map[uuid.UUID]int{}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			continue
		}
		idx := e.itemIndexByIDLocked(line.ItemID)
		if idx < 0 {
			continue
		}
		item := e.state.Inventory[idx]
		if planned[item.ID]+line.Quantity > item.Quantity {
			return CheckoutResult{}, errors.New(errors.CodeStateConflict, "insufficient stock").
				WithDetails(map[string]any{
					"itemId":    item.ID,
					"itemName":  item.Name,
					"requested": planned[item.ID] + line.Quantity,
					"available": item.Quantity,
				})
		}
		planned[item.ID] += line.Quantity
		picks = append(picks, pick{idx: idx, line: line})
	}
	if len(picks) == 0 {
		return CheckoutResult{}, errors.New(errors.CodeNotFound, "no cart lines reference existing items")
	}

	now := e.now()
	client := e.upsertClientLocked(in.Client)

	lines := make([]TransactionItem, 0, len(picks))
	for _, p := range picks {
		item := &e.state.Inventory[p.idx]
		lines = append(lines, TransactionItem{
			ItemID:           item.ID,
			Name:             item.Name,
			Quantity:         p.line.Quantity,
			WeightPerUnitLbs: item.WeightPerUnitLbs,
			ValuePerUnitUsd:  item.ValuePerUnitUsd,
		})
		item.Quantity = max(0, item.Quantity-p.line.Quantity)
		item.UpdatedAt = now
	}

	clientID := client.ID
	tx := Transaction{
		ID:         uuid.New(),
		Type:       TransactionOut,
		Timestamp:  now,
		Items:      lines,
		ClientID:   &clientID,
		ClientName: client.Name,
	}
	if in.Timestamp != nil {
		tx.Timestamp = *in.Timestamp
	}
	if in.Location != nil {
		loc := *in.Location
		tx.Location = &loc
	}
	e.state.Transactions = append(e.state.Transactions, tx)

	e.persistLocked(ctx)
	return CheckoutResult{Client: client, Transaction: tx.clone()}, nil
}

// SettingsInput carries recognized options for a shallow merge.
type SettingsInput struct {
	VisitWarningDays *int
}

// UpdateSettings shallow-merges recognized options into current settings.
func (e *Engine) UpdateSettings(ctx context.Context, in SettingsInput) Settings {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.VisitWarningDays != nil {
		e.state.Settings.VisitWarningDays = max(0, *in.VisitWarningDays)
	}
	e.persistLocked(ctx)
	return e.state.Settings
}

// CacheInput holds the advisory fields for a barcode cache entry.
type CacheInput struct {
	Name             string
	Category         string
	WeightPerUnitLbs float64
	Allergens        []string
}

// UpsertBarcodeCache unconditionally overwrites the entry for the barcode.
func (e *Engine) UpsertBarcodeCache(ctx context.Context, barcode string, in CacheInput) (BarcodeCacheEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	code := strings.TrimSpace(barcode)
	if code == "" {
		return BarcodeCacheEntry{}, errors.New(errors.CodeValidation, "barcode required")
	}

	entry := BarcodeCacheEntry{
		Name:             strings.TrimSpace(in.Name),
		Category:         strings.TrimSpace(in.Category),
		WeightPerUnitLbs: max(0, in.WeightPerUnitLbs),
		Allergens:        append([]string(nil), in.Allergens...),
		CachedAt:         e.now(),
	}
	e.state.BarcodeCache[code] = entry
	e.persistLocked(ctx)
	return entry.clone(), nil
}

// AddSource appends to the sources picker list if absent (case sensitive).
func (e *Engine) AddSource(ctx context.Context, source string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.addVocabLocked(&e.state.Sources, strings.TrimSpace(source)) {
		e.persistLocked(ctx)
	}
	return append([]string{}, e.state.Sources...)
}

// AddDonor appends to the donors picker list if absent (case sensitive).
func (e *Engine) AddDonor(ctx context.Context, donor string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.addVocabLocked(&e.state.Donors, strings.TrimSpace(donor)) {
		e.persistLocked(ctx)
	}
	return append([]string{}, e.state.Donors...)
}

func (e *Engine) addVocabLocked(list *[]string, value string) bool {
	if value == "" {
		return false
	}
	for _, existing := range *list {
		if existing == value {
			return false
		}
	}
	*list = append(*list, value)
	return true
}

// Items returns copies of all inventory items in insertion order.
func (e *Engine) Items() []InventoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]InventoryItem, 0, len(e.state.Inventory))
	for _, item := range e.state.Inventory {
		out = append(out, item.clone())
	}
	return out
}

// Item returns the item with the given id.
func (e *Engine) Item(itemID uuid.UUID) (InventoryItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.itemIndexByIDLocked(itemID)
	if idx < 0 {
		return InventoryItem{}, errors.New(errors.CodeNotFound, "inventory item not found")
	}
	return e.state.Inventory[idx].clone(), nil
}

// ItemByBarcode returns the item carrying the given barcode, if any.
func (e *Engine) ItemByBarcode(barcode string) (InventoryItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.itemIndexByBarcodeLocked(strings.TrimSpace(barcode))
	if idx < 0 {
		return InventoryItem{}, false
	}
	return e.state.Inventory[idx].clone(), true
}

// Clients returns copies of all client records in insertion order.
func (e *Engine) Clients() []ClientRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ClientRecord, 0, len(e.state.Clients))
	for _, client := range e.state.Clients {
		out = append(out, client.clone())
	}
	return out
}

// Client returns the client with the given id.
func (e *Engine) Client(clientID uuid.UUID) (ClientRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.clientIndexByIDLocked(clientID)
	if idx < 0 {
		return ClientRecord{}, errors.New(errors.CodeNotFound, "client not found")
	}
	return e.state.Clients[idx].clone(), nil
}

// Transactions returns the ledger in order.
func (e *Engine) Transactions() []Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Transaction, 0, len(e.state.Transactions))
	for _, tx := range e.state.Transactions {
		out = append(out, tx.clone())
	}
	return out
}

// Transaction returns the ledger entry with the given id.
func (e *Engine) Transaction(transactionID uuid.UUID) (Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, tx := range e.state.Transactions {
		if tx.ID == transactionID {
			return tx.clone(), nil
		}
	}
	return Transaction{}, errors.New(errors.CodeNotFound, "transaction not found")
}

// CurrentSettings returns the active settings.
func (e *Engine) CurrentSettings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Settings
}

// BarcodeEntry returns the cached entry for a barcode, if present.
func (e *Engine) BarcodeEntry(barcode string) (BarcodeCacheEntry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.state.BarcodeCache[strings.TrimSpace(barcode)]
	if !ok {
		return BarcodeCacheEntry{}, false
	}
	return entry.clone(), true
}

// Sources returns the sources picker list.
func (e *Engine) Sources() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.state.Sources...)
}

// Donors returns the donors picker list.
func (e *Engine) Donors() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.state.Donors...)
}

// Snapshot deep-copies the entire state for derived views and exports.
func (e *Engine) Snapshot() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Flush persists the current snapshot and surfaces the write error, unlike
// the per-operation best-effort saves. Used at shutdown.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Save(ctx, e.state)
}

func (e *Engine) persistLocked(ctx context.Context) {
	if err := e.store.Save(ctx, e.state); err != nil && e.logg != nil {
		// Memory stays authoritative; degrade to memory-only operation.
		e.logg.Error(ctx, "state save failed", err)
	}
}

func (e *Engine) itemIndexByIDLocked(id uuid.UUID) int {
	for i := range e.state.Inventory {
		if e.state.Inventory[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) itemIndexByBarcodeLocked(barcode string) int {
	if barcode == "" {
		return -1
	}
	for i := range e.state.Inventory {
		if e.state.Inventory[i].Barcode == barcode {
			return i
		}
	}
	return -1
}

func (e *Engine) clientIndexByIDLocked(id uuid.UUID) int {
	for i := range e.state.Clients {
		if e.state.Clients[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) clientIndexByIdentifierLocked(identifier string) int {
	for i := range e.state.Clients {
		if e.state.Clients[i].Identifier == identifier {
			return i
		}
	}
	return -1
}
