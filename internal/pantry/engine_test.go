package pantry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/harborfood/pantry-backend/pkg/errors"
)

type fakeStore struct {
	state     *State
	loadErr   error
	saveErr   error
	saveCount int
}

func (f *fakeStore) Load(ctx context.Context) (*State, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.state == nil {
		return DefaultState(), nil
	}
	return f.state, nil
}

func (f *fakeStore) Save(ctx context.Context, state *State) error {
	f.saveCount++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = state.Clone()
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	engine, err := NewEngine(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine, store
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestNewEngineFallsBackToDefaultsOnLoadError(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("corrupt blob")}
	engine, err := NewEngine(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if len(engine.Items()) != 0 {
		t.Fatal("expected empty inventory from defaults")
	}
	if got := engine.CurrentSettings().VisitWarningDays; got != DefaultVisitWarningDays {
		t.Fatalf("expected default visit warning days, got %d", got)
	}
	if len(engine.Sources()) == 0 {
		t.Fatal("expected seeded sources list")
	}
}

func TestUpsertInventoryItem(t *testing.T) {
	ctx := context.Background()

	t.Run("createDefaults", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(0)})

		if item.ID == uuid.Nil {
			t.Fatal("expected generated id")
		}
		if item.Quantity != 0 {
			t.Fatalf("expected quantity 0, got %d", item.Quantity)
		}
		if item.Category != DefaultCategory {
			t.Fatalf("expected default category, got %q", item.Category)
		}
		if item.CreatedAt.IsZero() || !item.CreatedAt.Equal(item.UpdatedAt) {
			t.Fatalf("expected createdAt == updatedAt on create, got %v / %v", item.CreatedAt, item.UpdatedAt)
		}
	})

	t.Run("idempotentByID", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		created := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Beans")})
		updated := engine.UpsertInventoryItem(ctx, ItemInput{ID: &created.ID, Quantity: intPtr(12)})

		if updated.ID != created.ID {
			t.Fatal("expected the same item back")
		}
		if updated.Name != "Beans" {
			t.Fatalf("absent fields must be preserved, got name %q", updated.Name)
		}
		if updated.Quantity != 12 {
			t.Fatalf("expected quantity 12, got %d", updated.Quantity)
		}
		if len(engine.Items()) != 1 {
			t.Fatalf("expected one item, got %d", len(engine.Items()))
		}
	})

	t.Run("resolvesByBarcode", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		first := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Soup"), Barcode: strPtr("123")})
		second := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Tomato Soup"), Barcode: strPtr("123")})

		if second.ID != first.ID {
			t.Fatal("expected barcode match to update, not duplicate")
		}
		if second.Name != "Tomato Soup" {
			t.Fatalf("expected updated name, got %q", second.Name)
		}
		if len(engine.Items()) != 1 {
			t.Fatalf("two items share barcode 123: %d items", len(engine.Items()))
		}
	})

	t.Run("emptyBarcodeNeverMatches", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Pasta"), Barcode: strPtr("  ")})
		engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Cereal"), Barcode: strPtr("")})

		if len(engine.Items()) != 2 {
			t.Fatalf("blank barcodes must not collide, got %d items", len(engine.Items()))
		}
		for _, item := range engine.Items() {
			if item.Barcode != "" {
				t.Fatalf("expected trimmed-empty barcode, got %q", item.Barcode)
			}
		}
	})

	t.Run("createdAtImmutable", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		engine.now = func() time.Time { return time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC) }

		created := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Flour")})

		engine.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
		updated := engine.UpsertInventoryItem(ctx, ItemInput{ID: &created.ID, Name: strPtr("Bread Flour")})

		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Fatal("createdAt must never change")
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Fatal("updatedAt must advance on mutation")
		}
	})
}

func TestAdjustQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("clampsAtZero", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Milk"), Quantity: intPtr(10)})

		adjusted, err := engine.AdjustQuantity(ctx, item.ID, -100)
		if err != nil {
			t.Fatalf("AdjustQuantity: %v", err)
		}
		if adjusted.Quantity != 0 {
			t.Fatalf("expected clamp to 0, got %d", adjusted.Quantity)
		}
		if len(engine.Transactions()) != 0 {
			t.Fatal("quick adjustments must not create ledger entries")
		}
	})

	t.Run("unknownItem", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.AdjustQuantity(ctx, uuid.New(), 1)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})
}

func TestUpsertClient(t *testing.T) {
	ctx := context.Background()

	t.Run("resolvesByIdentifier", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		first := engine.UpsertClient(ctx, ClientInput{Name: strPtr("Jane"), Identifier: strPtr("J1")})
		second := engine.UpsertClient(ctx, ClientInput{Name: strPtr("Jane D."), Identifier: strPtr("J1")})

		if second.ID != first.ID {
			t.Fatal("expected identifier match to update, not duplicate")
		}
		if second.Name != "Jane D." {
			t.Fatalf("expected updated name, got %q", second.Name)
		}
		if len(engine.Clients()) != 1 {
			t.Fatalf("expected one client, got %d", len(engine.Clients()))
		}
	})

	t.Run("partialUpdatePreservesFields", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		created := engine.UpsertClient(ctx, ClientInput{
			Name:       strPtr("Sam"),
			Identifier: strPtr("S1"),
			Contact:    strPtr("sam@example.org"),
		})
		updated := engine.UpsertClient(ctx, ClientInput{ID: &created.ID, Notes: strPtr("gluten free")})

		if updated.Contact != "sam@example.org" {
			t.Fatalf("expected contact preserved, got %q", updated.Contact)
		}
		if updated.Notes != "gluten free" {
			t.Fatalf("expected notes set, got %q", updated.Notes)
		}
	})
}

func TestRecordInbound(t *testing.T) {
	ctx := context.Background()

	t.Run("scenarioA", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(0)})

		tx, err := engine.RecordInbound(ctx, InboundInput{ItemID: item.ID, Quantity: 50, Source: "Donation"})
		if err != nil {
			t.Fatalf("RecordInbound: %v", err)
		}

		got, _ := engine.Item(item.ID)
		if got.Quantity != 50 {
			t.Fatalf("expected quantity 50, got %d", got.Quantity)
		}
		if tx.Type != TransactionIn || len(tx.Items) != 1 || tx.Items[0].Quantity != 50 {
			t.Fatalf("expected one IN line of 50, got %+v", tx)
		}
		if tx.Items[0].Name != "Rice" {
			t.Fatalf("expected snapshotted name, got %q", tx.Items[0].Name)
		}
		if len(engine.Transactions()) != 1 {
			t.Fatalf("expected exactly one transaction, got %d", len(engine.Transactions()))
		}
	})

	t.Run("rejectsNonPositiveQuantity", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(5)})

		_, err := engine.RecordInbound(ctx, InboundInput{ItemID: item.ID, Quantity: 0})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected VALIDATION_ERROR, got %v", err)
		}
		if len(engine.Transactions()) != 0 {
			t.Fatal("rejected check-in must not append a transaction")
		}
		got, _ := engine.Item(item.ID)
		if got.Quantity != 5 {
			t.Fatalf("rejected check-in must not mutate quantity, got %d", got.Quantity)
		}
	})

	t.Run("rejectsUnknownItem", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.RecordInbound(ctx, InboundInput{ItemID: uuid.New(), Quantity: 5})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("snapshotIsStableAgainstLaterEdits", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		item := engine.UpsertInventoryItem(ctx, ItemInput{
			Name:             strPtr("Oats"),
			WeightPerUnitLbs: floatPtr(2),
			ValuePerUnitUsd:  floatPtr(3),
		})

		tx, err := engine.RecordInbound(ctx, InboundInput{ItemID: item.ID, Quantity: 4})
		if err != nil {
			t.Fatalf("RecordInbound: %v", err)
		}

		engine.UpsertInventoryItem(ctx, ItemInput{ID: &item.ID, Name: strPtr("Steel Cut Oats"), WeightPerUnitLbs: floatPtr(99)})

		ledger, _ := engine.Transaction(tx.ID)
		if ledger.Items[0].Name != "Oats" || ledger.Items[0].WeightPerUnitLbs != 2 {
			t.Fatalf("ledger snapshot must not track item edits, got %+v", ledger.Items[0])
		}
	})

	t.Run("recordsVocabulary", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice")})

		if _, err := engine.RecordInbound(ctx, InboundInput{ItemID: item.ID, Quantity: 1, Source: "Harvest Share", Donor: "Lee Family"}); err != nil {
			t.Fatalf("RecordInbound: %v", err)
		}

		if !contains(engine.Sources(), "Harvest Share") {
			t.Fatal("expected source added to picker list")
		}
		if !contains(engine.Donors(), "Lee Family") {
			t.Fatal("expected donor added to picker list")
		}
	})
}

func TestRecordOutbound(t *testing.T) {
	ctx := context.Background()

	t.Run("scenarioB", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(50)})

		result, err := engine.RecordOutbound(ctx, OutboundInput{
			Client: ClientInput{Name: strPtr("Jane"), Identifier: strPtr("J1")},
			Items:  []OutboundLine{{ItemID: item.ID, Quantity: 20}},
		})
		if err != nil {
			t.Fatalf("RecordOutbound: %v", err)
		}

		got, _ := engine.Item(item.ID)
		if got.Quantity != 30 {
			t.Fatalf("expected quantity 30, got %d", got.Quantity)
		}
		if result.Client.Name != "Jane" || result.Client.Identifier != "J1" {
			t.Fatalf("expected created client Jane/J1, got %+v", result.Client)
		}
		tx := result.Transaction
		if tx.Type != TransactionOut || tx.ClientName != "Jane" {
			t.Fatalf("expected OUT transaction for Jane, got %+v", tx)
		}
		if len(tx.Items) != 1 || tx.Items[0].Quantity != 20 {
			t.Fatalf("expected one line of 20, got %+v", tx.Items)
		}
	})

	t.Run("scenarioC_unknownItemAborts", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.RecordOutbound(ctx, OutboundInput{
			Client: ClientInput{Name: strPtr("Ghost"), Identifier: strPtr("G1")},
			Items:  []OutboundLine{{ItemID: uuid.New(), Quantity: 1}},
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
		if len(engine.Transactions()) != 0 {
			t.Fatal("aborted check-out must not append a transaction")
		}
		if len(engine.Clients()) != 0 {
			t.Fatal("aborted check-out must not create a client")
		}
	})

	t.Run("emptyCartRejected", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.RecordOutbound(ctx, OutboundInput{Client: ClientInput{Name: strPtr("Jane")}})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected VALIDATION_ERROR, got %v", err)
		}
	})

	t.Run("unknownLinesDroppedFromMixedCart", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(10)})

		result, err := engine.RecordOutbound(ctx, OutboundInput{
			Client: ClientInput{Name: strPtr("Jane"), Identifier: strPtr("J1")},
			Items: []OutboundLine{
				{ItemID: uuid.New(), Quantity: 3},
				{ItemID: item.ID, Quantity: 4},
			},
		})
		if err != nil {
			t.Fatalf("RecordOutbound: %v", err)
		}
		if len(result.Transaction.Items) != 1 || result.Transaction.Items[0].ItemID != item.ID {
			t.Fatalf("expected the unknown line dropped, got %+v", result.Transaction.Items)
		}
	})

	t.Run("insufficientStockAbortsWholeOperation", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		rice := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(10)})
		beans := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Beans"), Quantity: intPtr(10)})

		_, err := engine.RecordOutbound(ctx, OutboundInput{
			Client: ClientInput{Name: strPtr("Jane"), Identifier: strPtr("J1")},
			Items: []OutboundLine{
				{ItemID: rice.ID, Quantity: 5},
				{ItemID: beans.ID, Quantity: 11},
			},
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected STATE_CONFLICT, got %v", err)
		}

		gotRice, _ := engine.Item(rice.ID)
		gotBeans, _ := engine.Item(beans.ID)
		if gotRice.Quantity != 10 || gotBeans.Quantity != 10 {
			t.Fatalf("aborted check-out must not mutate stock: %d / %d", gotRice.Quantity, gotBeans.Quantity)
		}
		if len(engine.Transactions()) != 0 || len(engine.Clients()) != 0 {
			t.Fatal("aborted check-out must not create ledger entries or clients")
		}
	})

	t.Run("duplicateLinesCountAgainstStockTogether", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(10)})

		_, err := engine.RecordOutbound(ctx, OutboundInput{
			Client: ClientInput{Name: strPtr("Jane"), Identifier: strPtr("J1")},
			Items: []OutboundLine{
				{ItemID: item.ID, Quantity: 6},
				{ItemID: item.ID, Quantity: 6},
			},
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected STATE_CONFLICT for combined overdraw, got %v", err)
		}
	})

	t.Run("resolvesExistingClient", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(50)})
		existing := engine.UpsertClient(ctx, ClientInput{Name: strPtr("Jane"), Identifier: strPtr("J1")})

		result, err := engine.RecordOutbound(ctx, OutboundInput{
			Client: ClientInput{Identifier: strPtr("J1")},
			Items:  []OutboundLine{{ItemID: item.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("RecordOutbound: %v", err)
		}
		if result.Client.ID != existing.ID {
			t.Fatal("expected existing client resolved by identifier")
		}
		if len(engine.Clients()) != 1 {
			t.Fatalf("expected one client, got %d", len(engine.Clients()))
		}
	})
}

func TestQuantityNeverNegative(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(3)})
	engine.AdjustQuantity(ctx, item.ID, -10)
	engine.UpsertInventoryItem(ctx, ItemInput{ID: &item.ID, Quantity: intPtr(-5)})
	engine.RecordInbound(ctx, InboundInput{ItemID: item.ID, Quantity: 2})
	engine.RecordOutbound(ctx, OutboundInput{
		Client: ClientInput{Name: strPtr("Jane"), Identifier: strPtr("J1")},
		Items:  []OutboundLine{{ItemID: item.ID, Quantity: 2}},
	})

	for _, got := range engine.Items() {
		if got.Quantity < 0 {
			t.Fatalf("quantity invariant violated: %+v", got)
		}
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	settings := engine.UpdateSettings(ctx, SettingsInput{VisitWarningDays: intPtr(14)})
	if settings.VisitWarningDays != 14 {
		t.Fatalf("expected 14, got %d", settings.VisitWarningDays)
	}

	// Unset fields are left alone.
	settings = engine.UpdateSettings(ctx, SettingsInput{})
	if settings.VisitWarningDays != 14 {
		t.Fatalf("expected merge to preserve 14, got %d", settings.VisitWarningDays)
	}
}

func TestUpsertBarcodeCache(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	entry, err := engine.UpsertBarcodeCache(ctx, " 123 ", CacheInput{Name: "Soup", Category: "Canned"})
	if err != nil {
		t.Fatalf("UpsertBarcodeCache: %v", err)
	}
	if entry.CachedAt.IsZero() {
		t.Fatal("expected cachedAt set")
	}

	overwritten, err := engine.UpsertBarcodeCache(ctx, "123", CacheInput{Name: "Tomato Soup"})
	if err != nil {
		t.Fatalf("UpsertBarcodeCache: %v", err)
	}
	if overwritten.Name != "Tomato Soup" || overwritten.Category != "" {
		t.Fatalf("expected unconditional overwrite, got %+v", overwritten)
	}

	cached, ok := engine.BarcodeEntry("123")
	if !ok || cached.Name != "Tomato Soup" {
		t.Fatalf("expected trimmed key lookup to hit, got %v %v", cached, ok)
	}

	if _, err := engine.UpsertBarcodeCache(ctx, "  ", CacheInput{}); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for blank barcode")
	}
}

func TestVocabularyListsAreAppendOnlyAndDeduplicated(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	before := len(engine.Sources())
	engine.AddSource(ctx, "Grocery Rescue")
	engine.AddSource(ctx, "Grocery Rescue")
	sources := engine.AddSource(ctx, "")

	if len(sources) != before+1 {
		t.Fatalf("expected exactly one new source, got %v", sources)
	}
	if sources[len(sources)-1] != "Grocery Rescue" {
		t.Fatalf("expected append at tail, got %v", sources)
	}

	// Case-sensitive exact match: different casing is a new entry.
	donors := engine.AddDonor(ctx, "smith family")
	donors = engine.AddDonor(ctx, "Smith Family")
	if !contains(donors, "smith family") || !contains(donors, "Smith Family") {
		t.Fatalf("expected case-sensitive dedupe, got %v", donors)
	}
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("savesAfterEveryMutation", func(t *testing.T) {
		engine, store := newTestEngine(t)

		engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice")})
		if store.saveCount != 1 {
			t.Fatalf("expected one save, got %d", store.saveCount)
		}

		engine.AddSource(ctx, "Food Bank") // already seeded, no change
		if store.saveCount != 1 {
			t.Fatalf("no-op must not save, got %d saves", store.saveCount)
		}
	})

	t.Run("saveFailureDoesNotAffectState", func(t *testing.T) {
		store := &fakeStore{saveErr: errors.New("disk full")}
		engine, err := NewEngine(ctx, store, nil)
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}

		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Quantity: intPtr(7)})

		got, err := engine.Item(item.ID)
		if err != nil || got.Quantity != 7 {
			t.Fatalf("memory must stay authoritative, got %+v err=%v", got, err)
		}
	})

	t.Run("callersCannotCorruptEngineState", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		item := engine.UpsertInventoryItem(ctx, ItemInput{Name: strPtr("Rice"), Allergens: &[]string{"gluten"}})

		held := engine.Items()
		held[0].Name = "Hacked"
		held[0].Allergens[0] = "hacked"

		got, _ := engine.Item(item.ID)
		if got.Name != "Rice" || got.Allergens[0] != "gluten" {
			t.Fatalf("held references must not reach engine state, got %+v", got)
		}
	})
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
