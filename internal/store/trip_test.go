package store

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/database"
	"github.com/rgoulet/pricebook/internal/model"
)

func setupTripTestDB(t *testing.T) (*TripStore, *CatalogStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTripStore(db), NewCatalogStore(db)
}

func TestTripCreateWithLines(t *testing.T) {
	ts, cs := setupTripTestDB(t)

	st, err := cs.CreateStore("FreshMart", "Downtown")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	p, err := cs.CreateProduct("Milk", "Dairy")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	lines := []model.PurchaseTripLine{
		{Text: "WHL MLK", Quantity: 1, TotalPrice: decimal.RequireFromString("3.50"), ProductID: &p.ID},
		{Text: "BANANAS", Quantity: 2, TotalPrice: decimal.RequireFromString("1.20")},
	}
	trip, err := ts.Create(&st.ID, "FreshMart", decimal.RequireFromString("4.70"), lines)
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if trip.Merchant != "FreshMart" {
		t.Errorf("merchant = %q, want FreshMart", trip.Merchant)
	}
	if !trip.Total.Equal(decimal.RequireFromString("4.70")) {
		t.Errorf("total = %s, want 4.70", trip.Total)
	}
	if trip.StoreID == nil || *trip.StoreID != st.ID {
		t.Errorf("store_id = %v, want %d", trip.StoreID, st.ID)
	}

	got, err := ts.Lines(trip.ID)
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2", len(got))
	}
	if got[0].Text != "WHL MLK" || got[1].Text != "BANANAS" {
		t.Errorf("lines out of order: %q, %q", got[0].Text, got[1].Text)
	}
	if got[0].ProductID == nil || *got[0].ProductID != p.ID {
		t.Errorf("line product_id = %v, want %d", got[0].ProductID, p.ID)
	}
	if got[1].ProductID != nil {
		t.Errorf("unlinked line product_id = %v, want nil", got[1].ProductID)
	}
	if !got[1].TotalPrice.Equal(decimal.RequireFromString("1.20")) {
		t.Errorf("line total = %s, want 1.20", got[1].TotalPrice)
	}
}

func TestTripListNewestFirst(t *testing.T) {
	ts, _ := setupTripTestDB(t)

	if _, err := ts.Create(nil, "First", decimal.Zero, nil); err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if _, err := ts.Create(nil, "Second", decimal.Zero, nil); err != nil {
		t.Fatalf("create trip: %v", err)
	}

	trips, err := ts.List()
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("got %d trips, want 2", len(trips))
	}
	if trips[0].Merchant != "Second" {
		t.Errorf("newest trip = %q, want Second", trips[0].Merchant)
	}
}

func TestTripGetMissing(t *testing.T) {
	ts, _ := setupTripTestDB(t)
	trip, err := ts.GetByID(999)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if trip != nil {
		t.Errorf("expected nil, got %+v", trip)
	}
}
