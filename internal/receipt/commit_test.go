package receipt

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/database"
	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/store"
	"github.com/rgoulet/pricebook/internal/unit"
)

func setupCommitTest(t *testing.T) (*Committer, *store.CatalogStore, *store.PriceStore, *store.TripStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	catalog := store.NewCatalogStore(db)
	prices := store.NewPriceStore(db)
	trips := store.NewTripStore(db)
	return NewCommitter(catalog, prices, trips), catalog, prices, trips
}

func TestCommitFullMatchUpdatesPrice(t *testing.T) {
	committer, catalog, prices, trips := setupCommitTest(t)

	st, _ := catalog.CreateStore("Corner Market", "")
	product, _ := catalog.CreateProduct("Milk", "Dairy")
	variant, _ := catalog.CreateVariant(product.ID, nil, "", unit.Liter)
	rec, err := prices.Create(variant.ID, st.ID, decPtr("1.20"), nil)
	if err != nil {
		t.Fatalf("create price record: %v", err)
	}

	items := []model.MatchedReceiptItem{{
		Parsed:             model.ParsedReceiptItem{Text: "MILK", TotalPrice: decimal.RequireFromString("1.35"), Quantity: 1},
		Status:             model.MatchStatusMatched,
		ProductID:          &product.ID,
		VariantID:          &variant.ID,
		StoreVariantInfoID: &rec.ID,
		Price:              decPtr("1.35"),
		Included:           true,
	}}

	result, err := committer.Commit(st.ID, "Corner Market", items)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.PricesUpdated != 1 || result.ProductsCreated != 0 {
		t.Errorf("counts = %d updated, %d created; want 1, 0", result.PricesUpdated, result.ProductsCreated)
	}

	updated, _ := prices.GetByID(rec.ID)
	if updated.PricePerUnit == nil || !updated.PricePerUnit.Equal(decimal.RequireFromString("1.35")) {
		t.Errorf("price = %v, want 1.35", updated.PricePerUnit)
	}

	history, _ := prices.History(rec.ID)
	if len(history) != 2 {
		t.Errorf("history entries = %d, want 2 (create + update)", len(history))
	}

	if result.Trip == nil {
		t.Fatal("expected a trip")
	}
	lines, _ := trips.Lines(result.Trip.ID)
	if len(lines) != 1 {
		t.Fatalf("trip lines = %d, want 1", len(lines))
	}
	if lines[0].StoreVariantInfoID == nil || *lines[0].StoreVariantInfoID != rec.ID {
		t.Errorf("line price record = %v, want %d", lines[0].StoreVariantInfoID, rec.ID)
	}
}

func TestCommitPartialMatchCreatesPriceRecord(t *testing.T) {
	committer, catalog, prices, _ := setupCommitTest(t)

	st, _ := catalog.CreateStore("Corner Market", "")
	product, _ := catalog.CreateProduct("Eggs", "Dairy")
	variant, _ := catalog.CreateVariant(product.ID, nil, "", unit.Count)

	items := []model.MatchedReceiptItem{{
		Parsed:    model.ParsedReceiptItem{Text: "EGGS", TotalPrice: decimal.RequireFromString("3.99"), Quantity: 1},
		Status:    model.MatchStatusMatched,
		ProductID: &product.ID,
		VariantID: &variant.ID,
		Price:     decPtr("3.99"),
		Included:  true,
	}}

	result, err := committer.Commit(st.ID, "Corner Market", items)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.PricesUpdated != 1 {
		t.Errorf("prices updated = %d, want 1", result.PricesUpdated)
	}

	rec, _ := prices.GetByVariantAndStore(variant.ID, st.ID)
	if rec == nil {
		t.Fatal("expected a price record for the variant at the store")
	}
	if rec.PricePerUnit == nil || !rec.PricePerUnit.Equal(decimal.RequireFromString("3.99")) {
		t.Errorf("price = %v, want 3.99", rec.PricePerUnit)
	}
}

func TestCommitProductOnlyReusesSingleVariant(t *testing.T) {
	committer, catalog, prices, _ := setupCommitTest(t)

	st, _ := catalog.CreateStore("Corner Market", "")
	product, _ := catalog.CreateProduct("Coffee", "Beverages")
	variant, _ := catalog.CreateVariant(product.ID, nil, "", unit.Gram)

	items := []model.MatchedReceiptItem{{
		Parsed:    model.ParsedReceiptItem{Text: "COFFEE", TotalPrice: decimal.RequireFromString("7.99"), Quantity: 1},
		Status:    model.MatchStatusMatched,
		ProductID: &product.ID,
		Price:     decPtr("7.99"),
		Included:  true,
	}}

	result, err := committer.Commit(st.ID, "Corner Market", items)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.PricesUpdated != 1 {
		t.Errorf("prices updated = %d, want 1", result.PricesUpdated)
	}

	variants, _ := catalog.ListVariantsByProduct(product.ID)
	if len(variants) != 1 {
		t.Fatalf("variants = %d, want the single variant reused", len(variants))
	}
	if rec, _ := prices.GetByVariantAndStore(variant.ID, st.ID); rec == nil {
		t.Error("expected price record on the reused variant")
	}
}

func TestCommitNoMatchCreatesEverything(t *testing.T) {
	committer, catalog, prices, _ := setupCommitTest(t)

	st, _ := catalog.CreateStore("Corner Market", "")

	items := []model.MatchedReceiptItem{{
		Parsed:   model.ParsedReceiptItem{Text: "ORG BNNA", TotalPrice: decimal.RequireFromString("1.10"), Quantity: 1},
		Status:   model.MatchStatusNoMatch,
		Name:     "Bananas",
		Price:    decPtr("1.10"),
		Included: true,
	}}

	result, err := committer.Commit(st.ID, "Corner Market", items)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.ProductsCreated != 1 || result.PricesUpdated != 0 {
		t.Errorf("counts = %d created, %d updated; want 1, 0", result.ProductsCreated, result.PricesUpdated)
	}

	products, _ := catalog.ListProducts()
	if len(products) != 1 || products[0].Name != "Bananas" {
		t.Fatalf("products = %+v, want one named Bananas", products)
	}
	if products[0].Category != "Produce" {
		t.Errorf("category = %q, want Produce", products[0].Category)
	}

	variants, _ := catalog.ListVariantsByProduct(products[0].ID)
	if len(variants) != 1 {
		t.Fatalf("variants = %d, want 1", len(variants))
	}
	if rec, _ := prices.GetByVariantAndStore(variants[0].ID, st.ID); rec == nil {
		t.Error("expected a price record for the created variant")
	}
}

func TestCommitSkipsExcludedItems(t *testing.T) {
	committer, catalog, _, trips := setupCommitTest(t)

	st, _ := catalog.CreateStore("Corner Market", "")

	items := []model.MatchedReceiptItem{{
		Parsed:   model.ParsedReceiptItem{Text: "SKIP ME", TotalPrice: decimal.RequireFromString("9.99"), Quantity: 1},
		Status:   model.MatchStatusNoMatch,
		Name:     "Skip Me",
		Included: false,
	}}

	result, err := committer.Commit(st.ID, "Corner Market", items)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.ProductsCreated != 0 || result.PricesUpdated != 0 {
		t.Errorf("counts = %+v, want zeroes", result)
	}
	lines, _ := trips.Lines(result.Trip.ID)
	if len(lines) != 0 {
		t.Errorf("trip lines = %d, want 0", len(lines))
	}
	if !result.Trip.Total.Equal(decimal.Zero) {
		t.Errorf("trip total = %s, want 0", result.Trip.Total)
	}
}
